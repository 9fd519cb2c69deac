// autodiary-cam - networked camera and microphone capture node
//  Copyright (C) 2026, the AutoDiary project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package camera

import (
	"errors"
	"fmt"
)

// TestDriver is an in-memory Driver for exercising acquisition and recovery
// paths without hardware. Acquisition failures are scripted through
// FailNext; the driver tracks opens, resolution changes and outstanding
// frames so tests can verify pairing and recovery behaviour.
type TestDriver struct {
	open         bool
	res          Resolution
	frameBuffers int
	frameSeq     int
	outstanding  int
	failNext     int

	Opens       int
	Resolutions []Resolution
}

func NewTestDriver() *TestDriver {
	return &TestDriver{}
}

// FailNext makes the next n NextFrame calls report ErrNoFrame.
func (d *TestDriver) FailNext(n int) {
	d.failNext = n
}

// Outstanding reports how many acquired frames have not been returned.
func (d *TestDriver) Outstanding() int {
	return d.outstanding
}

func (d *TestDriver) Open(conf *Config) error {
	d.open = true
	d.res = conf.Max()
	d.frameBuffers = conf.FrameBuffers
	d.Opens++
	return nil
}

func (d *TestDriver) Close() {
	d.open = false
	d.outstanding = 0
}

func (d *TestDriver) SetResolution(res Resolution) error {
	if !d.open {
		return ErrNotInitialised
	}
	d.res = res
	d.Resolutions = append(d.Resolutions, res)
	return nil
}

func (d *TestDriver) NextFrame() (*Frame, error) {
	if !d.open {
		return nil, ErrNotInitialised
	}
	if d.failNext > 0 {
		d.failNext--
		return nil, ErrNoFrame
	}
	if d.outstanding >= d.frameBuffers {
		return nil, ErrNoFrame
	}
	d.frameSeq++
	d.outstanding++
	return &Frame{
		Bytes:  []byte(fmt.Sprintf("frame-%d", d.frameSeq)),
		Width:  d.res.Width,
		Height: d.res.Height,
	}, nil
}

func (d *TestDriver) ReturnFrame(f *Frame) error {
	if f == nil {
		return errors.New("nil frame returned")
	}
	if d.outstanding == 0 {
		return errors.New("frame returned with none outstanding")
	}
	d.outstanding--
	return nil
}
