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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// captureTimeout bounds a single grab so a wedged device can't hang the
// request path. A timed-out grab reports ErrNoFrame and lets the one-shot
// recovery take over.
const captureTimeout = 10 * time.Second

// V4L2Driver grabs JPEG frames from a V4L2 device by shelling out to
// ffmpeg. The outstanding-frame count models the small hardware buffer
// pool: once frame-buffers handles are out, acquisition fails until one is
// returned.
type V4L2Driver struct {
	mu          sync.Mutex
	conf        *Config
	res         Resolution
	outstanding int
}

func NewV4L2Driver() *V4L2Driver {
	return &V4L2Driver{}
}

func (d *V4L2Driver) Open(conf *Config) error {
	cmd := exec.Command("v4l2-ctl", "--device", conf.Device, "--info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("camera not detected at %s: %v", conf.Device, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.conf = conf
	d.res = conf.Max()
	d.outstanding = 0
	return nil
}

func (d *V4L2Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conf = nil
	d.outstanding = 0
}

func (d *V4L2Driver) SetResolution(res Resolution) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conf == nil {
		return ErrNotInitialised
	}
	d.res = res
	return nil
}

func (d *V4L2Driver) NextFrame() (*Frame, error) {
	d.mu.Lock()
	if d.conf == nil {
		d.mu.Unlock()
		return nil, ErrNotInitialised
	}
	if d.outstanding >= d.conf.FrameBuffers {
		d.mu.Unlock()
		return nil, ErrNoFrame
	}
	// Reserve the handle before the grab so concurrent grabs can't
	// overcommit the pool.
	d.outstanding++
	device := d.conf.Device
	quality := d.conf.Quality
	res := d.res
	d.mu.Unlock()

	frame, err := d.grab(device, quality, res)
	if err != nil {
		d.mu.Lock()
		if d.outstanding > 0 {
			d.outstanding--
		}
		d.mu.Unlock()
		return nil, err
	}
	return frame, nil
}

func (d *V4L2Driver) grab(device string, quality int, res Resolution) (*Frame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"-i", device,
		"-vframes", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"-q:v", strconv.Itoa(jpegQuality(quality)),
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: grab timed out after %s", ErrNoFrame, captureTimeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}

	return &Frame{
		Bytes:  stdout.Bytes(),
		Width:  res.Width,
		Height: res.Height,
	}, nil
}

func (d *V4L2Driver) ReturnFrame(f *Frame) error {
	if f == nil {
		return errors.New("nil frame returned")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.outstanding == 0 {
		return errors.New("frame returned with none outstanding")
	}
	d.outstanding--
	return nil
}

// jpegQuality maps the configured 1-63 sensor quality scale onto ffmpeg's
// 2-31 qscale (lower is better for both).
func jpegQuality(q int) int {
	scaled := 2 + (q-1)*29/62
	if scaled < 2 {
		scaled = 2
	}
	if scaled > 31 {
		scaled = 31
	}
	return scaled
}
