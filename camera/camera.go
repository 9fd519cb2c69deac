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

import "errors"

var (
	// ErrNoFrame indicates a transient acquisition failure. The driver is
	// still open; the caller may attempt the one-shot recovery.
	ErrNoFrame = errors.New("no frame available")

	// ErrCameraUnavailable indicates acquisition failed even after the
	// one-shot reinitialise and retry. The caller should report the
	// failure and try again later rather than retrying immediately.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrNotInitialised indicates the camera was never brought up.
	ErrNotInitialised = errors.New("camera not initialised")
)

type Resolution struct {
	Width  int
	Height int
}

// Frame is one encoded still image from the camera. A Frame is exclusively
// owned from NextFrame until ReturnFrame; every successful NextFrame must be
// paired with exactly one ReturnFrame or the driver's buffer pool leaks.
type Frame struct {
	Bytes  []byte
	Width  int
	Height int
}

func (f *Frame) Len() int {
	return len(f.Bytes)
}

// Driver abstracts the camera hardware.
type Driver interface {
	Open(conf *Config) error
	Close()
	NextFrame() (*Frame, error)
	ReturnFrame(f *Frame) error
	SetResolution(res Resolution) error
}
