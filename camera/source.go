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
	"log"

	"github.com/laiyinyizao007/AutoDiary/devicestate"
)

// Source owns the camera driver and its buffer pool. All acquisition goes
// through Capture which applies the one-shot recovery policy: a transient
// "no frame" failure triggers exactly one reinitialise and one retry. The
// policy is deliberately not a loop; a camera that fails twice in a row is
// reported as unavailable so the request path stays bounded.
type Source struct {
	driver Driver
	conf   Config
	state  *devicestate.State
	power  PowerCycler
	open   bool
}

// NewSource wraps driver with the recovery policy. power may be nil when the
// board has no controllable camera power rail.
func NewSource(driver Driver, conf Config, state *devicestate.State, power PowerCycler) *Source {
	return &Source{
		driver: driver,
		conf:   conf,
		state:  state,
		power:  power,
	}
}

// Open powers up the camera and drops it to the baseline resolution. The
// camera is configured for its maximum resolution but run below it; the
// lower mode is much less prone to acquisition failures.
func (s *Source) Open() error {
	if err := s.driver.Open(&s.conf); err != nil {
		return fmt.Errorf("opening camera: %w", err)
	}
	if err := s.driver.SetResolution(s.conf.Baseline()); err != nil {
		s.driver.Close()
		return fmt.Errorf("setting baseline resolution: %w", err)
	}
	s.open = true
	s.state.SetCameraReady(true)
	return nil
}

func (s *Source) Close() {
	if !s.open {
		return
	}
	s.driver.Close()
	s.open = false
}

// Capture acquires one frame, recovering once from a transient failure.
// A frame returned by Capture must be released with Release on every exit
// path.
func (s *Source) Capture() (*Frame, error) {
	if !s.open {
		return nil, ErrNotInitialised
	}

	frame, err := s.driver.NextFrame()
	if err == nil {
		return frame, nil
	}
	if !errors.Is(err, ErrNoFrame) {
		return nil, err
	}

	log.Printf("frame acquisition failed, reinitialising camera")
	if err := s.Reinitialize(); err != nil {
		return nil, fmt.Errorf("%w: reinitialise failed: %v", ErrCameraUnavailable, err)
	}

	frame, err = s.driver.NextFrame()
	if err != nil {
		return nil, fmt.Errorf("%w: retry failed: %v", ErrCameraUnavailable, err)
	}
	log.Printf("frame acquisition recovered after reinitialise")
	return frame, nil
}

// Release returns a frame to the driver's buffer pool.
func (s *Source) Release(f *Frame) error {
	return s.driver.ReturnFrame(f)
}

// Reinitialize tears the driver down and brings it back with the stored
// configuration, cycling the camera power rail if one is wired. It is a
// single recovery step, never called in a loop.
func (s *Source) Reinitialize() error {
	s.driver.Close()

	if s.power != nil {
		if err := s.power.Cycle(); err != nil {
			log.Printf("camera power cycle failed: %v", err)
		}
	}

	if err := s.driver.Open(&s.conf); err != nil {
		return fmt.Errorf("reopening camera: %w", err)
	}
	if err := s.driver.SetResolution(s.conf.Baseline()); err != nil {
		s.driver.Close()
		return fmt.Errorf("setting baseline resolution: %w", err)
	}
	return nil
}
