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

// Config describes the camera bring-up parameters. It must not change after
// the first Open; Reinitialize reuses the same values so the camera comes
// back in a known state after recovery.
type Config struct {
	Device         string `yaml:"device"`
	PowerPin       string `yaml:"power-pin"`
	MaxWidth       int    `yaml:"max-width"`
	MaxHeight      int    `yaml:"max-height"`
	BaselineWidth  int    `yaml:"baseline-width"`
	BaselineHeight int    `yaml:"baseline-height"`
	Quality        int    `yaml:"quality"`
	FrameBuffers   int    `yaml:"frame-buffers"`
	GrabLatest     bool   `yaml:"grab-latest"`
}

func DefaultConfig() Config {
	return Config{
		Device:         "/dev/video0",
		MaxWidth:       1600,
		MaxHeight:      1200,
		BaselineWidth:  640,
		BaselineHeight: 480,
		Quality:        12,
		FrameBuffers:   1,
	}
}

func (conf *Config) Max() Resolution {
	return Resolution{conf.MaxWidth, conf.MaxHeight}
}

func (conf *Config) Baseline() Resolution {
	return Resolution{conf.BaselineWidth, conf.BaselineHeight}
}

func (conf *Config) Validate() error {
	if conf.Device == "" {
		return errors.New("camera device must be set")
	}
	if conf.MaxWidth <= 0 || conf.MaxHeight <= 0 {
		return errors.New("camera max resolution must be positive")
	}
	if conf.BaselineWidth <= 0 || conf.BaselineHeight <= 0 {
		return errors.New("camera baseline resolution must be positive")
	}
	if conf.BaselineWidth > conf.MaxWidth || conf.BaselineHeight > conf.MaxHeight {
		return errors.New("camera baseline resolution must not exceed max resolution")
	}
	if conf.Quality < 1 || conf.Quality > 63 {
		return errors.New("camera quality must be between 1 and 63")
	}
	if conf.FrameBuffers < 1 {
		return errors.New("camera frame-buffers must be at least 1")
	}
	return nil
}
