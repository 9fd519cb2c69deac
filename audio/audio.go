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

package audio

import "errors"

// Config describes the microphone capture mode and the shared sample
// buffer size.
type Config struct {
	SampleRate    int `yaml:"sample-rate"`
	BitsPerSample int `yaml:"bits-per-sample"`
	Channels      int `yaml:"channels"`
	BufferBytes   int `yaml:"buffer-bytes"`
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		BitsPerSample: 16,
		Channels:      1,
		BufferBytes:   32768, // ~1s of 16kHz mono 16-bit
	}
}

func (conf *Config) Validate() error {
	if conf.SampleRate <= 0 {
		return errors.New("audio sample-rate must be positive")
	}
	if conf.BitsPerSample != 8 && conf.BitsPerSample != 16 && conf.BitsPerSample != 32 {
		return errors.New("audio bits-per-sample must be 8, 16 or 32")
	}
	if conf.Channels < 1 {
		return errors.New("audio channels must be at least 1")
	}
	if conf.BufferBytes <= 0 {
		return errors.New("audio buffer-bytes must be positive")
	}
	return nil
}

// Input abstracts the microphone driver. BytesAvailable and ReadAvailable
// are non-blocking; a reader that polls faster than the hardware fills the
// driver buffer simply sees zero bytes.
type Input interface {
	Open(conf Config) error
	Close() error
	BytesAvailable() int
	ReadAvailable(p []byte) (int, error)
}
