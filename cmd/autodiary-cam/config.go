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

package main

import (
	"errors"
	"os"

	yaml "gopkg.in/yaml.v2"

	"github.com/laiyinyizao007/AutoDiary/audio"
	"github.com/laiyinyizao007/AutoDiary/camera"
)

type Config struct {
	DeviceName string        `yaml:"device-name"`
	Port       int           `yaml:"port"`
	Interface  string        `yaml:"interface"`
	SlotPath   string        `yaml:"slot-path"`
	Camera     camera.Config `yaml:"camera"`
	Audio      audio.Config  `yaml:"audio"`
}

var defaultConfig = Config{
	DeviceName: "autodiary",
	Port:       80,
	Interface:  "wlan0",
	SlotPath:   "/var/lib/autodiary/photo.jpg",
	Camera:     camera.DefaultConfig(),
	Audio:      audio.DefaultConfig(),
}

func (conf *Config) Validate() error {
	if conf.DeviceName == "" {
		return errors.New("device-name must be set")
	}
	if conf.Port < 1 || conf.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if conf.SlotPath == "" {
		return errors.New("slot-path must be set")
	}
	if err := conf.Camera.Validate(); err != nil {
		return err
	}
	return conf.Audio.Validate()
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
