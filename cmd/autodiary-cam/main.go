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
	"log"

	arg "github.com/alexflint/go-arg"
	"periph.io/x/periph/host"

	"github.com/laiyinyizao007/AutoDiary/audio"
	"github.com/laiyinyizao007/AutoDiary/camera"
	"github.com/laiyinyizao007/AutoDiary/devicestate"
	"github.com/laiyinyizao007/AutoDiary/slot"
)

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/autodiary-cam.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()

	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	state := devicestate.New()

	log.Print("waiting for network")
	joinNetwork(conf.Interface, state)

	var power camera.PowerCycler
	if conf.Camera.PowerPin != "" {
		log.Print("host initialisation")
		if _, err := host.Init(); err != nil {
			return err
		}
		power, err = camera.NewGPIOPower(conf.Camera.PowerPin)
		if err != nil {
			return err
		}
	}

	// Camera or microphone bring-up failure is not fatal: the daemon
	// keeps serving with the corresponding ready flag off so the
	// companion can still see the device and ask for a restart.
	source := camera.NewSource(camera.NewV4L2Driver(), conf.Camera, state, power)
	log.Print("opening camera")
	if err := source.Open(); err != nil {
		log.Printf("camera bring-up failed: %v", err)
	}

	input := audio.NewMalgoInput()
	log.Print("opening microphone")
	if err := input.Open(conf.Audio); err != nil {
		log.Printf("microphone bring-up failed: %v", err)
	} else {
		state.SetMicrophoneReady(true)
	}

	buffer := audio.NewSampleBuffer(conf.Audio.BufferBytes)
	sampler := audio.NewSampler(input, buffer, state)
	go sampler.Run()

	mon := newMonitor(state)
	go mon.run()

	srv := newServer(conf, state, source, buffer, slot.NewStore(conf.SlotPath))

	log.Println("starting d-bus service")
	if err := startService(srv); err != nil {
		log.Printf("d-bus service unavailable: %v", err)
	}

	return srv.run()
}

func logConfig(conf *Config) {
	log.Printf("device name: %s", conf.DeviceName)
	log.Printf("port: %d", conf.Port)
	log.Printf("interface: %s", conf.Interface)
	log.Printf("slot path: %s", conf.SlotPath)
	log.Printf("camera: %+v", conf.Camera)
	log.Printf("audio: %+v", conf.Audio)
}
