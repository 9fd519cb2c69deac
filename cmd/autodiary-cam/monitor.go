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
	"time"

	"github.com/coreos/go-systemd/daemon"

	"github.com/laiyinyizao007/AutoDiary/devicestate"
)

const (
	monitorInterval    = time.Second
	cyclesPerSdNotify  = 5
	cyclesPerStatusLog = 30
)

// monitor is the capture-side liveness task. It only reads device state:
// frame acquisition stays with the request handlers so the two never
// contend for the camera buffer pool.
type monitor struct {
	state *devicestate.State
	stop  chan struct{}
}

func newMonitor(state *devicestate.State) *monitor {
	return &monitor{
		state: state,
		stop:  make(chan struct{}),
	}
}

func (m *monitor) run() {
	notifyCount := 0
	logCount := 0
	for {
		select {
		case <-m.stop:
			return
		case <-time.After(monitorInterval):
		}

		if notifyCount++; notifyCount >= cyclesPerSdNotify {
			if _, err := daemon.SdNotify(false, "WATCHDOG=1"); err != nil {
				log.Printf("watchdog notify failed: %v", err)
			}
			notifyCount = 0
		}

		if logCount++; logCount >= cyclesPerStatusLog {
			snap := m.state.Snapshot()
			log.Printf("alive: camera=%v microphone=%v frames=%d audio-bytes=%d",
				snap.CameraReady, snap.MicrophoneReady, snap.FrameCount, snap.AudioBytes)
			logCount = 0
		}
	}
}
