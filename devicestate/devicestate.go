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

// Package devicestate holds the process-wide device status. One State is
// created at startup and shared by pointer. Each field has a single writing
// subsystem: network bring-up owns the network fields, the camera source
// owns camera-ready, audio bring-up owns microphone-ready, the request
// handlers own the frame counter and the audio sampler owns the byte
// counter. Everything else only reads.
package devicestate

import "sync"

type State struct {
	mu              sync.Mutex
	networkJoined   bool
	ipAddress       string
	signalDBm       int
	cameraReady     bool
	microphoneReady bool
	frameCount      uint64
	audioBytes      uint64
}

// Snapshot is a consistent copy of every field.
type Snapshot struct {
	NetworkJoined   bool
	IPAddress       string
	SignalDBm       int
	CameraReady     bool
	MicrophoneReady bool
	FrameCount      uint64
	AudioBytes      uint64
}

func New() *State {
	return &State{}
}

func (s *State) SetNetworkJoined(ip string, signalDBm int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networkJoined = true
	s.ipAddress = ip
	s.signalDBm = signalDBm
}

func (s *State) SetCameraReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraReady = ready
}

func (s *State) SetMicrophoneReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.microphoneReady = ready
}

func (s *State) IncFrameCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount++
}

func (s *State) AddAudioBytes(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audioBytes += uint64(n)
}

func (s *State) CameraReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraReady
}

func (s *State) MicrophoneReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.microphoneReady
}

func (s *State) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		NetworkJoined:   s.networkJoined,
		IPAddress:       s.ipAddress,
		SignalDBm:       s.signalDBm,
		CameraReady:     s.cameraReady,
		MicrophoneReady: s.microphoneReady,
		FrameCount:      s.frameCount,
		AudioBytes:      s.audioBytes,
	}
}
