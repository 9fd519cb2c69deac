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

package devicestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialState(t *testing.T) {
	state := New()
	snap := state.Snapshot()
	assert.False(t, snap.NetworkJoined)
	assert.False(t, snap.CameraReady)
	assert.False(t, snap.MicrophoneReady)
	assert.Equal(t, uint64(0), snap.FrameCount)
	assert.Equal(t, uint64(0), snap.AudioBytes)
}

func TestReadyFlagsFlipOnBringUp(t *testing.T) {
	state := New()
	state.SetCameraReady(true)
	state.SetMicrophoneReady(true)

	snap := state.Snapshot()
	assert.True(t, snap.CameraReady)
	assert.True(t, snap.MicrophoneReady)
}

func TestCounters(t *testing.T) {
	state := New()
	for i := 0; i < 3; i++ {
		state.IncFrameCount()
	}
	state.AddAudioBytes(512)
	state.AddAudioBytes(256)

	snap := state.Snapshot()
	assert.Equal(t, uint64(3), snap.FrameCount)
	assert.Equal(t, uint64(768), snap.AudioBytes)
	assert.Equal(t, uint64(3), state.FrameCount())
}

func TestNetworkFields(t *testing.T) {
	state := New()
	state.SetNetworkJoined("192.168.1.42", -61)

	snap := state.Snapshot()
	assert.True(t, snap.NetworkJoined)
	assert.Equal(t, "192.168.1.42", snap.IPAddress)
	assert.Equal(t, -61, snap.SignalDBm)
}
