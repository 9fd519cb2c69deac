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

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// pendingLimit caps the driver-side buffer. The sampler drains it every
// cycle; if it falls behind, the oldest bytes are shed so memory stays
// bounded.
const pendingLimit = 256 * 1024

// MalgoInput captures microphone samples through miniaudio. The capture
// callback appends into a pending buffer which BytesAvailable and
// ReadAvailable drain, matching the non-blocking poll model of the digital
// mic hardware this stands in for.
type MalgoInput struct {
	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	pending []byte
	open    bool
}

func NewMalgoInput() *MalgoInput {
	return &MalgoInput{}
}

func (m *MalgoInput) Open(conf Config) error {
	if err := conf.Validate(); err != nil {
		return err
	}

	format, err := sampleFormat(conf.BitsPerSample)
	if err != nil {
		return err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("initialising audio context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = format
	deviceConfig.Capture.Channels = uint32(conf.Channels)
	deviceConfig.SampleRate = uint32(conf.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			m.mu.Lock()
			m.pending = append(m.pending, input...)
			if excess := len(m.pending) - pendingLimit; excess > 0 {
				m.pending = m.pending[excess:]
			}
			m.mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("initialising capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("starting capture device: %w", err)
	}

	m.mu.Lock()
	m.ctx = ctx
	m.device = device
	m.open = true
	m.mu.Unlock()
	return nil
}

func (m *MalgoInput) Close() error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil
	}
	m.open = false
	device := m.device
	ctx := m.ctx
	m.device = nil
	m.ctx = nil
	m.mu.Unlock()

	if device != nil {
		if err := device.Stop(); err != nil {
			return fmt.Errorf("stopping capture device: %w", err)
		}
		device.Uninit()
	}
	if ctx != nil {
		ctx.Uninit()
		ctx.Free()
	}
	return nil
}

func (m *MalgoInput) BytesAvailable() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *MalgoInput) ReadAvailable(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

func sampleFormat(bits int) (malgo.FormatType, error) {
	switch bits {
	case 8:
		return malgo.FormatU8, nil
	case 16:
		return malgo.FormatS16, nil
	case 32:
		return malgo.FormatS32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("unsupported bits-per-sample: %d", bits)
	}
}
