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
	"log"
	"time"

	"github.com/laiyinyizao007/AutoDiary/devicestate"
	"github.com/laiyinyizao007/AutoDiary/loglimiter"
)

const sampleInterval = 100 * time.Millisecond

// Sampler drains the microphone driver into the shared SampleBuffer on a
// fixed cadence. It is the buffer's sole writer. If the microphone never
// initialised the task exits straight away instead of spinning.
type Sampler struct {
	input    Input
	buffer   *SampleBuffer
	state    *devicestate.State
	interval time.Duration
	limiter  *loglimiter.Limiter

	stop chan struct{}
	done chan struct{}
}

func NewSampler(input Input, buffer *SampleBuffer, state *devicestate.State) *Sampler {
	return NewSamplerWithInterval(input, buffer, state, sampleInterval)
}

func NewSamplerWithInterval(input Input, buffer *SampleBuffer, state *devicestate.State, interval time.Duration) *Sampler {
	return &Sampler{
		input:    input,
		buffer:   buffer,
		state:    state,
		interval: interval,
		limiter:  loglimiter.New(time.Minute),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run loops until Stop is called. Call it from its own goroutine.
func (s *Sampler) Run() {
	defer close(s.done)

	if !s.state.MicrophoneReady() {
		log.Print("microphone not initialised, audio sampling task exiting")
		return
	}

	log.Print("audio sampling task started")
	scratch := make([]byte, s.buffer.Capacity())

	for {
		select {
		case <-s.stop:
			return
		case <-time.After(s.interval):
		}

		avail := s.input.BytesAvailable()
		if avail == 0 {
			continue
		}
		want := minInt(avail, len(scratch))

		n, err := s.input.ReadAvailable(scratch[:want])
		if err != nil {
			s.limiter.Printf("audio read failed: %v", err)
			continue
		}
		if n > 0 {
			s.buffer.Write(scratch[:n])
			s.state.AddAudioBytes(n)
		}
	}
}

// Stop terminates the task and waits for it to finish.
func (s *Sampler) Stop() {
	close(s.stop)
	<-s.done
}
