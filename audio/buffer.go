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

import "sync"

// SampleBuffer is a fixed-capacity rolling window over the most recent
// captured audio. The sampler task is the only writer; readers take
// consistent copies under the same lock so a read never observes a torn
// write. Writes past capacity overwrite the oldest bytes, so the occupied
// count can never exceed the capacity.
type SampleBuffer struct {
	mu       sync.Mutex
	buf      []byte
	writePos int
	occupied int
	ready    bool
}

func NewSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{
		buf: make([]byte, capacity),
	}
}

// Write appends p to the rolling window and reports how many bytes were
// stored. Bursts larger than the capacity keep only their newest bytes.
func (sb *SampleBuffer) Write(p []byte) int {
	if len(p) == 0 {
		return 0
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	size := len(sb.buf)
	n := len(p)
	if n >= size {
		copy(sb.buf, p[n-size:])
		sb.writePos = 0
		sb.occupied = size
		sb.ready = true
		return n
	}

	first := copy(sb.buf[sb.writePos:], p)
	copy(sb.buf, p[first:])
	sb.writePos = (sb.writePos + n) % size
	sb.occupied += n
	if sb.occupied > size {
		sb.occupied = size
	}
	sb.ready = true
	return n
}

// ReadLatest returns a copy of up to max of the most recent bytes, oldest
// first.
func (sb *SampleBuffer) ReadLatest(max int) []byte {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	n := max
	if n > sb.occupied {
		n = sb.occupied
	}
	if n <= 0 {
		return nil
	}

	size := len(sb.buf)
	start := (sb.writePos - n + size) % size
	out := make([]byte, n)
	first := copy(out, sb.buf[start:minInt(start+n, size)])
	copy(out[first:], sb.buf[:n-first])
	return out
}

func (sb *SampleBuffer) Occupied() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.occupied
}

func (sb *SampleBuffer) Capacity() int {
	return len(sb.buf)
}

// Ready reports whether at least one write has completed since startup.
func (sb *SampleBuffer) Ready() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.ready
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
