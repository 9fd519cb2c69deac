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

package loglimiter

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistinctMessagesPass(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	limiter := New(time.Minute)
	limiter.Print("hello")
	limiter.Print("world")

	assert.Equal(t, "hello\nworld\n", logs.String())
}

func TestRepeatsSuppressedWithinInterval(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()
	limiter := New(2 * time.Second)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Print("hello")
	assert.Equal(t, "hello\n", logs.String())

	now = now.Add(time.Second)
	limiter.Print("hello")
	assert.Equal(t, "hello\n", logs.String())

	now = now.Add(time.Second)
	limiter.Print("hello")
	assert.Equal(t, "hello\nhello\n", logs.String())
}

func TestInterleavedMessagesLimitedIndependently(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	now := time.Now()
	limiter := New(time.Minute)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Print("camera fault")
	limiter.Print("audio fault")
	limiter.Print("camera fault")
	limiter.Print("audio fault")

	assert.Equal(t, "camera fault\naudio fault\n", logs.String())
}

func TestPrintf(t *testing.T) {
	logs, reset := captureLogs()
	defer reset()

	limiter := New(time.Minute)
	limiter.Printf("read failed: %v", "EIO")
	limiter.Printf("read failed: %v", "EIO")
	limiter.Printf("read failed: %v", "ETIMEDOUT")

	assert.Equal(t, "read failed: EIO\nread failed: ETIMEDOUT\n", logs.String())
}

func TestStaleEntriesPruned(t *testing.T) {
	_, reset := captureLogs()
	defer reset()

	now := time.Now()
	limiter := New(time.Second)
	limiter.nowFunc = func() time.Time { return now }

	limiter.Print("one")
	limiter.Print("two")
	now = now.Add(2 * time.Second)
	limiter.Print("three")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.seen, 1)
}

func captureLogs() (*bytes.Buffer, func()) {
	flags := log.Flags()
	log.SetFlags(0)

	logs := new(bytes.Buffer)
	log.SetOutput(logs)

	return logs, func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}
}
