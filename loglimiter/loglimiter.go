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

// Package loglimiter keeps repeating failure messages from flooding the
// log. Hardware faults tend to recur on every poll cycle; each distinct
// message is let through at most once per interval, even when different
// messages interleave.
package loglimiter

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// New returns a Limiter with the given minimum interval between repeats of
// the same message.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		nowFunc:  time.Now,
		seen:     make(map[string]time.Time),
	}
}

// Limiter is safe for use from multiple goroutines.
type Limiter struct {
	interval time.Duration
	nowFunc  func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func (l *Limiter) Printf(format string, v ...interface{}) {
	l.Print(fmt.Sprintf(format, v...))
}

func (l *Limiter) Print(s string) {
	now := l.nowFunc()

	l.mu.Lock()
	last, ok := l.seen[s]
	if ok && now.Sub(last) < l.interval {
		l.mu.Unlock()
		return
	}
	l.seen[s] = now
	l.prune(now)
	l.mu.Unlock()

	log.Print(s)
}

// prune drops stale entries so the map doesn't grow unbounded when
// messages carry varying detail.
func (l *Limiter) prune(now time.Time) {
	for s, at := range l.seen {
		if now.Sub(at) >= l.interval {
			delete(l.seen, s)
		}
	}
}
