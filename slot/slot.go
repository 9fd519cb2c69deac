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

// Package slot persists the single most-recent photo. Each capture
// overwrites the previous one; there is no history.
package slot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const tempExt = ".temp"

var ErrNotFound = errors.New("no saved photo")

type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Write replaces the slot's content. The bytes land in a temp file first
// and are renamed into place so a reader never sees a partial photo.
func (s *Store) Write(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating slot directory: %w", err)
	}

	temp := s.path + tempExt
	if err := os.WriteFile(temp, b, 0644); err != nil {
		return fmt.Errorf("writing photo: %w", err)
	}
	if err := os.Rename(temp, s.path); err != nil {
		os.Remove(temp)
		return fmt.Errorf("replacing photo: %w", err)
	}
	return nil
}

func (s *Store) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *Store) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	return err == nil
}
