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
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laiyinyizao007/AutoDiary/audio"
	"github.com/laiyinyizao007/AutoDiary/camera"
	"github.com/laiyinyizao007/AutoDiary/devicestate"
	"github.com/laiyinyizao007/AutoDiary/slot"
)

const restartDelay = time.Second

type server struct {
	conf   *Config
	state  *devicestate.State
	camera *camera.Source
	buffer *audio.SampleBuffer
	slots  *slot.Store

	// captureMu serialises camera access from acquisition through
	// release so requests hit the hardware one at a time, whatever
	// the transport does.
	captureMu sync.Mutex

	restart func()
}

func newServer(conf *Config, state *devicestate.State, source *camera.Source,
	buffer *audio.SampleBuffer, slots *slot.Store) *server {
	return &server{
		conf:    conf,
		state:   state,
		camera:  source,
		buffer:  buffer,
		slots:   slots,
		restart: scheduleRestart,
	}
}

func (s *server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleIndex)
	r.GET("/video.jpg", s.handleVideo)
	r.GET("/capture", s.handleCapture)
	r.GET("/saved_photo", s.handleSavedPhoto)
	r.GET("/audio", s.handleAudio)
	r.GET("/status", s.handleStatus)
	r.GET("/restart", s.handleRestart)
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
	return r
}

func (s *server) run() error {
	addr := fmt.Sprintf(":%d", s.conf.Port)
	log.Printf("serving on %s", addr)
	return s.routes().Run(addr)
}

func (s *server) handleVideo(c *gin.Context) {
	if !s.state.CameraReady() {
		c.String(http.StatusServiceUnavailable, "camera not initialised")
		return
	}

	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	frame, err := s.camera.Capture()
	if err != nil {
		c.String(http.StatusServiceUnavailable, "camera capture failed: %v", err)
		return
	}
	defer s.release(frame)

	s.state.IncFrameCount()
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/jpeg", frame.Bytes)
}

func (s *server) handleCapture(c *gin.Context) {
	n, err := s.captureToSlot()
	switch {
	case err == nil:
		c.String(http.StatusOK, "photo saved (%d bytes)", n)
	case errors.Is(err, camera.ErrNotInitialised):
		c.String(http.StatusServiceUnavailable, "camera not initialised")
	case errors.Is(err, camera.ErrCameraUnavailable):
		c.String(http.StatusServiceUnavailable, "camera capture failed: %v", err)
	default:
		c.String(http.StatusServiceUnavailable, "failed to save photo: %v", err)
	}
}

// captureToSlot grabs one frame and persists it, releasing the frame on
// every path. The frame counter moves once per successful acquisition even
// if the slot write fails afterwards.
func (s *server) captureToSlot() (int, error) {
	if !s.state.CameraReady() {
		return 0, camera.ErrNotInitialised
	}

	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	frame, err := s.camera.Capture()
	if err != nil {
		return 0, err
	}
	defer s.release(frame)

	s.state.IncFrameCount()
	if err := s.slots.Write(frame.Bytes); err != nil {
		return 0, err
	}
	log.Printf("photo captured: %d bytes", frame.Len())
	return frame.Len(), nil
}

func (s *server) handleSavedPhoto(c *gin.Context) {
	photo, err := s.slots.Read()
	if errors.Is(err, slot.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to read photo: %v", err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", photo)
}

func (s *server) handleAudio(c *gin.Context) {
	if !s.state.MicrophoneReady() {
		c.String(http.StatusServiceUnavailable, "microphone not initialised")
		return
	}
	pcm := s.buffer.ReadLatest(s.buffer.Capacity())
	c.Data(http.StatusOK, "audio/wav", audio.EncodeWAV(pcm, s.conf.Audio))
}

type statusResponse struct {
	Device          string `json:"device"`
	Version         string `json:"version"`
	NetworkJoined   bool   `json:"network_joined"`
	IPAddress       string `json:"ip_address"`
	SignalDBm       int    `json:"signal_strength"`
	CameraReady     bool   `json:"camera_initialized"`
	MicrophoneReady bool   `json:"microphone_initialized"`
	FrameCount      uint64 `json:"frame_count"`
	AudioBytes      uint64 `json:"audio_bytes_captured"`
	AudioReady      bool   `json:"audio_ready"`
}

// statusSnapshot is the one place device status is shaped for reporting;
// the HTTP and D-Bus surfaces both emit it so field names never diverge.
func (s *server) statusSnapshot() statusResponse {
	snap := s.state.Snapshot()
	return statusResponse{
		Device:          s.conf.DeviceName,
		Version:         version,
		NetworkJoined:   snap.NetworkJoined,
		IPAddress:       snap.IPAddress,
		SignalDBm:       snap.SignalDBm,
		CameraReady:     snap.CameraReady,
		MicrophoneReady: snap.MicrophoneReady,
		FrameCount:      snap.FrameCount,
		AudioBytes:      snap.AudioBytes,
		AudioReady:      s.buffer.Ready(),
	}
}

func (s *server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.statusSnapshot())
}

func (s *server) handleRestart(c *gin.Context) {
	c.String(http.StatusOK, "restarting")
	log.Print("restart requested")
	s.restart()
}

func (s *server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexPage, s.conf.DeviceName)
}

func (s *server) release(frame *camera.Frame) {
	if err := s.camera.Release(frame); err != nil {
		log.Printf("error releasing frame: %v", err)
	}
}

// scheduleRestart exits after the response has gone out; systemd brings
// the unit back up.
func scheduleRestart() {
	time.AfterFunc(restartDelay, func() {
		os.Exit(0)
	})
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>AutoDiary capture node</h1>
<img src="/video.jpg" alt="preview">
<p><a href="/capture">capture</a> | <a href="/saved_photo">saved photo</a> |
<a href="/status">status</a> | <a href="/restart">restart</a></p>
<script>
setInterval(function() {
  document.querySelector("img").src = "/video.jpg?t=" + Date.now();
}, 1000);
</script>
</body>
</html>
`
