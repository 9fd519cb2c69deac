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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laiyinyizao007/AutoDiary/audio"
	"github.com/laiyinyizao007/AutoDiary/camera"
	"github.com/laiyinyizao007/AutoDiary/devicestate"
	"github.com/laiyinyizao007/AutoDiary/slot"
)

type testServer struct {
	*server
	driver *camera.TestDriver
	router *gin.Engine
}

func newTestServer(t *testing.T, openCamera bool) *testServer {
	conf := defaultConfig
	conf.SlotPath = filepath.Join(t.TempDir(), "photo.jpg")

	driver := camera.NewTestDriver()
	state := devicestate.New()
	source := camera.NewSource(driver, conf.Camera, state, nil)
	if openCamera {
		require.NoError(t, source.Open())
	}

	srv := newServer(&conf, state, source, audio.NewSampleBuffer(conf.Audio.BufferBytes),
		slot.NewStore(conf.SlotPath))
	srv.restart = func() {}

	return &testServer{
		server: srv,
		driver: driver,
		router: srv.routes(),
	}
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ts.router.ServeHTTP(w, req)
	return w
}

func TestStatusBeforeBringUp(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.CameraReady)
	assert.False(t, status.MicrophoneReady)
	assert.Equal(t, uint64(0), status.FrameCount)
	assert.Equal(t, "autodiary", status.Device)
}

func TestVideoBeforeBringUp(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/video.jpg")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not initialised")
}

func TestVideoReturnsFrame(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/video.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "frame-1", w.Body.String())

	assert.Equal(t, uint64(1), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestVideoRecoversFromTransientFailure(t *testing.T) {
	ts := newTestServer(t, true)

	ts.driver.FailNext(1)
	w := ts.get("/video.jpg")
	require.Equal(t, http.StatusOK, w.Code)

	// One logical capture despite the internal retry.
	assert.Equal(t, uint64(1), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestVideoUnavailableAfterDoubleFailure(t *testing.T) {
	ts := newTestServer(t, true)

	ts.driver.FailNext(2)
	w := ts.get("/video.jpg")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "capture failed")

	assert.Equal(t, uint64(0), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestRepeatedVideoRequestsWithInjectedFailures(t *testing.T) {
	ts := newTestServer(t, true)

	for i := 0; i < 100; i++ {
		if i%10 == 0 {
			ts.driver.FailNext(1)
		}
		w := ts.get("/video.jpg")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	assert.Equal(t, uint64(100), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestConcurrentVideoRequestsShareSingleBuffer(t *testing.T) {
	ts := newTestServer(t, true)
	require.Equal(t, 1, ts.conf.Camera.FrameBuffers)

	// The whole acquire/serve/release path must be serialised: with a
	// single frame buffer an overlapping request would otherwise find
	// the pool exhausted and trigger a spurious reinitialise while the
	// first frame is still held.
	const requests = 20
	codes := make([]int, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = ts.get("/video.jpg").Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
	assert.Equal(t, 1, ts.driver.Opens)
	assert.Equal(t, uint64(requests), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestCaptureThenSavedPhoto(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/capture")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "photo saved")

	w = ts.get("/saved_photo")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "frame-1", w.Body.String())

	assert.Equal(t, uint64(1), ts.state.FrameCount())
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestSavedPhotoWithoutCapture(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/saved_photo")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCaptureNotInitialised(t *testing.T) {
	ts := newTestServer(t, false)

	w := ts.get("/capture")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, uint64(0), ts.state.FrameCount())
}

func TestCaptureStorageFailureStillReleasesFrame(t *testing.T) {
	ts := newTestServer(t, true)
	// Point the slot below a regular file so the write cannot succeed.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	ts.slots = slot.NewStore(filepath.Join(blocker, "photo.jpg"))

	w := ts.get("/capture")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "failed to save photo")
	assert.Equal(t, 0, ts.driver.Outstanding())
}

func TestAudioBeforeBringUp(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/audio")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAudioReturnsWAV(t *testing.T) {
	ts := newTestServer(t, true)
	ts.state.SetMicrophoneReady(true)
	ts.buffer.Write([]byte{1, 2, 3, 4})

	w := ts.get("/audio")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	body := w.Body.Bytes()
	require.Greater(t, len(body), 44)
	assert.Equal(t, "RIFF", string(body[:4]))
	assert.Equal(t, []byte{1, 2, 3, 4}, body[44:])
}

func TestRestartAcknowledgesFirst(t *testing.T) {
	ts := newTestServer(t, true)

	restarted := false
	ts.restart = func() { restarted = true }

	w := ts.get("/restart")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, restarted)
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/video.jpg")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, true)

	w := ts.get("/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
