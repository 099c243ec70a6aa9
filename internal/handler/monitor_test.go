package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
	"github.com/RyanLangman/CM3070-FinalProject/internal/settings"
	"github.com/RyanLangman/CM3070-FinalProject/internal/vision"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/response"
)

// loopSource delivers blank frames forever.
type loopSource struct{ closed chan struct{} }

func newLoopSource() *loopSource { return &loopSource{closed: make(chan struct{})} }

func (s *loopSource) Read() (*camera.Frame, error) {
	select {
	case <-s.closed:
		return nil, camera.ErrSourceClosed
	case <-time.After(time.Millisecond):
		return camera.NewFrame(8, 8, time.Now()), nil
	}
}

func (s *loopSource) FrameRate() int     { return 5 }
func (s *loopSource) Bounds() (int, int) { return 8, 8 }

func (s *loopSource) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

type fixedSettings struct{}

func (fixedSettings) Current() settings.Settings {
	return settings.Settings{NotificationCooldownSeconds: 300, RecordingSegmentSeconds: 60}
}

type noopVision struct{}

func (noopVision) Detect(f *camera.Frame) (vision.Result, error) { return vision.Result{Annotated: f}, nil }
func (noopVision) Enhance(f *camera.Frame) *camera.Frame         { return f }

type nullEncoder struct{}

func (nullEncoder) Encode(ctx context.Context, path string, batch *monitor.SegmentBatch) error {
	return nil
}

func newTestRouter(t *testing.T, openErr error) (*gin.Engine, *monitor.SessionRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	writer := monitor.NewSegmentWriter(monitor.WriterConfig{Dir: t.TempDir()}, nullEncoder{}, nil)
	writer.Start()

	registry := monitor.NewSessionRegistry(
		func(cameraID int) (camera.FrameSource, error) {
			if openErr != nil {
				return nil, openErr
			}
			return newLoopSource(), nil
		},
		monitor.Deps{
			Bus:      monitor.NewFrameBus(),
			Writer:   writer,
			Vision:   noopVision{},
			Settings: fixedSettings{},
		},
	)
	t.Cleanup(func() {
		registry.StopAll()
		writer.Stop()
	})

	r := gin.New()
	NewMonitorHandler(registry, []int{0, 1}).RegisterRoutes(r)
	return r, registry
}

func doRequest(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, response.Response) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)

	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestListCameras(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := doRequest(r, http.MethodGet, "/api/v1/cameras")
	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["cameras"], 2)
}

func TestStartStopRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := doRequest(r, http.MethodPost, "/api/v1/monitoring/0/start")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	// Second start conflicts while the session is alive.
	w, resp = doRequest(r, http.MethodPost, "/api/v1/monitoring/0/start")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_RUNNING", resp.Error.Code)

	w, resp = doRequest(r, http.MethodGet, "/api/v1/monitoring")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = doRequest(r, http.MethodPost, "/api/v1/monitoring/0/stop")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestStopWithoutSession(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := doRequest(r, http.MethodPost, "/api/v1/monitoring/3/stop")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestStartDeviceFailure(t *testing.T) {
	r, _ := newTestRouter(t, errors.New("device busy"))

	w, resp := doRequest(r, http.MethodPost, "/api/v1/monitoring/0/start")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

func TestInvalidCameraID(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w, resp := doRequest(r, http.MethodPost, "/api/v1/monitoring/abc/start")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
}
