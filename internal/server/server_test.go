package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinScout/internal/metrics"
	"CoinScout/internal/model"
	"CoinScout/internal/recorder"
	"CoinScout/internal/state"
)

type fakeController struct {
	snap   state.Snapshot
	ctxs   []context.Context
	starts int
	stops  int
}

func (f *fakeController) Start(ctx context.Context) bool {
	f.ctxs = append(f.ctxs, ctx)
	f.starts++
	if f.snap.Running {
		return false
	}
	f.snap.Running = true
	return true
}

func (f *fakeController) Stop() bool {
	f.stops++
	if !f.snap.Running {
		return false
	}
	f.snap.Running = false
	return true
}

func (f *fakeController) Toggle(ctx context.Context) bool {
	if f.snap.Running {
		f.Stop()
		return false
	}
	return f.Start(ctx)
}

func (f *fakeController) Snapshot() state.Snapshot { return f.snap }

type fakeHistory struct {
	recs []recorder.NotificationRecord
	err  error
}

func (f *fakeHistory) RecentNotifications(_ context.Context, limit int) ([]recorder.NotificationRecord, error) {
	if len(f.recs) > limit {
		return f.recs[:limit], f.err
	}
	return f.recs, f.err
}

type ctxKey struct{}

func newTestServer(ctrl *fakeController, hist *fakeHistory) (*Server, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	loopCtx := context.WithValue(context.Background(), ctxKey{}, "loop")
	return New(loopCtx, Config{}, ctrl, hist, reg, zerolog.Nop()), reg
}

func do(s *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestStatusAndControl(t *testing.T) {
	ctrl := &fakeController{snap: state.Snapshot{Cycles: 3, Elapsed: 90*time.Minute + 500*time.Millisecond}}
	s, _ := newTestServer(ctrl, &fakeHistory{})

	rec := do(s, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Running)
	assert.Equal(t, 3, st.Cycles)
	assert.Equal(t, "1h30m0s", st.Elapsed)

	rec = do(s, http.MethodPost, "/api/start")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"changed":true`)
	assert.Equal(t, "loop", ctrl.ctxs[0].Value(ctxKey{}), "loop gets the server context, not the request's")

	rec = do(s, http.MethodPost, "/api/start")
	assert.Contains(t, rec.Body.String(), `"changed":false`)

	do(s, http.MethodPost, "/api/toggle")
	assert.False(t, ctrl.snap.Running)
	do(s, http.MethodPost, "/api/toggle")
	assert.True(t, ctrl.snap.Running)

	rec = do(s, http.MethodPost, "/api/stop")
	assert.Contains(t, rec.Body.String(), `"running":false`)

	assert.Equal(t, http.StatusMethodNotAllowed, do(s, http.MethodGet, "/api/start").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthz").Code)
}

func TestRanking(t *testing.T) {
	ctrl := &fakeController{}
	s, _ := newTestServer(ctrl, &fakeHistory{})
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/ranking").Code)

	top := []model.RankedAsset{{Rank: 1, Symbol: "XRP", Composite: 2.5, Confidence: 25, LastPrice: 0.5}}
	ctrl.snap.Latest = &model.Ranking{
		CycleID:       "c-1",
		Entries:       top,
		Top:           top,
		Notifications: []model.Notification{{Symbol: "XRP", Message: "XRP $0.50 al $0.58 sat emri ver"}},
	}
	rec := do(s, http.MethodGet, "/api/ranking")
	require.Equal(t, http.StatusOK, rec.Code)

	var got rankingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c-1", got.CycleID)
	require.Len(t, got.Top, 1)
	assert.Equal(t, 25, got.Top[0].Confidence)
	assert.Equal(t, []string{"XRP $0.50 al $0.58 sat emri ver"}, got.Notifications)
}

func TestHistory(t *testing.T) {
	hist := &fakeHistory{recs: []recorder.NotificationRecord{{Symbol: "BTC"}, {Symbol: "ETH"}, {Symbol: "SOL"}}}
	s, _ := newTestServer(&fakeController{}, hist)

	rec := do(s, http.MethodGet, "/api/history?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []recorder.NotificationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/history?limit=zero").Code)

	hist.err = errors.New("database is locked")
	assert.Equal(t, http.StatusInternalServerError, do(s, http.MethodGet, "/api/history").Code)

	empty, _ := newTestServer(&fakeController{}, &fakeHistory{})
	assert.Equal(t, "[]", strings.TrimSpace(do(empty, http.MethodGet, "/api/history").Body.String()))
}

func TestMetricsEndpoint(t *testing.T) {
	s, reg := newTestServer(&fakeController{}, &fakeHistory{})
	metrics.New(reg).RecordCycle("completed", time.Second)

	rec := do(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `coinscout_cycles_total{outcome="completed"} 1`)
}
