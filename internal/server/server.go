// Package server exposes the HTTP control and presentation surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"CoinScout/internal/model"
	"CoinScout/internal/recorder"
	"CoinScout/internal/state"
)

// Controller starts and stops the analysis loop.
type Controller interface {
	Start(ctx context.Context) bool
	Stop() bool
	Toggle(ctx context.Context) bool
	Snapshot() state.Snapshot
}

// HistoryReader lists delivered notifications.
type HistoryReader interface {
	RecentNotifications(ctx context.Context, limit int) ([]recorder.NotificationRecord, error)
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Server wraps the Echo HTTP server.
type Server struct {
	echo    *echo.Echo
	config  Config
	control Controller
	history HistoryReader
	// loopCtx is handed to Start; request contexts end with the request.
	loopCtx context.Context
	log     zerolog.Logger
}

// New creates the server and registers its routes. gatherer backs /metrics.
func New(loopCtx context.Context, cfg Config, control Controller, history HistoryReader,
	gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		config:  cfg,
		control: control,
		history: history,
		loopCtx: loopCtx,
		log:     logger.With().Str("component", "http").Logger(),
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogging)

	e.GET("/healthz", s.health)
	api := e.Group("/api")
	api.GET("/status", s.status)
	api.GET("/ranking", s.ranking)
	api.GET("/history", s.listHistory)
	api.POST("/start", s.start)
	api.POST("/stop", s.stop)
	api.POST("/toggle", s.toggle)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start listens in the background.
func (s *Server) Start() {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server")
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info().Msg("stopped gracefully")
	return nil
}

func (s *Server) requestLogging(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.log.Debug().
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Int("status", c.Response().Status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

type statusResponse struct {
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Elapsed   string    `json:"elapsed"`
	Cycles    int       `json:"cycles"`
	LastError string    `json:"last_error,omitempty"`
	LastCycle time.Time `json:"last_cycle,omitempty"`
}

func toStatus(snap state.Snapshot) statusResponse {
	resp := statusResponse{
		Running:   snap.Running,
		StartedAt: snap.StartedAt,
		Elapsed:   snap.Elapsed.Truncate(time.Second).String(),
		Cycles:    snap.Cycles,
		LastError: snap.LastError,
	}
	if snap.Latest != nil {
		resp.LastCycle = snap.Latest.FinishedAt
	}
	return resp
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, toStatus(s.control.Snapshot()))
}

type rankingResponse struct {
	CycleID       string               `json:"cycle_id"`
	FinishedAt    time.Time            `json:"finished_at"`
	Top           []rankedEntry        `json:"top"`
	Entries       []rankedEntry        `json:"entries"`
	Notifications []string             `json:"notifications"`
	Skipped       []model.SkippedAsset `json:"skipped"`
}

type rankedEntry struct {
	Rank       int     `json:"rank"`
	Symbol     string  `json:"symbol"`
	Composite  float64 `json:"composite"`
	Confidence int     `json:"confidence"`
	LastPrice  float64 `json:"last_price"`
}

func toEntries(in []model.RankedAsset) []rankedEntry {
	out := make([]rankedEntry, len(in))
	for i, ra := range in {
		out[i] = rankedEntry{Rank: ra.Rank, Symbol: ra.Symbol, Composite: ra.Composite, Confidence: ra.Confidence, LastPrice: ra.LastPrice}
	}
	return out
}

func (s *Server) ranking(c echo.Context) error {
	latest := s.control.Snapshot().Latest
	if latest == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no completed cycle yet")
	}
	resp := rankingResponse{
		CycleID:       latest.CycleID,
		FinishedAt:    latest.FinishedAt,
		Top:           toEntries(latest.Top),
		Entries:       toEntries(latest.Entries),
		Notifications: make([]string, len(latest.Notifications)),
		Skipped:       latest.Skipped,
	}
	for i, n := range latest.Notifications {
		resp.Notifications[i] = n.Message
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listHistory(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 500")
		}
		limit = n
	}
	recs, err := s.history.RecentNotifications(c.Request().Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("read history")
		return echo.NewHTTPError(http.StatusInternalServerError, "history unavailable")
	}
	if recs == nil {
		recs = []recorder.NotificationRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (s *Server) start(c echo.Context) error {
	changed := s.control.Start(s.loopCtx)
	return c.JSON(http.StatusOK, map[string]any{"changed": changed, "status": toStatus(s.control.Snapshot())})
}

func (s *Server) stop(c echo.Context) error {
	changed := s.control.Stop()
	return c.JSON(http.StatusOK, map[string]any{"changed": changed, "status": toStatus(s.control.Snapshot())})
}

func (s *Server) toggle(c echo.Context) error {
	s.control.Toggle(s.loopCtx)
	return c.JSON(http.StatusOK, map[string]any{"changed": true, "status": toStatus(s.control.Snapshot())})
}
