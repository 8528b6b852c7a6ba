package webd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rotblauer/sailtrack/api"
	"github.com/rotblauer/sailtrack/events"
	"github.com/rotblauer/sailtrack/geo/clean"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/stream"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt   time.Time               `json:"started_at"`
	Uptime      string                  `json:"uptime"`
	Config      *params.WebDaemonConfig `json:"config"`
	WSOpen      bool                    `json:"ws_open"`
	WSConns     int                     `json:"ws_conns"`
	WindDegrees float64                 `json:"wind_degrees"`
	Points      int                     `json:"points"`
	Runs        int64                   `json:"runs"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := webDaemonStatus{
		StartedAt:   s.started,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		WSOpen:      !s.melodyInstance.IsClosed(),
		WSConns:     s.melodyInstance.Len(),
		Config:      s.Config,
		WindDegrees: s.wind,
		Points:      s.data.Len(),
		Runs:        s.analyzer.Runs(),
	}
	s.mu.Unlock()
	s.writeJSON(w, st)
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// requestWind returns the wind bearing of the request, the current one when absent.
func (s *WebDaemon) requestWind(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("wind")
	if raw == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.wind, true
	}
	wind, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid wind %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return wind, true
}

func windKey(wind float64) string {
	return strconv.FormatFloat(wind, 'f', -1, 64)
}

// analyzeLocked re-runs the analysis when the wind changed and publishes the new report.
// The caller holds s.mu.
func (s *WebDaemon) analyzeLocked(wind float64) error {
	if wind == s.wind {
		return nil
	}
	if err := s.rerunLocked(wind); err != nil {
		return err
	}
	if err := s.persistLocked(false); err != nil {
		s.logger.Error("Failed to persist session", "error", err)
	}
	return nil
}

func (s *WebDaemon) rerunLocked(wind float64) error {
	if err := s.analyzer.Run(s.data, wind); err != nil {
		return err
	}
	s.wind = wind
	report := api.NewReport(s.data, wind, s.Config.HistogramBins)
	s.feedAnalyzed.Send(&report)
	return nil
}

// report returns the rendered analysis for the wind, analyzing again when it is not cached.
func (s *WebDaemon) report(wind float64) ([]byte, error) {
	key := windKey(wind)
	if item := s.reports.Get(key); item != nil {
		return item.Value(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.analyzeLocked(wind); err != nil {
		return nil, err
	}
	b, err := json.Marshal(api.NewReport(s.data, wind, s.Config.HistogramBins))
	if err != nil {
		return nil, err
	}
	s.reports.Set(key, b, ttlcache.DefaultTTL)
	return b, nil
}

func (s *WebDaemon) httpError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrInvalidWind) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error("Analysis failed", "error", err)
	http.Error(w, "Analysis failed", http.StatusInternalServerError)
}

// handleAnalysis returns the analysis for ?wind=DEG, or for the current wind.
func (s *WebDaemon) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	wind, ok := s.requestWind(w, r)
	if !ok {
		return
	}
	b, err := s.report(wind)
	if err != nil {
		s.httpError(w, err)
		return
	}
	if _, err := w.Write(b); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.data.Stats()
	s.mu.Unlock()
	s.writeJSON(w, st)
}

func (s *WebDaemon) handleTimings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	timings := s.analyzer.Timings()
	runs := s.analyzer.Runs()
	s.mu.Unlock()

	stages := make(map[string]string, len(timings))
	for stage, d := range timings {
		stages[stage] = d.Round(time.Microsecond).String()
	}
	s.writeJSON(w, map[string]any{"runs": runs, "stages": stages})
}

// handleTacksGeoJSON returns the tacks for ?wind=DEG, or for the current wind.
func (s *WebDaemon) handleTacksGeoJSON(w http.ResponseWriter, r *http.Request) {
	wind, ok := s.requestWind(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := s.analyzeLocked(wind)
	var b []byte
	if err == nil {
		b, err = api.TacksFeatureCollection(s.data).MarshalJSON()
	}
	s.mu.Unlock()
	if err != nil {
		s.httpError(w, err)
		return
	}
	if _, err := w.Write(b); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type postPointsResponse struct {
	Received int `json:"received"`
	Added    int `json:"added"`
	Total    int `json:"total"`
}

// handlePostPoints appends NDJSON points to the track and analyzes it again.
// Points are cleaned as on import.
func (s *WebDaemon) handlePostPoints(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		http.Error(w, "Please send a request body", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	points, err := stream.ReadAll(ctx, r.Body)
	if err != nil {
		s.logger.Error("Failed to read points", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if len(points) == 0 {
		http.Error(w, "No points", http.StatusUnprocessableEntity)
		return
	}
	events.PointsPostedFeed.Send(points)
	cleaned := stream.Collect(context.Background(),
		clean.Clean(context.Background(), s.Config.Clean, stream.Slice(context.Background(), points)))

	s.mu.Lock()
	for _, p := range cleaned {
		s.data.Add(p)
	}
	s.reports.DeleteAll()
	err = s.rerunLocked(s.wind)
	if err == nil {
		if perr := s.persistLocked(true); perr != nil {
			s.logger.Error("Failed to persist session", "error", perr)
		}
	}
	total := s.data.Len()
	s.mu.Unlock()
	if err != nil {
		s.httpError(w, err)
		return
	}
	s.logger.Info("Added points", "received", len(points), "added", len(cleaned), "total", total)
	s.writeJSON(w, postPointsResponse{Received: len(points), Added: len(cleaned), Total: total})
}
