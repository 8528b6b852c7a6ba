package webd

import (
	"encoding/json"
	"log/slog"

	"github.com/olahol/melody"
	"github.com/rotblauer/sailtrack/api"
	"github.com/tidwall/gjson"
)

type websocketAction string

var websocketActionAnalysis websocketAction = "analysis"

type broadcastAnalysis struct {
	Action websocketAction `json:"action"`
	Report *api.Report     `json:"report"`
}

// initMelody sets up the websocket handler.
// Clients receive the analysis on connect and after every re-run.
// A client may send {"wind": DEG} to analyze for another wind.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(session *melody.Session) {
		s.logger.Debug("Websocket connected", "remote", session.Request.RemoteAddr)
		s.mu.Lock()
		report := api.NewReport(s.data, s.wind, s.Config.HistogramBins)
		s.mu.Unlock()
		b, err := json.Marshal(broadcastAnalysis{Action: websocketActionAnalysis, Report: &report})
		if err != nil {
			s.logger.Error("Failed to marshal analysis", "error", err)
			return
		}
		_ = session.Write(b)
	})

	s.melodyInstance.HandleMessage(func(session *melody.Session, msg []byte) {
		wind := gjson.GetBytes(msg, "wind")
		if !wind.Exists() {
			s.logger.Debug("Websocket message dropped", "msg", string(msg))
			return
		}
		s.mu.Lock()
		err := s.analyzeLocked(wind.Float())
		s.mu.Unlock()
		if err != nil {
			s.logger.Warn("Websocket analysis failed", "error", err)
			_ = session.Write([]byte(`{"error":` + jsonString(err.Error()) + `}`))
		}
	})

	s.melodyInstance.HandleDisconnect(func(session *melody.Session) {
		s.logger.Debug("Websocket disconnected", "remote", session.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(session *melody.Session, e error) {
		s.logger.Warn("Websocket error", "error", e, "remote", session.Request.RemoteAddr)
	})

	// Broadcast every new analysis to all connected clients.
	reports := make(chan *api.Report)
	sub := s.feedAnalyzed.Subscribe(reports)
	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case report := <-reports:
				b, err := json.Marshal(broadcastAnalysis{Action: websocketActionAnalysis, Report: report})
				if err != nil {
					slog.Error("Failed to marshal analysis", "error", err)
					continue
				}
				if s.melodyInstance.IsClosed() {
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast analysis", "error", err)
				}
			case err := <-sub.Err():
				if err != nil {
					slog.Error("Analysis feed subscription failed", "error", err)
				}
				return
			}
		}
	}()
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
