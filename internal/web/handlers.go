package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// period reads a positive integer query parameter as a count of unit,
// falling back to def when it is missing or malformed.
func period(r *http.Request, name string, def int, unit time.Duration) time.Duration {
	n := def
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return time.Duration(n) * unit
}

func (s *Server) writeJSON(w http.ResponseWriter, v any, err error) {
	if err != nil {
		s.logger.Error().Err(err).Msg("History query failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// handleRecent handles /api/recent requests
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-period(r, "hours", 24, time.Hour))
	results, err := s.db.GetRecent(since)
	s.writeJSON(w, results, err)
}

// handleStats handles /api/stats requests
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-period(r, "hours", 24, time.Hour))
	stats, err := s.db.GetStats(since)
	s.writeJSON(w, stats, err)
}

// handleActivity handles /api/activity requests
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-period(r, "hours", 24, time.Hour))
	activity, err := s.db.GetActivity(since)
	if err != nil {
		s.writeJSON(w, nil, err)
		return
	}

	s.writeJSON(w, struct {
		Cycles          int     `json:"cycles"`
		StreamingCycles int     `json:"streaming_cycles"`
		StreamingShare  float64 `json:"streaming_share"`
	}{activity.Cycles, activity.StreamingCycles, activity.StreamingShare()}, nil)
}

// handleOutages handles /api/outages requests
func (s *Server) handleOutages(w http.ResponseWriter, r *http.Request) {
	since := s.now().Add(-period(r, "days", 7, 24*time.Hour))
	outages, err := s.db.GetOutages(since)
	s.writeJSON(w, outages, err)
}
