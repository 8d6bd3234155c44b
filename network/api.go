package network

import (
	"net/http"
	"strconv"
	"time"

	"treasurehunt/storage"
)

const (
	defaultResultsLimit = 10
	maxResultsLimit     = 100
)

type createdSession struct {
	Code string `json:"code"`
}

type resultEntry struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Player      string    `json:"player,omitempty"`
	Treasures   int       `json:"treasures"`
	Taps        int       `json:"taps"`
	ElapsedMs   int64     `json:"elapsedMs"`
	CompletedAt time.Time `json:"completedAt"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.manager.List())
	case http.MethodPost:
		sess := s.manager.Create()
		s.logger.Printf("session %s created over http", sess.Code)
		writeJSON(w, http.StatusCreated, createdSession{Code: sess.Code})
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.results == nil {
		http.Error(w, "results disabled", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	results, err := s.results.ListFastest(r.Context(), limit)
	if err != nil {
		s.logger.Printf("list results: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]resultEntry, 0, len(results))
	for _, res := range results {
		out = append(out, toEntry(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultResultsLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	if n > maxResultsLimit {
		n = maxResultsLimit
	}
	return n, nil
}

func toEntry(r storage.Result) resultEntry {
	return resultEntry{
		ID:          r.ID,
		Code:        r.SessionCode,
		Player:      r.PlayerName,
		Treasures:   r.Treasures,
		Taps:        r.Taps,
		ElapsedMs:   r.Elapsed().Milliseconds(),
		CompletedAt: r.CompletedAt,
	}
}
