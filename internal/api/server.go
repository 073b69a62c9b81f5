// Package api exposes the alignment session over HTTP: cursor state,
// navigation, confirmation, and the synced-results exchange endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/kickoff-data/pitchsync/internal/align"
	"github.com/kickoff-data/pitchsync/internal/match"
	"github.com/kickoff-data/pitchsync/internal/store"
	"github.com/kickoff-data/pitchsync/internal/timeutil"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxImportBytes bounds import payloads; a full-match results map is a
// few hundred kilobytes at most.
const maxImportBytes = 8 << 20

type Server struct {
	engine *align.Engine
	events *match.EventsView
	meta   *match.Metadata
	store  store.ResultsStore
	clock  timeutil.Clock
	clamp  int
}

// NewServer wires the operator API over an engine. events and meta may
// be nil when the session was loaded without them; the affected
// response fields are omitted. clamp bounds the display offset.
func NewServer(engine *align.Engine, events *match.EventsView, meta *match.Metadata, st store.ResultsStore, clock timeutil.Clock, clamp int) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Server{
		engine: engine,
		events: events,
		meta:   meta,
		store:  st,
		clock:  clock,
		clamp:  clamp,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status and duration for each
// request.
func (s *Server) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(s.clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux registers the session routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/api/next", s.handleNext)
	mux.HandleFunc("/api/prev", s.handlePrev)
	mux.HandleFunc("/api/jump", s.handleJump)
	mux.HandleFunc("/api/skip", s.handleSkip)
	mux.HandleFunc("/api/offset", s.handleOffset)
	mux.HandleFunc("/api/confirm", s.handleConfirm)
	mux.HandleFunc("/api/results/export", s.handleExport)
	mux.HandleFunc("/api/results/import", s.handleImport)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/monitor/offsets", s.handleOffsetChart)
	return mux
}

// eventPayload is the wire form of the event under the cursor.
type eventPayload struct {
	ID          string  `json:"id"`
	PeriodID    int64   `json:"period_id"`
	NominalTime int64   `json:"nominal_time_ms"`
	TeamID      int64   `json:"team_id"`
	JerseyNo    int64   `json:"jersey_no"`
	PlayerName  string  `json:"player_name,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	PassEndX    float64 `json:"pass_end_x,omitempty"`
	PassEndY    float64 `json:"pass_end_y,omitempty"`
	TypeDesc    string  `json:"event_type,omitempty"`
	Synced      bool    `json:"synced"`
}

type stateResponse struct {
	align.State
	// DisplayOffset is FrameOffset clamped into the configured display
	// range; FrameOffset itself is never clamped.
	DisplayOffset int           `json:"display_offset"`
	TrackingTime  *int64        `json:"tracking_time_ms,omitempty"`
	CurrentEvent  *eventPayload `json:"current_event,omitempty"`
	Warning       string        `json:"warning,omitempty"`
}

func (s *Server) stateResponse() stateResponse {
	st := s.engine.State()
	resp := stateResponse{State: st, DisplayOffset: clampInt(st.FrameOffset, s.clamp)}
	if t, ok := s.engine.CurrentTrackingTime(); ok {
		resp.TrackingTime = &t
	}
	if !st.Exhausted && !st.PeriodHasTracking {
		resp.Warning = "no tracking data for this period"
	}
	if s.events != nil && !st.Exhausted && st.CurrentEventIndex < s.events.Len() {
		row := s.events.Row(st.CurrentEventIndex)
		ev := eventPayload{
			ID:          row.ID,
			PeriodID:    row.PeriodID,
			NominalTime: row.NominalTime,
			TeamID:      row.TeamID,
			JerseyNo:    row.Jersey,
			X:           row.X,
			Y:           row.Y,
			Synced:      s.engine.IsSynced(st.CurrentEventIndex),
		}
		if row.HasPassEnd {
			ev.PassEndX, ev.PassEndY = row.PassEndX, row.PassEndY
		}
		if row.HasType {
			ev.TypeDesc = row.TypeDesc
		}
		if s.meta != nil {
			ev.PlayerName = s.meta.PlayerName(row.TeamID, row.Jersey)
		}
		resp.CurrentEvent = &ev
	}
	return resp
}

func clampInt(v, bound int) int {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

func (s *Server) writeState(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeState(w)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.engine.Advance(align.Next)
	s.writeState(w)
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.engine.Advance(align.Prev)
	s.writeState(w)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid jump request: %v", err))
		return
	}
	s.engine.Jump(req.Index)
	s.writeState(w)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	s.engine.Skip()
	s.writeState(w)
}

func (s *Server) handleOffset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset request: %v", err))
		return
	}
	s.engine.AdjustOffset(req.Delta)
	s.writeState(w)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		// TrackingTime overrides the cursor-implied instant when set.
		TrackingTime *int64 `json:"tracking_time_ms"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid confirm request: %v", err))
			return
		}
	}

	trackingTime, ok := s.engine.CurrentTrackingTime()
	if req.TrackingTime != nil {
		trackingTime, ok = *req.TrackingTime, true
	}
	if !ok {
		s.writeError(w, http.StatusConflict, "no tracking time to confirm for this event")
		return
	}

	if err := s.engine.Confirm(trackingTime); err != nil {
		// The in-memory confirmation stands; the next successful save
		// rewrites the whole map and heals the store.
		log.Printf("confirm saved in memory only: %v", err)
		resp := s.stateResponse()
		resp.Warning = fmt.Sprintf("confirmed in memory, but saving failed: %v", err)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	s.writeState(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := align.MarshalResults(s.engine.ExportResults())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("encoding results: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="synced_results.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("reading import payload: %v", err))
		return
	}
	results, err := align.ParseResults(body)
	if err != nil {
		// The whole import is rejected; nothing was applied.
		status := http.StatusBadRequest
		if errors.Is(err, align.ErrNotObject) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err.Error())
		return
	}
	if err := s.engine.ImportResults(results); err != nil {
		log.Printf("import saved in memory only: %v", err)
		resp := s.stateResponse()
		resp.Warning = fmt.Sprintf("imported in memory, but saving failed: %v", err)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	s.writeState(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type statsResponse struct {
		Overall  align.OffsetStats           `json:"overall"`
		ByPeriod map[int64]align.OffsetStats `json:"by_period"`
	}
	s.writeJSON(w, http.StatusOK, statsResponse{
		Overall:  s.engine.OffsetStats(),
		ByPeriod: s.engine.OffsetStatsByPeriod(),
	})
}

// recordLister is implemented by stores that can enumerate their
// persisted records. The in-memory store cannot.
type recordLister interface {
	ListRecords() ([]store.RecordInfo, error)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	lister, ok := s.store.(recordLister)
	if !ok {
		s.writeJSON(w, http.StatusOK, []store.RecordInfo{})
		return
	}
	infos, err := lister.ListRecords()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if infos == nil {
		infos = []store.RecordInfo{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}
