package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/KaziBadrul/Acadex-sub000/internal/capture"
	"github.com/KaziBadrul/Acadex-sub000/internal/config"
	"github.com/KaziBadrul/Acadex-sub000/internal/icsfeed"
	appLog "github.com/KaziBadrul/Acadex-sub000/internal/log"
	"github.com/KaziBadrul/Acadex-sub000/internal/model"
	"github.com/KaziBadrul/Acadex-sub000/internal/routine"
	"github.com/KaziBadrul/Acadex-sub000/internal/schedule"
	"github.com/KaziBadrul/Acadex-sub000/internal/store"
)

// maxParseBody bounds POST /api/routine payloads. OCR text for one
// routine page is a few KB; anything near this limit is not a routine.
const maxParseBody = 1 << 20

// Server provides the HTTP API over the routine snapshot: parse
// ingestion, the current-week projection, upcoming occurrences, the
// ICS feed and the PNG preview.
type Server struct {
	cfg   *config.Config
	store *store.Store
	loc   *time.Location
	mux   *http.ServeMux

	// In-memory cache for the current-week projection; the Sunday
	// anchor only moves once a week, so recomputing per request is
	// wasted work. Invalidated on writes and by the cron refresh.
	calMu    sync.RWMutex
	calCache *calendarCache
}

// embeddedStatic contains the built-in week-grid page served at "/".
// It doubles as the capture target for PNG snapshots.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a Server over the given config and store.
// The display timezone is resolved once; invalid names fall back to
// the process-local zone.
func NewServer(cfg *config.Config, st *store.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: st,
		loc:   resolveLocationOrLocal(cfg.Timezone),
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// applied when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/routine", s.handleParseRoutine)
	s.mux.HandleFunc("GET /api/routine", s.handleListRoutine)
	s.mux.HandleFunc("DELETE /api/routine/{id}", s.handleDeleteRoutine)

	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICSFeed)

	s.mux.HandleFunc("POST /api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)

	// Everything else falls through to the embedded week-grid page.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="routinecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// parseRequest is the JSON body for POST /api/routine.
type parseRequest struct {
	// Text is the raw OCR output for one routine page, as produced by
	// the (external) OCR engine.
	Text string `json:"text"`
}

// routineResponse is the JSON shape for routine event lists.
type routineResponse struct {
	Events []model.RoutineEvent `json:"events"`
	Count  int                  `json:"count"`
}

// handleParseRoutine parses posted OCR text into routine events and
// replaces the stored snapshot with the result. Parsing itself never
// fails; an unrecognizable page simply yields zero events.
func (s *Server) handleParseRoutine(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	events := routine.ParseWith(req.Text, routine.Options{
		DefaultStart: s.cfg.ClassStart,
		DefaultEnd:   s.cfg.ClassEnd,
	})

	if err := s.store.ReplaceAll(events); err != nil {
		appLog.Error("api routine: snapshot replace failed", err)
		writeError(w, http.StatusInternalServerError, "failed to store routine")
		return
	}
	s.InvalidateProjection()

	appLog.Info("api routine parsed", "event_count", len(events), "text_bytes", len(req.Text))
	writeJSON(w, http.StatusOK, routineResponse{Events: events, Count: len(events)})
}

func (s *Server) handleListRoutine(w http.ResponseWriter, _ *http.Request) {
	events, err := s.store.List()
	if err != nil {
		appLog.Error("api routine: list failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load routine")
		return
	}
	writeJSON(w, http.StatusOK, routineResponse{Events: events, Count: len(events)})
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such event")
			return
		}
		appLog.Error("api routine: delete failed", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	s.InvalidateProjection()
	w.WriteHeader(http.StatusNoContent)
}

// calendarResponse is the JSON shape for GET /api/calendar.
type calendarResponse struct {
	Events    []model.CalendarEvent `json:"events"`
	WeekStart string                `json:"week_start"`
	Timezone  string                `json:"timezone"`
}

// calendarCache holds a cached projection and its timestamp.
type calendarCache struct {
	resp      calendarResponse
	updatedAt time.Time
}

const calendarCacheTTL = 30 * time.Second

// handleCalendar returns the stored routine projected onto the current
// calendar week, anchored to the server clock in the display timezone.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()

	s.calMu.RLock()
	cc := s.calCache
	s.calMu.RUnlock()
	if cc != nil && now.Sub(cc.updatedAt) < calendarCacheTTL {
		writeJSON(w, http.StatusOK, cc.resp)
		return
	}

	events, err := s.store.List()
	if err != nil {
		appLog.Error("api calendar: list failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load routine")
		return
	}

	ref := now.In(s.loc)
	resp := calendarResponse{
		Events:    schedule.Project(events, ref),
		WeekStart: schedule.WeekStart(ref).Format("2006-01-02"),
		Timezone:  s.loc.String(),
	}

	s.calMu.Lock()
	s.calCache = &calendarCache{resp: resp, updatedAt: time.Now()}
	s.calMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// InvalidateProjection drops the cached week projection. Called on
// writes and from the cron refresh so the view rolls over with the
// week without waiting out the TTL.
func (s *Server) InvalidateProjection() {
	s.calMu.Lock()
	s.calCache = nil
	s.calMu.Unlock()
}

// maxUpcomingDays bounds the /api/upcoming window; beyond it the
// rrule walk burns CPU for occurrences nobody scrolls to.
const maxUpcomingDays = 366

// upcomingResponse is the JSON shape for GET /api/upcoming.
type upcomingResponse struct {
	Occurrences []schedule.Occurrence `json:"occurrences"`
	Truncated   []string              `json:"truncated,omitempty"`
	RangeStart  time.Time             `json:"range_start"`
	RangeEnd    time.Time             `json:"range_end"`
}

// handleUpcoming expands the stored routine into concrete occurrences.
//
// GET /api/upcoming?days=N (default: config horizon, capped at a year)
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := parseIntDefault(r.URL.Query().Get("days"), s.cfg.HorizonDays)
	if days <= 0 {
		days = s.cfg.HorizonDays
	}
	if days > maxUpcomingDays {
		days = maxUpcomingDays
	}

	events, err := s.store.List()
	if err != nil {
		appLog.Error("api upcoming: list failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load routine")
		return
	}

	ref := time.Now().In(s.loc)
	rangeEnd := ref.AddDate(0, 0, days)

	result, err := schedule.Upcoming(events, schedule.UpcomingConfig{
		RangeStart: ref,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		appLog.Error("api upcoming: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to expand occurrences")
		return
	}

	writeJSON(w, http.StatusOK, upcomingResponse{
		Occurrences: result.Occurrences,
		Truncated:   result.Truncated,
		RangeStart:  ref,
		RangeEnd:    rangeEnd,
	})
}

// handleICSFeed serves the routine as an iCalendar subscription feed.
func (s *Server) handleICSFeed(w http.ResponseWriter, _ *http.Request) {
	events, err := s.store.List()
	if err != nil {
		appLog.Error("calendar.ics: list failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load routine")
		return
	}

	body := icsfeed.Bytes(events, time.Now().In(s.loc))
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="routine.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleSnapshot triggers a headless capture of the week-grid page to
// the configured preview path.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PreviewPath == "" {
		writeError(w, http.StatusConflict, "preview capture is not configured")
		return
	}

	if err := s.CapturePreview(r.Context()); err != nil {
		appLog.Error("api snapshot: capture failed", err)
		writeError(w, http.StatusInternalServerError, "capture failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"preview": "/preview.png"})
}

// CapturePreview renders the embedded week-grid page through headless
// Chromium into cfg.PreviewPath. Also called from the cron refresh.
func (s *Server) CapturePreview(ctx context.Context) error {
	return capture.WeekGridPNG(ctx, capture.Options{
		URL:        "http://" + s.cfg.Listen + "/",
		OutputPath: s.cfg.PreviewPath,
	})
}

// handlePreview serves the last captured PNG from disk. ServeFile maps
// a missing file to 404 on its own.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.cfg.PreviewPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.PreviewPath)
}

// staticFileServer serves the embedded week-grid page.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}
	return http.FileServer(http.FS(sub))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
