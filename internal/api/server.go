// Package api is the chi-based Control-plane Server: a thin HTTP adapter
// over the Manager, SPEC_FULL.md §4.H. Grounded on the teacher
// repository's TUI/daemon split — the server itself makes no decisions;
// every handler either translates a request into a Manager call or
// serves the Event Emitter's completion stream over SSE.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freedlm/fdm/internal/events"
	"github.com/freedlm/fdm/internal/manager"
	"github.com/freedlm/fdm/internal/registry"
	"github.com/freedlm/fdm/internal/transfer"
)

// Server adapts a Manager to HTTP.
type Server struct {
	mgr      *manager.Manager
	chanSink *events.ChanSink
	router   chi.Router
}

// New builds a Server wired to mgr, attaching a fresh ChanSink to mgr's
// Emitter so /events has something to subscribe to.
func New(mgr *manager.Manager) *Server {
	sink := events.NewChanSink()
	mgr.Events().Attach(sink)

	s := &Server{mgr: mgr, chanSink: sink}
	s.router = s.routes()
	return s
}

// Handler returns the http.Handler to mount or pass to http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/downloads", s.handleList)
	r.Post("/downloads", s.handleStart)
	r.Put("/limits", s.handleSetLimits)
	r.Post("/downloads/{id}/pause", s.handlePause)
	r.Post("/downloads/{id}/resume", s.handleResume)
	r.Post("/downloads/{id}/cancel", s.handleCancel)
	r.Post("/downloads/{id}/restart", s.handleRestart)
	r.Delete("/downloads/{id}", s.handleRemove)
	r.Get("/events", s.handleEvents)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a Manager error to the HTTP status spec.md §7/§4.H
// assigns it: 404 for unknown ids, 400 for everything else the Manager
// rejects a request for.
func statusFor(err error) int {
	var notFound registry.ErrNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	if err.Error() == "unknown transfer id" {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.List())
}

type startRequest struct {
	URL       string `json:"url"`
	FileName  string `json:"fileName,omitempty"`
	Directory string `json:"directory,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	rec, err := s.mgr.Start(req.URL, manager.StartOptions{
		FileName:  req.FileName,
		Directory: req.Directory,
		Kind:      req.Kind,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSetLimits(w http.ResponseWriter, r *http.Request) {
	var limits transfer.SpeedLimits
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.mgr.SetSpeedLimits(limits))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	rec, err := s.mgr.Pause(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	rec, err := s.mgr.Resume(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	rec, err := s.mgr.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	rec, err := s.mgr.Restart(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents serves download:completed as Server-Sent Events, grounded
// on the streamed-progress channel pattern in the teacher repository's
// TUI update loop, adapted from an in-process channel to an HTTP stream.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, unsubscribe := s.chanSink.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			payload, _ := json.Marshal(evt)
			_, _ = w.Write([]byte("event: download:completed\ndata: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		}
	}
}
