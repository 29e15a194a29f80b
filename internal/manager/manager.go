// Package manager implements the Control API: the idempotent command
// surface (list, set-limits, start, pause, resume, cancel, restart,
// remove) that mutates the Registry and spawns Workers. Grounded on the
// WorkerPool command methods (Pause/Resume/Cancel) in the teacher
// repository's internal/downloader/queue.go, generalized from a single
// global worker pool into the per-id spawn/cancel model SPEC_FULL.md
// §4.D specifies.
package manager

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/freedlm/fdm/internal/dirresolve"
	"github.com/freedlm/fdm/internal/events"
	"github.com/freedlm/fdm/internal/httpworker"
	"github.com/freedlm/fdm/internal/logging"
	"github.com/freedlm/fdm/internal/pathutil"
	"github.com/freedlm/fdm/internal/ratelimit"
	"github.com/freedlm/fdm/internal/registry"
	"github.com/freedlm/fdm/internal/transfer"
)

// Manager is the Control API implementation.
type Manager struct {
	reg     *registry.Registry
	limiter *ratelimit.Limiter
	emitter *events.Emitter
	worker  *httpworker.Worker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// OnTerminal is invoked for every terminal transition, wired to the
	// History Store by the caller (SPEC_FULL.md §4.F/§4.K). Optional.
	OnTerminal func(*transfer.Record)
}

// New returns a Manager wired to a fresh Registry, Rate Limiter, and
// Event Emitter.
func New() *Manager {
	reg := registry.New()
	limiter := ratelimit.New()
	emitter := events.New()
	worker := httpworker.New(reg, limiter, emitter)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		reg:     reg,
		limiter: limiter,
		emitter: emitter,
		worker:  worker,
		ctx:     ctx,
		cancel:  cancel,
	}
	worker.OnTerminal = func(rec *transfer.Record) {
		if m.OnTerminal != nil {
			m.OnTerminal(rec)
		}
	}
	return m
}

// Events exposes the Emitter so callers (the Control-plane Server) can
// attach SSE or other sinks.
func (m *Manager) Events() *events.Emitter {
	return m.emitter
}

// Shutdown trips cancellation for every in-flight Worker and waits for
// them to exit, used by `fdm serve`'s SIGINT/SIGTERM handler.
func (m *Manager) Shutdown() {
	m.cancel()
	for _, rec := range m.reg.SnapshotAll() {
		_, cancel, err := m.reg.Get(rec.ID)
		if err == nil {
			cancel.Trip()
		}
	}
	m.wg.Wait()
}

func (m *Manager) spawn(id string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.worker.Run(m.ctx, id)
	}()
}

// List implements list_downloads.
func (m *Manager) List() []*transfer.Record {
	return m.reg.SnapshotAll()
}

// SetSpeedLimits implements set_speed_limits.
func (m *Manager) SetSpeedLimits(limits transfer.SpeedLimits) transfer.SpeedLimits {
	return m.limiter.Set(limits)
}

// GetSpeedLimits returns the currently stored limits.
func (m *Manager) GetSpeedLimits() transfer.SpeedLimits {
	return m.limiter.Get()
}

// StartOptions carries the optional fields of start_download.
type StartOptions struct {
	FileName  string
	Directory string
	Kind      string // "", "http", "magnet", "torrent"
}

var errUnsupportedScheme = errors.New("Only http and https URLs are supported.")

// Start implements start_download (SPEC_FULL.md §4.D).
func (m *Manager) Start(rawURL string, opts StartOptions) (*transfer.Record, error) {
	kind := classifyKind(rawURL, opts.Kind)

	if kind != transfer.KindHTTP {
		rec := &transfer.Record{
			ID:        uuid.NewString(),
			URL:       rawURL,
			Kind:      kind,
			FileName:  "External Transfer",
			Status:    transfer.StatusExternal,
			CreatedAt: transfer.NowMillis(),
			UpdatedAt: transfer.NowMillis(),
		}
		m.reg.Insert(rec, transfer.NewCancelHandle())
		return rec.Clone(), nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errUnsupportedScheme
	}

	dir, err := dirresolve.Resolve(opts.Directory)
	if err != nil {
		return nil, err
	}

	name := opts.FileName
	if name != "" {
		name = pathutil.Sanitize(name)
	} else {
		name = pathutil.NameFromURL(rawURL)
	}

	savePath := pathutil.UniquePath(dir, name)
	tempPath := pathutil.TempPath(savePath)

	now := transfer.NowMillis()
	rec := &transfer.Record{
		ID:              uuid.NewString(),
		URL:             rawURL,
		Kind:            transfer.KindHTTP,
		FileName:        filepathBase(savePath),
		SavePath:        savePath,
		TempPath:        tempPath,
		Status:          transfer.StatusQueued,
		ResumeSupported: true,
		Attempt:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	snapshot := rec.Clone()
	m.reg.Insert(rec, transfer.NewCancelHandle())
	m.spawn(rec.ID)
	return snapshot, nil
}

func classifyKind(rawURL, explicit string) transfer.Kind {
	if trimmed := strings.ToLower(strings.TrimSpace(explicit)); trimmed != "" {
		switch trimmed {
		case "magnet":
			return transfer.KindMagnet
		case "torrent":
			return transfer.KindTorrent
		default:
			return transfer.KindHTTP
		}
	}
	switch {
	case strings.HasPrefix(rawURL, "magnet:"):
		return transfer.KindMagnet
	case strings.HasSuffix(rawURL, ".torrent"):
		return transfer.KindTorrent
	default:
		return transfer.KindHTTP
	}
}

func filepathBase(p string) string {
	idx := strings.LastIndexByte(p, os.PathSeparator)
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// Pause implements pause_download: a no-op on any status other than
// Running.
func (m *Manager) Pause(id string) (*transfer.Record, error) {
	rec, cancel, err := m.reg.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.Status != transfer.StatusRunning {
		return rec, nil
	}
	updated, err := m.reg.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusPaused
	})
	if err != nil {
		return nil, err
	}
	cancel.Trip()
	return updated, nil
}

var errUnknownID = errors.New("unknown transfer id")
var errResumeUnsupported = errors.New("Server does not support resume. Restart the download instead.")
var errNotHTTP = errors.New("transfer is not an HTTP download")

// Resume implements resume_download.
func (m *Manager) Resume(id string) (*transfer.Record, error) {
	rec, _, err := m.reg.Get(id)
	if err != nil {
		return nil, errUnknownID
	}
	if rec.Kind != transfer.KindHTTP {
		return nil, errNotHTTP
	}
	if rec.Status == transfer.StatusCompleted {
		return rec, nil
	}
	if !rec.ResumeSupported && rec.DownloadedBytes > 0 {
		return nil, errResumeUnsupported
	}

	fresh := transfer.NewCancelHandle()
	if err := m.reg.SetCancelHandle(id, fresh); err != nil {
		return nil, err
	}
	updated, err := m.reg.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusQueued
		r.Error = ""
		r.Attempt++
	})
	if err != nil {
		return nil, err
	}
	m.spawn(id)
	return updated, nil
}

// Cancel implements cancel_download.
func (m *Manager) Cancel(id string) (*transfer.Record, error) {
	rec, cancel, err := m.reg.Get(id)
	if err != nil {
		return nil, errUnknownID
	}
	if rec.Status == transfer.StatusCompleted || rec.Status == transfer.StatusCanceled {
		return rec, nil
	}
	updated, err := m.reg.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusCanceled
	})
	if err != nil {
		return nil, err
	}
	cancel.Trip()
	m.notifyTerminal(updated)
	return updated, nil
}

// notifyTerminal mirrors the Worker's own panic-isolated OnTerminal call,
// used here because Cancel drives a terminal transition directly rather
// than through the Worker.
func (m *Manager) notifyTerminal(rec *transfer.Record) {
	if m.OnTerminal == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Debug("history hook panicked %s %s: %v", logging.Field("id", rec.ID), logging.Field("status", rec.Status), r)
		}
	}()
	m.OnTerminal(rec)
}

// Restart implements restart_download.
func (m *Manager) Restart(id string) (*transfer.Record, error) {
	rec, _, err := m.reg.Get(id)
	if err != nil {
		return nil, errUnknownID
	}
	if rec.Kind != transfer.KindHTTP {
		return nil, errNotHTTP
	}

	if err := os.Remove(rec.TempPath); err != nil {
		logging.Debug("restart: best-effort temp file removal failed %s: %v", logging.Field("id", id), err)
	}

	fresh := transfer.NewCancelHandle()
	if err := m.reg.SetCancelHandle(id, fresh); err != nil {
		return nil, err
	}
	updated, err := m.reg.Update(id, func(r *transfer.Record) {
		r.DownloadedBytes = 0
		r.TotalBytes = nil
		r.SpeedBps = 0
		r.Status = transfer.StatusQueued
		r.Error = ""
		r.Attempt = 1
	})
	if err != nil {
		return nil, err
	}
	m.spawn(id)
	return updated, nil
}

var errMustStopFirst = fmt.Errorf("Stop the download before removing it.")

// Remove implements remove_download.
func (m *Manager) Remove(id string) error {
	rec, _, err := m.reg.Get(id)
	if err != nil {
		return errUnknownID
	}
	switch rec.Status {
	case transfer.StatusRunning, transfer.StatusQueued, transfer.StatusPaused:
		return errMustStopFirst
	}
	return m.reg.Remove(id)
}
