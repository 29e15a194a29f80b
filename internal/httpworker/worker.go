// Package httpworker implements the single async task that executes one
// attempt at one HTTP transfer: it issues the request (with a Range
// header if resuming), streams the body to the temp file, updates
// progress, and finalizes. Grounded on SingleDownloader in the teacher
// repository's internal/engine/single/downloader.go, generalized from a
// one-shot copy loop into the full resume/pause/cancel state machine
// SPEC_FULL.md §4.E specifies.
package httpworker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vfaronov/httpheader"

	"github.com/freedlm/fdm/internal/events"
	"github.com/freedlm/fdm/internal/logging"
	"github.com/freedlm/fdm/internal/pathutil"
	"github.com/freedlm/fdm/internal/ratelimit"
	"github.com/freedlm/fdm/internal/registry"
	"github.com/freedlm/fdm/internal/transfer"
)

// UserAgent is the default User-Agent sent on every request, per
// SPEC_FULL.md §6.
const UserAgent = "FreeDownloadManager/1.0"

// publishInterval bounds how often mid-stream progress is written back to
// the Registry, per SPEC_FULL.md §4.E step 9 ("every >=500ms").
const publishInterval = 500 * time.Millisecond

// bufferSize is the read buffer used for the streaming copy loop.
const bufferSize = 32 * 1024

// Worker owns one attempt at one transfer. A fresh Worker is spawned by
// the Manager on every start/resume/restart; only one is ever active for
// a given id (Registry invariant 3).
type Worker struct {
	Registry *registry.Registry
	Limiter  *ratelimit.Limiter
	Emitter  *events.Emitter
	Client   *http.Client

	// OnTerminal, if set, is called after every transition this Worker
	// makes into a terminal status (Completed/Failed), with the final
	// record; Canceled transitions are made and reported by the Manager. Used by the Manager to feed the History Store without
	// this package depending on it directly.
	OnTerminal func(*transfer.Record)
}

// New returns a Worker with a shared, reusable HTTP client.
func New(reg *registry.Registry, limiter *ratelimit.Limiter, emitter *events.Emitter) *Worker {
	return &Worker{
		Registry: reg,
		Limiter:  limiter,
		Emitter:  emitter,
		Client:   &http.Client{Timeout: 0},
	}
}

// Run executes one attempt at id's transfer. It never panics and never
// returns an error to the caller: every failure mode is recorded onto
// the Registry as a Failed/Paused/Canceled transition instead, matching
// SPEC_FULL.md §7 ("the Worker never crashes the process").
func (w *Worker) Run(ctx context.Context, id string) {
	rec, cancel, err := w.Registry.Get(id)
	if err != nil {
		return // removed or never existed; exit silently
	}
	if rec.Kind != transfer.KindHTTP {
		return
	}

	if err := os.MkdirAll(filepath.Dir(rec.SavePath), 0o755); err != nil {
		w.fail(id, "Unable to create download directory")
		return
	}

	rec, err = w.Registry.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusRunning
		r.Error = ""
	})
	if err != nil {
		return
	}

	onDisk := statSize(rec.TempPath)
	rec, err = w.Registry.Update(id, func(r *transfer.Record) {
		r.DownloadedBytes = onDisk
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.URL, nil)
	if err != nil {
		w.fail(id, fmt.Sprintf("Request failed: %v", err))
		return
	}
	req.Header.Set("User-Agent", UserAgent)
	resuming := rec.DownloadedBytes > 0
	if resuming {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", rec.DownloadedBytes))
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		w.fail(id, fmt.Sprintf("Request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if ok := w.validateResponse(id, resp, resuming); !ok {
		return
	}

	total, resumeSupported := deriveSizes(resp, rec.DownloadedBytes, resuming)
	rec, err = w.Registry.Update(id, func(r *transfer.Record) {
		if total != nil {
			r.TotalBytes = total
		}
		r.ResumeSupported = resumeSupported
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			r.ContentType = ct
		}
	})
	if err != nil {
		return
	}

	file, err := openTempFile(rec.TempPath, resuming)
	if err != nil {
		w.fail(id, fmt.Sprintf("Unable to write file: %v", err))
		return
	}
	defer file.Close()

	if err := w.streamBody(ctx, id, cancel, resp.Body, file, rec.DownloadedBytes); err != nil {
		if err == errStopped {
			return
		}
		w.fail(id, err.Error())
		return
	}

	if err := file.Sync(); err != nil {
		w.fail(id, fmt.Sprintf("Flush error: %v", err))
		return
	}

	w.finalize(id, rec.SavePath, rec.TempPath)
}

var errStopped = fmt.Errorf("worker stopped cooperatively")

// validateResponse implements SPEC_FULL.md §4.E step 6. Returns false if
// the Worker should stop (a Failed transition was already recorded).
func (w *Worker) validateResponse(id string, resp *http.Response, resuming bool) bool {
	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		w.failResumeDisabled(id, "Range not satisfiable. Restart the download.")
		return false
	case resuming && resp.StatusCode != http.StatusPartialContent:
		w.failResumeDisabled(id, "Server does not support resume")
		return false
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		w.fail(id, fmt.Sprintf("Download failed: %d", resp.StatusCode))
		return false
	default:
		return true
	}
}

func (w *Worker) failResumeDisabled(id, msg string) {
	rec, err := w.Registry.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusFailed
		r.Error = msg
		r.ResumeSupported = false
	})
	if err == nil {
		w.notifyTerminal(rec)
	}
}

func (w *Worker) fail(id, msg string) {
	rec, err := w.Registry.Update(id, func(r *transfer.Record) {
		r.Status = transfer.StatusFailed
		r.Error = msg
	})
	if err == nil {
		w.notifyTerminal(rec)
	}
}

// deriveSizes implements SPEC_FULL.md §4.E step 7: Content-Length is
// parsed with strconv, Accept-Ranges with github.com/vfaronov/httpheader
// instead of hand-rolled string matching.
func deriveSizes(resp *http.Response, downloadedSoFar int64, resuming bool) (*int64, bool) {
	var total *int64
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			t := n + downloadedSoFar
			total = &t
		}
	}

	units := httpheader.AcceptRanges(resp.Header)
	resumeSupported := containsUnit(units, "bytes")
	if !resumeSupported && resp.Header.Get("Accept-Ranges") == "" {
		// Header absent: a resuming request that reached this point already
		// got back 206, which only happens if the server honored the Range
		// request, so resume is supported regardless of the missing header.
		// A fresh, non-resuming request gives no such guarantee and stays
		// unsupported until a later resume attempt proves otherwise.
		if resuming {
			resumeSupported = true
		}
	}
	return total, resumeSupported
}

func containsUnit(units []string, want string) bool {
	for _, u := range units {
		if u == want {
			return true
		}
	}
	return false
}

func openTempFile(path string, resuming bool) (*os.File, error) {
	if resuming {
		return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

func statSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// streamBody implements SPEC_FULL.md §4.E step 9: the chunk-by-chunk
// copy loop with cancellation checks, rate limiting, and periodic
// progress publication.
func (w *Worker) streamBody(ctx context.Context, id string, cancel *transfer.CancelHandle, body io.Reader, file *os.File, startBytes int64) error {
	buf := make([]byte, bufferSize)
	downloaded := startBytes
	lastPublish := time.Now()
	var windowBytes int64

	for {
		if cancel.Tripped() {
			w.resolveCancellation(id, downloaded)
			return errStopped
		}
		select {
		case <-ctx.Done():
			w.resolveCancellation(id, downloaded)
			return errStopped
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			w.Limiter.Acquire(int64(n))

			if _, werr := file.Write(buf[:n]); werr != nil {
				return fmt.Errorf("Write error: %v", werr)
			}
			downloaded += int64(n)
			windowBytes += int64(n)

			if elapsed := time.Since(lastPublish); elapsed >= publishInterval {
				speed := float64(windowBytes) / elapsed.Seconds()
				downloadedNow := downloaded
				_, _ = w.Registry.Update(id, func(r *transfer.Record) {
					r.DownloadedBytes = downloadedNow
					r.SpeedBps = speed
				})
				lastPublish = time.Now()
				windowBytes = 0
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				downloadedNow := downloaded
				_, _ = w.Registry.Update(id, func(r *transfer.Record) {
					r.DownloadedBytes = downloadedNow
				})
				return nil
			}
			return fmt.Errorf("Stream error: %v", readErr)
		}
	}
}

// resolveCancellation implements SPEC_FULL.md §5's status race rule: the
// Worker reads the record's current status, under the Registry lock, to
// decide whether a trip means Pause or Cancel. Canceled always wins. The
// bytes written so far are published in the same update.
func (w *Worker) resolveCancellation(id string, downloaded int64) {
	_, _ = w.Registry.Update(id, func(r *transfer.Record) {
		r.DownloadedBytes = downloaded
		if r.Status != transfer.StatusCanceled {
			r.Status = transfer.StatusPaused
		}
	})
}

// finalize implements SPEC_FULL.md §4.E step 11.
func (w *Worker) finalize(id, savePath, tempPath string) {
	if filepath.Ext(savePath) == "" {
		if ext := pathutil.SniffExtension(tempPath); ext != "" {
			savePath = pathutil.WithExtension(savePath, ext)
		}
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		w.fail(id, fmt.Sprintf("Finalize error: %v", err))
		return
	}
	if err := os.Rename(tempPath, savePath); err != nil {
		w.fail(id, fmt.Sprintf("Finalize error: %v", err))
		return
	}

	finalSize := statSize(savePath)
	rec, err := w.Registry.Update(id, func(r *transfer.Record) {
		r.SavePath = savePath
		r.TempPath = pathutil.TempPath(savePath)
		r.DownloadedBytes = finalSize
		r.Status = transfer.StatusCompleted
		r.SpeedBps = 0
		if r.TotalBytes == nil {
			r.TotalBytes = &finalSize
		}
	})
	if err != nil {
		return
	}

	w.notifyTerminal(rec)
	w.Emitter.EmitCompleted(id)
}

func (w *Worker) notifyTerminal(rec *transfer.Record) {
	if w.OnTerminal != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Debug("history hook panicked %s %s: %v", logging.Field("id", rec.ID), logging.Field("status", rec.Status), r)
				}
			}()
			w.OnTerminal(rec)
		}()
	}
}
