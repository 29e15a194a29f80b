// Package transfer defines the data model shared by every component of the
// download core: the serializable Record, its Kind/Status enums, and the
// SpeedLimits pair. Nothing in this package touches the network or the
// filesystem; it is pure state.
package transfer

import "time"

// Kind classifies a transfer by protocol. Only Http transfers ever get a
// Worker; Magnet and Torrent are tracked as opaque External records.
type Kind string

const (
	KindHTTP    Kind = "http"
	KindMagnet  Kind = "magnet"
	KindTorrent Kind = "torrent"
)

// Status is the transfer's lifecycle state. See the state machine in
// SPEC_FULL.md §4.E.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
	StatusExternal  Status = "external"
)

// Terminal reports whether no further Worker attempt will ever touch this
// status without an explicit Resume/Restart first.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled, StatusExternal:
		return true
	default:
		return false
	}
}

// Record is the serializable state of one transfer. Field tags follow the
// camelCase wire contract in SPEC_FULL.md §6.
type Record struct {
	ID               string `json:"id"`
	URL              string `json:"url"`
	Kind             Kind   `json:"kind"`
	FileName         string `json:"fileName"`
	SavePath         string `json:"savePath"`
	TempPath         string `json:"tempPath"`
	Status           Status `json:"status"`
	TotalBytes       *int64 `json:"totalBytes,omitempty"`
	DownloadedBytes  int64  `json:"downloadedBytes"`
	SpeedBps         float64 `json:"speedBps"`
	Error            string `json:"error,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt"`
	ResumeSupported  bool   `json:"resumeSupported"`
	ContentType      string `json:"contentType,omitempty"`
	Attempt          int    `json:"attempt,omitempty"`
}

// Clone returns a deep-enough copy safe to hand to a caller outside the
// Registry lock: the only reference field is TotalBytes, which is copied
// to a fresh pointer.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.TotalBytes != nil {
		v := *r.TotalBytes
		c.TotalBytes = &v
	}
	return &c
}

// NowMillis returns the current time as a millisecond Unix timestamp, the
// unit used for CreatedAt/UpdatedAt throughout this package.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// SpeedLimits holds the two optional process-wide rate caps. A nil pointer
// field means "no limit"; normalization from zero/negative input happens
// in the ratelimit package, not here.
type SpeedLimits struct {
	DownloadBps *int64 `json:"downloadBps,omitempty"`
	UploadBps   *int64 `json:"uploadBps,omitempty"`
}
