package transfer

import "sync/atomic"

// CancelHandle is a cooperative, tripped-once signal checked at chunk
// boundaries by a Worker. Resume and Restart must install a fresh handle
// on every spawn so a late-arriving trip from a prior attempt cannot
// affect the next one (SPEC_FULL.md §9, "Cancellation handle reuse").
type CancelHandle struct {
	tripped atomic.Bool
}

// NewCancelHandle returns an untripped handle.
func NewCancelHandle() *CancelHandle {
	return &CancelHandle{}
}

// Trip marks the handle as tripped. Idempotent.
func (h *CancelHandle) Trip() {
	h.tripped.Store(true)
}

// Tripped reports whether Trip has been called.
func (h *CancelHandle) Tripped() bool {
	return h.tripped.Load()
}

// Runtime is the Registry's private wrapper around a Record: the record
// plus the cancellation handle for whichever Worker attempt is current.
// Only the registry package constructs and mutates these; everyone else
// sees cloned Records.
type Runtime struct {
	Record *Record
	Cancel *CancelHandle
}
