// Package events is the fire-and-forget notification path from a Worker
// to an external observer, grounded on the ProgressMsg/DownloadCompleteMsg
// family in the teacher repository's internal/engine/events package —
// trimmed to the single event this core's contract names.
package events

// Completed is the payload of a download:completed event: just the id,
// per SPEC_FULL.md §6.
type Completed struct {
	ID string `json:"id"`
}

// Sink receives terminal-state notifications. Implementations must not
// block the Worker that calls them for long, and must never panic;
// Emitter already treats delivery as best-effort, but a Sink that hangs
// defeats that guarantee.
type Sink interface {
	Completed(Completed)
}

// Emitter fans a single event out to zero or more Sinks. Delivery
// failure (a Sink that errors internally) never rolls back the
// transfer's Completed status — the Worker has already finished by the
// time Emit is called.
type Emitter struct {
	sinks []Sink
}

// New returns an Emitter with no sinks attached.
func New() *Emitter {
	return &Emitter{}
}

// Attach registers a Sink. Not safe to call concurrently with Emit;
// attach all sinks during startup before any Worker runs.
func (e *Emitter) Attach(s Sink) {
	e.sinks = append(e.sinks, s)
}

// EmitCompleted notifies every attached sink. Each sink call is
// independently recovered so one bad sink can't prevent the others, or
// the caller, from proceeding.
func (e *Emitter) EmitCompleted(id string) {
	evt := Completed{ID: id}
	for _, s := range e.sinks {
		func(s Sink) {
			defer func() { _ = recover() }()
			s.Completed(evt)
		}(s)
	}
}
