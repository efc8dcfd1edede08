// Package dispatch fans one normalized event out to the downstream handlers.
// Each handler gates itself on event-field presence and runs with its failures
// isolated: one broken handler never prevents the others from running, and
// never aborts the request.
package dispatch

import (
	"context"
	"fmt"

	"workflow-event-router/internal/normalize"

	"github.com/rs/zerolog/log"
)

// Handler is one independent downstream effect of an inbound event.
type Handler interface {
	Name() string
	// Applies reports whether the event carries the fields this handler needs.
	Applies(ev normalize.Event) bool
	Handle(ctx context.Context, ev normalize.Event) (any, error)
}

// Result is one handler's outcome, reported to the webhook sender in the
// response envelope.
type Result struct {
	Handler string `json:"handler"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Dispatcher struct {
	handlers []Handler
}

func New(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Dispatch runs every applicable handler sequentially in registration order
// and collects one Result per handler that ran. Errors and panics are caught
// per handler and recorded, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, ev normalize.Event) []Result {
	results := make([]Result, 0, len(d.handlers))
	for _, h := range d.handlers {
		if !h.Applies(ev) {
			continue
		}
		results = append(results, d.run(ctx, h, ev))
	}
	return results
}

func (d *Dispatcher) run(ctx context.Context, h Handler, ev normalize.Event) (res Result) {
	res = Result{Handler: h.Name()}
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Result = nil
			res.Error = fmt.Sprintf("panic: %v", r)
			log.Error().Str("handler", h.Name()).Str("event_type", ev.EventType).
				Interface("panic", r).Msg("handler panicked")
		}
	}()

	out, err := h.Handle(ctx, ev)
	if err != nil {
		log.Error().Err(err).Str("handler", h.Name()).Str("event_type", ev.EventType).
			Str("source", ev.SourcePlatform).Msg("handler failed")
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Result = out
	return res
}
