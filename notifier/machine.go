package notifier

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
)

const (
	StateIdle     = "idle"
	StateChecking = "checking"
	StateEmitting = "emitting"

	eventCheck  = "check"
	eventEmit   = "emit"
	eventSettle = "settle"
)

// newMachine creates the tick state machine:
// - idle -> checking (check)
// - checking -> emitting (emit)
// - checking, emitting -> idle (settle)
func newMachine(logger zerolog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventCheck, Src: []string{StateIdle}, Dst: StateChecking},
			{Name: eventEmit, Src: []string{StateChecking}, Dst: StateEmitting},
			{Name: eventSettle, Src: []string{StateChecking, StateEmitting}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Trace().Str("from", e.Src).Str("to", e.Dst).Msg("notifier state")
			},
		},
	)
}
