package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/store"
)

// ClearedInput is returned from every turn so the UI adapter empties its
// input box, success or failure.
const ClearedInput = ""

// Orchestrator drives one conversation turn end to end: assemble the
// prompt, invoke the gateway, splice the reply into history, persist
// best-effort. It holds no per-session state and is safe to share across
// sessions; within one session the caller must serialize turns.
type Orchestrator struct {
	preamble  string
	assembler conversation.Assembler
	gateway   *Gateway
	store     store.Store
	now       func() time.Time
}

// NewOrchestrator wires the turn driver. st may be nil for the no-store
// configuration.
func NewOrchestrator(preamble string, assembler conversation.Assembler, gateway *Gateway, st store.Store) *Orchestrator {
	if st == nil {
		st = store.Nop{}
	}
	return &Orchestrator{
		preamble:  preamble,
		assembler: assembler,
		gateway:   gateway,
		store:     st,
		now:       time.Now,
	}
}

// HandleTurn processes one user message against the session's history and
// returns the updated history plus the clear-input signal. It never returns
// an error: an inference failure completes the turn with the error text as
// the reply, and a persistence failure is logged and swallowed. The input
// history is not mutated.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, userMessage string, history conversation.History) (conversation.History, string) {
	pending := conversation.NewExchange(userMessage)

	// The pending exchange is excluded from the prompt; only committed
	// exchanges plus the new message go to the provider.
	messages := o.assembler.Assemble(o.preamble, history, userMessage)

	reply, err := o.gateway.Invoke(ctx, messages)
	completedOK := err == nil
	if err != nil {
		// The error description becomes the reply text so the UI stays
		// responsive. The turn is Failed but never left pending.
		reply = err.Error()
	}

	updated := append(history.Clone(), conversation.CompleteExchange(pending, reply))

	if completedOK {
		o.persist(ctx, userID, userMessage, reply)
	}

	log.Debug().
		Str("user_id", userID).
		Bool("ok", completedOK).
		Int("history_len", len(updated)).
		Msg("turn completed")
	return updated, ClearedInput
}

// persist appends the exchange best-effort. Failures reach the operator log
// only; they never block turn completion or the UI update.
func (o *Orchestrator) persist(ctx context.Context, userID, message, response string) {
	if err := o.store.Append(ctx, userID, message, response, o.now()); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to persist exchange")
	}
}
