// Package handler coordinates one assistant turn: it serializes the session,
// runs the dialog machine, persists the resulting attributes and emits the
// observability events. Front-ends (Alexa webhook, Telegram bot) call it with
// a recognized intent and render the response for their channel.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pitabwire/frame/workerpool"
	"github.com/pitabwire/util"

	"github.com/agendavoz/agendavoz/pkg/dialog"
	"github.com/agendavoz/agendavoz/pkg/events"
	"github.com/agendavoz/agendavoz/pkg/session"
)

const reaperInterval = 1 * time.Minute

// Turn is one user utterance entering the assistant.
type Turn struct {
	SessionID string
	UserID    string
	Channel   string // "alexa" or "telegram"
	Utterance string // raw text when the channel has it
	Intent    dialog.Intent
}

// TurnHandler runs turns against the dialog machine. The repository and
// publisher are optional; audit and events are best-effort and never fail a
// turn.
type TurnHandler struct {
	machine  *dialog.Machine
	sessions *session.Store
	turns    *session.Repository
	pub      *events.Publisher
	pool     workerpool.WorkerPool
}

// NewTurnHandler creates a turn handler.
func NewTurnHandler(machine *dialog.Machine, sessions *session.Store, turns *session.Repository, pub *events.Publisher, pool workerpool.WorkerPool) *TurnHandler {
	return &TurnHandler{
		machine:  machine,
		sessions: sessions,
		turns:    turns,
		pub:      pub,
		pool:     pool,
	}
}

// HandleTurn runs one turn. Turns for the same session are serialized;
// different sessions proceed concurrently.
func (h *TurnHandler) HandleTurn(ctx context.Context, t Turn) dialog.Response {
	unlock := h.sessions.Lock(t.SessionID)

	before := h.sessions.Get(t.SessionID)
	after, resp := h.machine.Transition(ctx, t.UserID, before, t.Intent)

	if resp.EndSession {
		h.sessions.Delete(t.SessionID)
	} else {
		h.sessions.Set(t.SessionID, after)
	}
	unlock()

	h.audit(ctx, t, before, after, resp)
	h.emit(ctx, t, before, after, resp)

	return resp
}

// EndSession drops the session when the channel reports the conversation
// over without a final turn, e.g. an Alexa SessionEndedRequest.
func (h *TurnHandler) EndSession(ctx context.Context, sessionID, reason string) {
	h.sessions.Delete(sessionID)
	if h.pub == nil {
		return
	}
	if err := h.pub.Emit(ctx, events.SessionEnded, sessionID, &events.SessionEndedData{Reason: reason}); err != nil {
		util.Log(ctx).WithError(err).Warn("emit session ended failed")
	}
}

// StartReaper begins the background session TTL reaper.
func (h *TurnHandler) StartReaper(ctx context.Context) {
	reap := func() {
		ticker := time.NewTicker(reaperInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.sessions.Reap()
			}
		}
	}
	if h.pool != nil {
		_ = h.pool.Submit(ctx, reap)
	} else {
		go reap()
	}
}

func (h *TurnHandler) audit(ctx context.Context, t Turn, before, after dialog.Attributes, resp dialog.Response) {
	if h.turns == nil {
		return
	}
	rec := &session.TurnRecord{
		SessionID:  t.SessionID,
		UserID:     t.UserID,
		IntentName: t.Intent.Name,
		FromState:  string(before.State),
		ToState:    string(after.State),
		Utterance:  t.Utterance,
		LinkedCard: resp.LinkAccount,
	}
	if err := h.turns.Record(ctx, rec); err != nil {
		util.Log(ctx).WithError(err).Warn("record turn failed")
	}
}

func (h *TurnHandler) emit(ctx context.Context, t Turn, before, after dialog.Attributes, resp dialog.Response) {
	if h.pub == nil {
		return
	}

	if t.Intent.Is(dialog.IntentLaunch) {
		h.emitOne(ctx, events.SessionStarted, t.SessionID, &events.SessionStartedData{
			UserID:  t.UserID,
			Channel: t.Channel,
		})
	}

	h.emitOne(ctx, events.TurnCompleted, t.SessionID, &events.TurnCompletedData{
		IntentName:  t.Intent.Name,
		FromState:   string(before.State),
		ToState:     string(after.State),
		LinkAccount: resp.LinkAccount,
		EndSession:  resp.EndSession,
	})

	if before.State != after.State {
		h.emitOne(ctx, events.StateTransition, t.SessionID, &events.StateTransitionData{
			FromState:    string(before.State),
			ToState:      string(after.State),
			TriggerEvent: t.Intent.Name,
		})
	}

	if resp.LinkAccount {
		h.emitOne(ctx, events.LinkRequired, t.SessionID, &events.SessionStartedData{
			UserID:  t.UserID,
			Channel: t.Channel,
		})
	}

	if resp.EndSession {
		h.emitOne(ctx, events.SessionEnded, t.SessionID, &events.SessionEndedData{Reason: "user_request"})
	}
}

func (h *TurnHandler) emitOne(ctx context.Context, et events.EventType, sessionID string, data any) {
	if err := h.pub.Emit(ctx, et, sessionID, data); err != nil {
		slog.Warn("emit event failed",
			slog.String("event_type", string(et)), slog.String("error", err.Error()))
	}
}
