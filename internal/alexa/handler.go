package alexa

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pitabwire/util"

	"github.com/agendavoz/agendavoz/internal/assistant/handler"
	"github.com/agendavoz/agendavoz/pkg/dialog"
)

const channelName = "alexa"

// Handler serves the skill webhook endpoint.
type Handler struct {
	turns *handler.TurnHandler
}

// NewHandler creates the webhook handler over the turn handler.
func NewHandler(turns *handler.TurnHandler) *Handler {
	return &Handler{turns: turns}
}

// ServeHTTP handles one skill request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		util.Log(ctx).WithError(err).Warn("bad skill request body")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	sessionID := env.Session.SessionID
	userID := env.Session.User.UserID

	var out ResponseEnvelope
	switch env.Request.Type {
	case requestTypeSessionEnded:
		h.turns.EndSession(ctx, sessionID, env.Request.Reason)
		out = ResponseEnvelope{Version: "1.0"}

	case requestTypeLaunch:
		resp := h.turns.HandleTurn(ctx, handler.Turn{
			SessionID: sessionID,
			UserID:    userID,
			Channel:   channelName,
			Intent:    dialog.Intent{Name: dialog.IntentLaunch},
		})
		out = render(resp)

	case requestTypeIntent:
		resp := h.turns.HandleTurn(ctx, handler.Turn{
			SessionID: sessionID,
			UserID:    userID,
			Channel:   channelName,
			Intent:    toIntent(env.Request.Intent),
		})
		out = render(resp)

	default:
		slog.Warn("unknown skill request type", slog.String("request_type", env.Request.Type))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		util.Log(ctx).WithError(err).Error("write skill response failed")
	}
}

// toIntent flattens the skill intent's slots into the dialog intent.
func toIntent(ri RequestIntent) dialog.Intent {
	in := dialog.Intent{Name: ri.Name}
	if len(ri.Slots) > 0 {
		in.Slots = make(map[string]string, len(ri.Slots))
		for name, slot := range ri.Slots {
			if slot.Value != "" {
				in.Slots[name] = slot.Value
			}
		}
	}
	return in
}

// render maps the dialog response onto the skill response envelope.
func render(resp dialog.Response) ResponseEnvelope {
	out := ResponseEnvelope{
		Version: "1.0",
		Response: Response{
			OutputSpeech:     &OutputSpeech{Type: speechTypePlainText, Text: resp.Speak},
			ShouldEndSession: resp.EndSession,
		},
	}
	if resp.Reprompt != "" {
		out.Response.Reprompt = &Reprompt{
			OutputSpeech: OutputSpeech{Type: speechTypePlainText, Text: resp.Reprompt},
		}
	}
	if resp.LinkAccount {
		out.Response.Card = &Card{Type: cardTypeLinkAccount}
	}
	return out
}
