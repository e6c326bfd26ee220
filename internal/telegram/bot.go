package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pitabwire/util"

	"github.com/agendavoz/agendavoz/internal/assistant/handler"
	"github.com/agendavoz/agendavoz/pkg/session"
)

const (
	channelName    = "telegram"
	pollTimeoutSec = 30
)

// Bot runs the assistant over Telegram long polling. Each chat maps to one
// dialog session; the chat id doubles as the calendar user id.
type Bot struct {
	api      *tgbotapi.BotAPI
	turns    *handler.TurnHandler
	sessions *session.Store
}

// NewBot connects to the Telegram API with the given bot token.
func NewBot(botToken string, turns *handler.TurnHandler, sessions *session.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return &Bot{api: api, turns: turns, sessions: sessions}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	slog.Info("telegram bot polling", slog.String("bot", b.api.Self.UserName))

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSec
	updates := b.api.GetUpdatesChan(cfg)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}
	slog.Info("telegram bot stopped")
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	sessionID := fmt.Sprintf("tg:%d", msg.Chat.ID)
	userID := sessionID

	state := b.sessions.Get(sessionID).State
	intent := Recognize(state, msg.Text)

	resp := b.turns.HandleTurn(ctx, handler.Turn{
		SessionID: sessionID,
		UserID:    userID,
		Channel:   channelName,
		Utterance: msg.Text,
		Intent:    intent,
	})

	reply := tgbotapi.NewMessage(msg.Chat.ID, resp.Speak)
	if _, err := b.api.Send(reply); err != nil {
		util.Log(ctx).WithError(err).Error("send reply failed")
	}
}
