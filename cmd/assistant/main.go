package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/pitabwire/frame"
	"github.com/pitabwire/frame/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"

	avconfig "github.com/agendavoz/agendavoz/config"
	"github.com/agendavoz/agendavoz/internal/alexa"
	assistanthandler "github.com/agendavoz/agendavoz/internal/assistant/handler"
	googlecal "github.com/agendavoz/agendavoz/internal/calendar/google"
	"github.com/agendavoz/agendavoz/internal/calendar/outlook"
	"github.com/agendavoz/agendavoz/internal/telegram"
	"github.com/agendavoz/agendavoz/pkg/calendar"
	"github.com/agendavoz/agendavoz/pkg/dialog"
	"github.com/agendavoz/agendavoz/pkg/events"
	"github.com/agendavoz/agendavoz/pkg/session"
	"github.com/agendavoz/agendavoz/pkg/token"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadWithOIDC[avconfig.AssistantConfig](ctx)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	eventRef := cfg.GetEventsQueueName()
	eventURL := cfg.GetEventsQueueURL()

	serviceOpts := []frame.Option{
		frame.WithConfig(&cfg),
		frame.WithName("agendavoz"),
		frame.WithRegisterPublisher(eventRef, eventURL),
	}
	if cfg.TurnAuditEnabled {
		serviceOpts = append(serviceOpts, frame.WithDatastore())
	}

	ctx, srv := frame.NewService(serviceOpts...)
	defer srv.Stop(ctx)

	pool, err := srv.WorkManager().GetPool()
	if err != nil {
		log.Fatalf("getting worker pool: %v", err)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Fatalf("loading timezone %q: %v", cfg.DefaultTimezone, err)
	}

	tokens := token.NewStore(cfg.TokensFile)
	gateway, err := buildGateway(&cfg, tokens, loc)
	if err != nil {
		log.Fatalf("building calendar gateway: %v", err)
	}

	loader := dialog.NewLoader(cfg.PromptCatalogPath)
	if err := loader.Load(); err != nil {
		log.Printf("warning: loading prompt catalog: %v", err)
	}
	_ = pool.Submit(ctx, func() {
		if err := loader.WatchAndReload(ctx.Done()); err != nil {
			log.Printf("warning: prompt catalog watcher: %v", err)
		}
	})

	machine := dialog.NewMachine(gateway,
		dialog.WithLocation(loc),
		dialog.WithPrompts(loader),
	)

	pub := events.NewPublisher(srv.QueueManager(), "assistant", eventRef)

	var turnRepo *session.Repository
	if cfg.TurnAuditEnabled {
		turnRepo = session.NewRepository(
			srv.DatastoreManager().GetPool(ctx, "__default__pool_name__"),
		)
	}

	sessions := session.NewStore(cfg.SessionTTL())
	turns := assistanthandler.NewTurnHandler(machine, sessions, turnRepo, pub, pool)
	turns.StartReaper(ctx)

	mux := http.NewServeMux()
	mux.Handle("/alexa", alexa.NewHandler(turns))

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, turns, sessions)
		if err != nil {
			log.Fatalf("starting telegram bot: %v", err)
		}
		_ = pool.Submit(ctx, func() { bot.Run(ctx) })
	}

	srv.Init(ctx, frame.WithHTTPHandler(mux))

	if err := srv.Run(ctx, ""); err != nil {
		log.Fatalf("service exited: %v", err)
	}
}

// buildGateway selects the calendar backend and its OAuth client.
func buildGateway(cfg *avconfig.AssistantConfig, tokens *token.Store, loc *time.Location) (calendar.Gateway, error) {
	switch cfg.CalendarProvider {
	case "google":
		src := token.NewSource(tokens, &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		})
		return googlecal.NewGateway(src, loc), nil

	default:
		src := token.NewSource(tokens, &oauth2.Config{
			ClientID:     cfg.MSClientID,
			ClientSecret: cfg.MSClientSecret,
			Endpoint:     microsoft.AzureADEndpoint("common"),
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"offline_access", "Calendars.ReadWrite"},
		})
		return outlook.NewGateway(src, loc, outlook.WithBaseURL(cfg.GraphBaseURL)), nil
	}
}
