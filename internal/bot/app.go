// Package bot wires the Telegram front-end: authentication flow,
// role-based menus, CRM proxy handlers, and the webhook server lifecycle.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/leadana/crmbot/core/config"
	"github.com/leadana/crmbot/core/logger"
	tg "github.com/leadana/crmbot/core/telegram"
	"github.com/leadana/crmbot/core/telegram/middleware"
	"github.com/leadana/crmbot/core/telegram/router"
	"github.com/leadana/crmbot/core/telegram/state"
	"github.com/leadana/crmbot/internal/crm"
	"github.com/leadana/crmbot/internal/notify"
	"github.com/leadana/crmbot/internal/roles"
	"github.com/leadana/crmbot/internal/topics"
	"github.com/leadana/crmbot/internal/webhook"

	tele "gopkg.in/telebot.v4"
)

// Abandoned conversations are evicted after this long.
const sessionTTL = 30 * time.Minute

// CRM is the backend surface the handlers depend on. *crm.Client
// implements it; tests substitute a fake.
type CRM interface {
	StartAuth(ctx context.Context, telegramID int64) (*crm.AuthStatus, error)
	SendSMS(ctx context.Context, telegramID int64, phone string) error
	VerifyCode(ctx context.Context, telegramID int64, phone, code string) (*crm.AuthStatus, error)
	Logout(ctx context.Context, telegramID int64) error
	CheckSession(ctx context.Context, telegramID int64) (*crm.SessionStatus, error)
	SellerProjects(ctx context.Context, userID int64) ([]crm.Project, error)
	Project(ctx context.Context, projectID int64) (*crm.Project, error)
	ProjectLeads(ctx context.Context, projectID int64, status string, userID int64) ([]crm.Lead, error)
	Lead(ctx context.Context, leadID, userID int64) (*crm.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID int64, status string, userID int64) error
	CreateReminder(ctx context.Context, r crm.Reminder) error
	ProjectReport(ctx context.Context, projectID, userID int64) (*crm.ProjectReport, error)
	DailyReport(ctx context.Context, userID int64, date string) (*crm.DailyReport, error)
}

// App holds the application services shared by all handlers.
type App struct {
	cfg      *coreconfig.Config
	crm      CRM
	gate     *roles.Gate
	sessions state.Manager

	web *webhook.Server
}

// New builds the application services from configuration.
func New(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	return &App{
		cfg:      cfg,
		crm:      crm.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second),
		gate:     roles.NewGate(cfg.Roles.Managers, cfg.Roles.Sellers),
		sessions: state.NewMemoryManager(sessionTTL),
	}, nil
}

// CoreConfig exposes the embedded core configuration for the runner.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

// stateStrings adapts the typed FSM manager to the string-based
// middleware interface.
type stateStrings struct{ m state.Manager }

func (s stateStrings) GetState(userID int64) string { return string(s.m.GetState(userID)) }

// TelegramRunOptions assembles registry, routes, middlewares, and the
// webhook server lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return tg.RunOptions{}, err
	}
	a.registerStates()

	fallbacks := a.fallbacks()
	reg.SetTextFallback(fallbacks.UnknownText())
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)

	// Shared contacts are only meaningful while authentication is pending.
	contactGate := middleware.State(stateStrings{a.sessions},
		string(state.StateIdle), string(StateAuthPhone))
	routes = append(routes, tg.Route{
		Endpoint: tele.OnContact,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(contactGate(a.handleContact))),
	})

	opts := tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}
	return opts, nil
}

// onStart spins up the webhook ingress once the bot exists, since both
// share the same outbound send capability.
func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot == nil {
		return fmt.Errorf("bot: runtime has no bot instance")
	}

	notifier := notify.New(rt.Bot, time.Duration(a.cfg.Notify.SendTimeoutSeconds)*time.Second)
	registry := topics.NewRegistry()
	discoverer := topics.NewDiscoverer(rt.Bot, registry, a.cfg.Topics.ProbeLimit)

	a.web = webhook.New(webhook.Options{
		Listen:     a.cfg.Server.Listen,
		Port:       a.cfg.Server.Port,
		Notifier:   notifier,
		Discoverer: discoverer,
		Registry:   registry,
	})

	go func() {
		if err := a.web.Start(); err != nil {
			logger.Error(ctx, "web", "serve.fail",
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

func (a *App) onStop(_ context.Context, _ tg.Runtime) error {
	if a.web == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.web.Shutdown(shutdownCtx)
}
