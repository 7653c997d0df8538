package middleware

import (
	"log/slog"
	"strings"

	"github.com/leadana/crmbot/core/logger"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// StateGetter is the minimal interface required from an FSM manager.
type StateGetter interface {
	GetState(userID int64) string
}

// State returns a middleware that runs the handler only while the user
// is in one of the expected FSM states. Messages arriving in any other
// state are silently ignored.
func State(mgr StateGetter, expected ...string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			currentState := mgr.GetState(userID)
			ctx := tghelpers.BuildContext(c)
			for _, want := range expected {
				if currentState == want {
					logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.match",
						slog.Int64("user_id", userID),
						slog.String("state", currentState),
						slog.String("expected", want),
						slog.String("rid", logger.RIDFrom(ctx)),
					)
					return next(c)
				}
			}
			logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.skip",
				slog.Int64("user_id", userID),
				slog.String("state", currentState),
				slog.String("expected", strings.Join(expected, ",")),
				slog.String("rid", logger.RIDFrom(ctx)),
			)
			// Ignore message if user is in a different state
			return nil
		}
	}
}
