package bot

import (
	"strings"

	"github.com/leadana/crmbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

type fallbackProvider struct {
	app *App
}

func (a *App) fallbacks() ui.FallbackProvider {
	return &fallbackProvider{app: a}
}

// UnknownText also dispatches the auth reply-keyboard button labels,
// which arrive as plain text messages.
func (f *fallbackProvider) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		switch strings.TrimSpace(c.Text()) {
		case btnEnterPhone:
			return f.app.promptPhone(c)
		case btnSharePhone:
			return c.Send("📱 Tap the share-contact button so your number is filled in automatically.")
		}
		return c.Send("🤷 I don't understand that. Run /start for the menu.")
	}
}

func (f *fallbackProvider) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send("🤷 I wasn't expecting a file here. Run /start for the menu.")
	}
}

func (f *fallbackProvider) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
}
