package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadana/crmbot/core/logger"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/core/telegram/keyboard"
	"github.com/leadana/crmbot/internal/crm"
	"github.com/leadana/crmbot/internal/roles"

	tele "gopkg.in/telebot.v4"
)

// errAnswered marks flows where the user was already messaged.
var errAnswered = errors.New("bot: already answered")

// cmdReport renders the role-appropriate daily report.
func (a *App) cmdReport(c tele.Context) error {
	text, err := a.dailyReportText(c)
	switch {
	case errors.Is(err, errAnswered):
		return nil
	case err != nil:
		return c.Send(msgGenericFailure)
	case text == "":
		return c.Send(msgUnauthorized)
	}
	return c.Send(text)
}

// cbDailyReport is the menu entry point for the same report.
func (a *App) cbDailyReport(c tele.Context) error {
	text, err := a.dailyReportText(c)
	switch {
	case errors.Is(err, errAnswered):
		return nil
	case err != nil:
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	case text == "":
		return c.Respond(&tele.CallbackResponse{Text: msgUnauthorized, ShowAlert: true})
	}
	return tghelpers.EditOrSendMD(c, text,
		keyboard.InlineButtons([]keyboard.InlineBtn{homeRow()}))
}

func (a *App) dailyReportText(c tele.Context) (string, error) {
	ctx := tghelpers.WithHandler(c, "report")
	userID := c.Sender().ID

	role := a.gate.Resolve(userID)
	if role == roles.None {
		return "", nil
	}
	if !a.requireSession(c) {
		return "", errAnswered
	}

	date := time.Now().Format("2006-01-02")
	report, err := a.crm.DailyReport(ctx, userID, date)
	if err != nil {
		logger.Warn(ctx, "tg", "reports.daily_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return "", err
	}

	if role == roles.Manager {
		return fmt.Sprintf(
			"📊 Management report — %s\n\n"+
				"• Sellers: %d\n"+
				"• Total leads: %d\n"+
				"• Total sales: %d",
			date, report.Sellers, report.TotalLeads, report.SalesTotal,
		), nil
	}
	return fmt.Sprintf(
		"📊 Your daily report — %s\n\n"+
			"• New leads: %d\n"+
			"• Calls made: %d\n"+
			"• Sales today: %d",
		date, report.NewLeads, report.CallsMade, report.SalesTotal,
	), nil
}
