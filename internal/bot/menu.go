package bot

import (
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/core/telegram/keyboard"
	"github.com/leadana/crmbot/internal/roles"

	tele "gopkg.in/telebot.v4"
)

// Callback unique keys.
const (
	cbNavHome       = "nav_home"
	cbNavBack       = "nav_back"
	cbMyProjects    = "my_projects"
	cbReports       = "reports"
	cbProject       = "project"
	cbLeads         = "leads"
	cbLead          = "lead"
	cbLeadStatus    = "lead_status"
	cbReminder      = "reminder"
	cbReminderAbort = "reminder_cancel"
	cbProjectReport = "project_report"
)

const msgUnauthorized = "⛔ You are not authorized to use this bot. Contact your manager."

// renderMenu is a pure function of the user's role: identical input
// always produces the identical menu, which keeps nav_home reproducible.
func (a *App) renderMenu(userID int64, header string) (string, *tele.ReplyMarkup) {
	switch a.gate.Resolve(userID) {
	case roles.Manager:
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{
				{Text: "📊 Reports", Unique: cbReports},
			},
		)
		return header + "\n\n🏠 Main menu (manager)", markup
	case roles.Seller:
		markup := keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{
				{Text: "🏢 My projects", Unique: cbMyProjects},
				{Text: "📊 My report", Unique: cbReports},
			},
		)
		return header + "\n\n🏠 Main menu (seller)", markup
	default:
		return msgUnauthorized, nil
	}
}

// navHome edits the current message back to the role menu. Back and Home
// are deliberately the same action.
func (a *App) navHome(c tele.Context) error {
	tghelpers.WithHandler(c, "nav_home")
	userID := c.Sender().ID

	a.sessions.ClearState(userID)

	text, markup := a.renderMenu(userID, "🏠")
	if markup == nil {
		return tghelpers.EditOrSendMD(c, text)
	}
	return tghelpers.EditOrSendMD(c, text, markup)
}

// homeRow appends the standard navigation row.
func homeRow() keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: "🏠 Back to main menu", Unique: cbNavHome}
}
