package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/leadana/crmbot/core/logger"
	"github.com/leadana/crmbot/core/telegram/callbacks"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/core/telegram/keyboard"
	"github.com/leadana/crmbot/internal/crm"

	tele "gopkg.in/telebot.v4"
)

const (
	reminderMinTitle = 3
	reminderMinText  = 5
	reminderLayout   = "2006-01-02 15:04"
)

// cbStartReminder begins the reminder wizard for a project or lead.
// Payload: "<project|lead>|<id>".
func (a *App) cbStartReminder(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "reminder")
	userID := c.Sender().ID

	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return rejectMalformed(c, cbReminder)
	}
	kind := parts[0]
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || (kind != crm.ReminderTargetProject && kind != crm.ReminderTargetLead) {
		return rejectMalformed(c, cbReminder)
	}
	if !a.requireSession(c) {
		return nil
	}

	var targetName string
	switch kind {
	case crm.ReminderTargetProject:
		project, err := a.crm.Project(ctx, targetID)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
		}
		targetName = project.Name
	case crm.ReminderTargetLead:
		lead, err := a.crm.Lead(ctx, targetID, userID)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
		}
		targetName = lead.CustomerName
	}

	a.sessions.SetTemp(userID, tempReminderKind, kind)
	a.sessions.SetTemp(userID, tempTargetID, targetID)
	a.sessions.SetTemp(userID, tempTargetName, targetName)
	a.sessions.SetState(userID, StateReminderTitle)

	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("🔔 New reminder for %s\n\nEnter a title:", mdSafe(orDash(targetName))),
		keyboard.SingleCancelMarkup(cbReminderAbort))
}

func (a *App) handleReminderTitle(c tele.Context) error {
	tghelpers.WithHandler(c, "reminder_title")
	userID := c.Sender().ID

	title := strings.TrimSpace(c.Text())
	if len([]rune(title)) < reminderMinTitle {
		return c.Send(fmt.Sprintf("❌ The title must be at least %d characters. Try again:", reminderMinTitle))
	}

	a.sessions.SetTemp(userID, tempTitle, title)
	a.sessions.SetState(userID, StateReminderText)
	return c.Send("📝 Enter the reminder text:")
}

func (a *App) handleReminderText(c tele.Context) error {
	tghelpers.WithHandler(c, "reminder_text")
	userID := c.Sender().ID

	text := strings.TrimSpace(c.Text())
	if len([]rune(text)) < reminderMinText {
		return c.Send(fmt.Sprintf("❌ The text must be at least %d characters. Try again:", reminderMinText))
	}

	a.sessions.SetTemp(userID, tempText, text)
	a.sessions.SetState(userID, StateReminderTime)
	return c.Send("⏰ When should it fire?\n\nFormat: YYYY-MM-DD HH:MM\nExample: 2026-01-15 14:30")
}

// handleReminderTime parses the due time and issues the single creation
// call. State is cleared whether the backend accepts or not; the user can
// restart the wizard from the target.
func (a *App) handleReminderTime(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "reminder_time")
	userID := c.Sender().ID

	due, err := time.ParseInLocation(reminderLayout, strings.TrimSpace(c.Text()), time.Local)
	if err != nil {
		return c.Send("❌ Invalid time format.\n\nUse: YYYY-MM-DD HH:MM\nExample: 2026-01-15 14:30")
	}

	title, _ := a.sessions.GetTempString(userID, tempTitle)
	text, _ := a.sessions.GetTempString(userID, tempText)
	kind, _ := a.sessions.GetTempString(userID, tempReminderKind)
	targetID, ok := a.sessions.GetTempInt64(userID, tempTargetID)
	if !ok || title == "" || text == "" || kind == "" {
		a.sessions.Clear(userID)
		return c.Send(msgGenericFailure + " Start the reminder again.")
	}

	reminder := crm.Reminder{
		UserID:       userID,
		Title:        title,
		Text:         text,
		DueAt:        due.Unix(),
		ReminderType: kind,
		TargetID:     targetID,
	}
	createErr := a.crm.CreateReminder(ctx, reminder)
	a.sessions.Clear(userID)

	if createErr != nil {
		logger.Warn(ctx, "tg", "reminders.create_fail",
			slog.Int64("user_id", userID),
			slog.String("err", createErr.Error()),
		)
		return c.Send(msgGenericFailure)
	}
	return c.Send(fmt.Sprintf(
		"✅ Reminder created!\n\nTitle: %s\nText: %s\nDue: %s",
		title, text, due.Format(reminderLayout),
	))
}

// cbCancelReminder aborts the wizard from the inline cancel button.
func (a *App) cbCancelReminder(c tele.Context) error {
	tghelpers.WithHandler(c, "reminder_cancel")
	a.sessions.Clear(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, "❌ Reminder creation cancelled.")
}
