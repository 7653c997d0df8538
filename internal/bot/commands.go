package bot

import (
	"fmt"
	"runtime"
	"time"

	"github.com/leadana/crmbot/core/buildinfo"
	tg "github.com/leadana/crmbot/core/telegram"
	"github.com/leadana/crmbot/core/telegram/commands"
	"github.com/leadana/crmbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

var startedAt = time.Now()

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.cmdStart,
		Description: "Sign in and open the menu",
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:     a.cmdProfile,
		Description: "Show your CRM profile",
	})
	reg.RegisterCommand("/report", commands.Command{
		Handler:     a.cmdReport,
		Description: "Today's report",
	})
	reg.RegisterCommand("/logout", commands.Command{
		Handler:     a.cmdLogout,
		Description: "Sign out",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.cmdStatus,
		Description: "Runtime status",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *tg.Registry) error {
	entries := map[string]tele.HandlerFunc{
		cbNavHome:       a.navHome,
		cbNavBack:       a.navHome,
		cbMyProjects:    a.cbSellerProjects,
		cbReports:       a.cbDailyReport,
		cbProject:       a.cbProjectDetail,
		cbLeads:         a.cbLeadsByStatus,
		cbLead:          a.cbLeadDetail,
		cbLeadStatus:    a.cbUpdateLeadStatus,
		cbReminder:      a.cbStartReminder,
		cbReminderAbort: a.cbCancelReminder,
		cbProjectReport: a.cbProjectReportView,
	}
	for key, handler := range entries {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) registerStates() {
	state.RegisterHandler(StateAuthPhone, a.handlePhoneInput)
	state.RegisterHandler(StateAuthCode, a.handleCodeInput)
	state.RegisterHandler(StateReminderTitle, a.handleReminderTitle)
	state.RegisterHandler(StateReminderText, a.handleReminderText)
	state.RegisterHandler(StateReminderTime, a.handleReminderTime)
}

// cmdStatus is the admin-only runtime snapshot.
func (a *App) cmdStatus(c tele.Context) error {
	return c.Send(fmt.Sprintf(
		"⚙️ Status\n\n"+
			"Uptime: %s\n"+
			"Go: %s\n"+
			"Commit: %s\n"+
			"Built: %s\n"+
			"Managers: %d, sellers: %d",
		time.Since(startedAt).Round(time.Second),
		runtime.Version(),
		buildinfo.Commit,
		buildinfo.Date,
		len(a.cfg.Roles.Managers),
		len(a.cfg.Roles.Sellers),
	))
}
