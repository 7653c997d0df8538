package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leadana/crmbot/core/logger"
	"github.com/leadana/crmbot/core/telegram/callbacks"
	"github.com/leadana/crmbot/core/telegram/format"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/core/telegram/keyboard"
	"github.com/leadana/crmbot/internal/crm"

	tele "gopkg.in/telebot.v4"
)

const maxLeadButtons = 10

var leadStatusLabels = map[string]string{
	crm.LeadStatusNew:         "New",
	crm.LeadStatusContacted:   "Contacted",
	crm.LeadStatusQualified:   "Qualified",
	crm.LeadStatusProposal:    "Proposal sent",
	crm.LeadStatusNegotiation: "In negotiation",
}

// mdSafe escapes backend-supplied strings before they are interpolated
// into Markdown message bodies.
func mdSafe(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return escaped
}

// rejectMalformed answers a callback whose payload failed typed decode.
// Malformed payloads are rejected explicitly, never index-split blindly.
func rejectMalformed(c tele.Context, key string) error {
	ctx := tghelpers.BuildContext(c)
	logger.Warn(ctx, "tg", "callback.malformed",
		slog.String("cb_key", key),
		slog.String("payload", logger.SanitizeLimit(callbacks.CallbackPayload(c), 64)),
	)
	return c.Respond(&tele.CallbackResponse{Text: "Malformed action", ShowAlert: true})
}

// cbSellerProjects lists the seller's projects.
func (a *App) cbSellerProjects(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "my_projects")
	userID := c.Sender().ID

	if !a.gate.IsSeller(userID) {
		return c.Respond(&tele.CallbackResponse{Text: msgUnauthorized, ShowAlert: true})
	}
	if !a.requireSession(c) {
		return nil
	}

	projects, err := a.crm.SellerProjects(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "projects.list_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return tghelpers.EditOrSendMD(c, msgGenericFailure)
	}
	if len(projects) == 0 {
		return tghelpers.EditOrSendMD(c, "❌ No projects assigned to you yet. Contact your manager.",
			keyboard.InlineButtons([]keyboard.InlineBtn{homeRow()}))
	}

	buttons := make([]keyboard.InlineBtn, 0, len(projects)+1)
	for _, p := range projects {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("📁 %s (%d leads)", p.Name, p.TotalLeads),
			Unique: cbProject,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	buttons = append(buttons, homeRow())
	return tghelpers.EditOrSendMD(c, "🏢 Your projects:\n\nPick one:", keyboard.InlineButtons(buttons))
}

// cbProjectDetail renders one project with its lead-status submenu.
func (a *App) cbProjectDetail(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "project")

	projectID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return rejectMalformed(c, cbProject)
	}
	if !a.requireSession(c) {
		return nil
	}

	project, err := a.crm.Project(ctx, projectID)
	if err != nil {
		logger.Warn(ctx, "tg", "projects.get_fail",
			slog.Int64("project_id", projectID),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	pid := strconv.FormatInt(projectID, 10)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "👥 New leads", Unique: cbLeads, Data: crm.LeadStatusNew + "|" + pid},
			{Text: "📞 Contacted", Unique: cbLeads, Data: crm.LeadStatusContacted + "|" + pid},
		},
		[]keyboard.InlineBtn{
			{Text: "✅ Qualified", Unique: cbLeads, Data: crm.LeadStatusQualified + "|" + pid},
			{Text: "📋 Proposals", Unique: cbLeads, Data: crm.LeadStatusProposal + "|" + pid},
		},
		[]keyboard.InlineBtn{
			{Text: "🤝 Negotiations", Unique: cbLeads, Data: crm.LeadStatusNegotiation + "|" + pid},
			{Text: "🔔 New reminder", Unique: cbReminder, Data: crm.ReminderTargetProject + "|" + pid},
		},
		[]keyboard.InlineBtn{
			{Text: "📊 Project report", Unique: cbProjectReport, Data: pid},
		},
		[]keyboard.InlineBtn{homeRow()},
	)

	text := fmt.Sprintf(
		"📁 Project: %s\n\n"+
			"📊 Totals:\n"+
			"• Leads: %d\n"+
			"• New: %d\n"+
			"• Contacted: %d\n"+
			"• Qualified: %d\n\n"+
			"Pick an option:",
		mdSafe(project.Name), project.TotalLeads, project.NewLeads,
		project.ContactedLeads, project.QualifiedLeads,
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}

// cbLeadsByStatus lists a project's leads in one pipeline status.
func (a *App) cbLeadsByStatus(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "leads")
	userID := c.Sender().ID

	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return rejectMalformed(c, cbLeads)
	}
	status := parts[0]
	projectID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || !crm.KnownLeadStatus(status) {
		return rejectMalformed(c, cbLeads)
	}
	if !a.requireSession(c) {
		return nil
	}

	leads, err := a.crm.ProjectLeads(ctx, projectID, status, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "leads.list_fail",
			slog.Int64("project_id", projectID),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	label := leadStatusLabels[status]
	if len(leads) == 0 {
		return c.Respond(&tele.CallbackResponse{
			Text:      fmt.Sprintf("No leads in status %q", label),
			ShowAlert: true,
		})
	}

	shown := leads
	if len(shown) > maxLeadButtons {
		shown = shown[:maxLeadButtons]
	}
	buttons := make([]keyboard.InlineBtn, 0, len(shown)+1)
	for _, lead := range shown {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("👤 %s — %d", orDash(lead.CustomerName), lead.Value),
			Unique: cbLead,
			Data:   strconv.FormatInt(lead.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{
		Text:   "🔙 Back to project",
		Unique: cbProject,
		Data:   strconv.FormatInt(projectID, 10),
	})

	text := fmt.Sprintf("👥 %s leads (%d total):\n\nPick one:", label, len(leads))
	return tghelpers.EditOrSendMD(c, text, keyboard.InlineButtons(buttons))
}

// cbLeadDetail renders one lead with status-change actions.
func (a *App) cbLeadDetail(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "lead")
	userID := c.Sender().ID

	leadID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return rejectMalformed(c, cbLead)
	}
	if !a.requireSession(c) {
		return nil
	}

	lead, err := a.crm.Lead(ctx, leadID, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "leads.get_fail",
			slog.Int64("lead_id", leadID),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	return a.renderLead(c, lead)
}

func (a *App) renderLead(c tele.Context, lead *crm.Lead) error {
	lid := strconv.FormatInt(lead.ID, 10)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "📞 Contacted", Unique: cbLeadStatus, Data: lid + "|" + crm.LeadStatusContacted},
			{Text: "✅ Qualified", Unique: cbLeadStatus, Data: lid + "|" + crm.LeadStatusQualified},
		},
		[]keyboard.InlineBtn{
			{Text: "📋 Proposal sent", Unique: cbLeadStatus, Data: lid + "|" + crm.LeadStatusProposal},
			{Text: "🤝 Negotiating", Unique: cbLeadStatus, Data: lid + "|" + crm.LeadStatusNegotiation},
		},
		[]keyboard.InlineBtn{
			{Text: "🔔 New reminder", Unique: cbReminder, Data: crm.ReminderTargetLead + "|" + lid},
		},
		[]keyboard.InlineBtn{homeRow()},
	)

	var b strings.Builder
	b.WriteString("👤 Lead\n\n")
	fmt.Fprintf(&b, "Name: %s\n", mdSafe(orDash(lead.CustomerName)))
	fmt.Fprintf(&b, "Company: %s\n", mdSafe(orDash(lead.Company)))
	fmt.Fprintf(&b, "Phone: %s\n", orDash(lead.Phone))
	fmt.Fprintf(&b, "Email: %s\n", mdSafe(orDash(lead.Email)))
	fmt.Fprintf(&b, "Value: %d\n", lead.Value)
	fmt.Fprintf(&b, "Stage: %s\n", orDash(lead.Stage))
	fmt.Fprintf(&b, "Priority: %s\n", orDash(lead.Priority))
	fmt.Fprintf(&b, "Created: %s\n", orDash(lead.CreatedAt))
	if lead.Description != "" {
		fmt.Fprintf(&b, "\n📝 %s\n", mdSafe(lead.Description))
	}
	return tghelpers.EditOrSendMD(c, b.String(), markup)
}

// cbUpdateLeadStatus moves a lead to a new pipeline status and re-renders it.
func (a *App) cbUpdateLeadStatus(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "lead_status")
	userID := c.Sender().ID

	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return rejectMalformed(c, cbLeadStatus)
	}
	leadID, err := strconv.ParseInt(parts[0], 10, 64)
	status := parts[1]
	if err != nil || !crm.KnownLeadStatus(status) || status == crm.LeadStatusNew {
		return rejectMalformed(c, cbLeadStatus)
	}
	if !a.requireSession(c) {
		return nil
	}

	if err := a.crm.UpdateLeadStatus(ctx, leadID, status, userID); err != nil {
		logger.Warn(ctx, "tg", "leads.update_fail",
			slog.Int64("lead_id", leadID),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	_ = c.Respond(&tele.CallbackResponse{
		Text:      fmt.Sprintf("✅ Lead moved to %q", leadStatusLabels[status]),
		ShowAlert: true,
	})

	lead, err := a.crm.Lead(ctx, leadID, userID)
	if err != nil {
		return nil
	}
	return a.renderLead(c, lead)
}

// cbProjectReportView renders the aggregated project report.
func (a *App) cbProjectReportView(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "project_report")
	userID := c.Sender().ID

	projectID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return rejectMalformed(c, cbProjectReport)
	}
	if !a.requireSession(c) {
		return nil
	}

	report, err := a.crm.ProjectReport(ctx, projectID, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "reports.project_fail",
			slog.Int64("project_id", projectID),
			slog.String("err", err.Error()),
		)
		return c.Respond(&tele.CallbackResponse{Text: msgGenericFailure, ShowAlert: true})
	}

	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🔙 Back to project", Unique: cbProject, Data: strconv.FormatInt(projectID, 10)},
		homeRow(),
	})
	text := fmt.Sprintf(
		"📊 Project report: %s\nPeriod: %s\n\n"+
			"• Leads: %d\n"+
			"• New: %d\n"+
			"• Contacted: %d\n"+
			"• Qualified: %d\n"+
			"• Proposals: %d\n"+
			"• Negotiations: %d\n\n"+
			"💰 Total value: %d\n"+
			"📈 Conversion: %.1f%%",
		mdSafe(orDash(report.ProjectName)), orDash(report.Period),
		report.TotalLeads, report.NewLeads, report.ContactedLeads,
		report.QualifiedLeads, report.ProposalLeads, report.NegotiationLeads,
		report.TotalValue, report.ConversionRate,
	)
	return tghelpers.EditOrSendMD(c, text, markup)
}
