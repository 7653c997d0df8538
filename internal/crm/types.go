package crm

// UserInfo is the backend's view of an authenticated user.
type UserInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthStatus is the response of the auth/start pre-check.
type AuthStatus struct {
	IsLoggedIn bool     `json:"is_logged_in"`
	Message    string   `json:"message"`
	UserInfo   UserInfo `json:"user_info"`
}

// SessionStatus is the response of auth/check-session.
type SessionStatus struct {
	IsAuthenticated bool `json:"is_authenticated"`
}

// Project summarizes a CRM project assigned to a seller.
type Project struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	TotalLeads     int    `json:"total_leads"`
	NewLeads       int    `json:"new_leads"`
	ContactedLeads int    `json:"contacted_leads"`
	QualifiedLeads int    `json:"qualified_leads"`
}

// Lead statuses understood by the backend.
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusProposal    = "proposal"
	LeadStatusNegotiation = "negotiation"
)

// KnownLeadStatus reports whether s is a backend-recognized lead status.
func KnownLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusProposal, LeadStatusNegotiation:
		return true
	}
	return false
}

// Lead is a CRM prospect record, referenced by opaque ID.
type Lead struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	Company      string `json:"company"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Value        int64  `json:"value"`
	Stage        string `json:"stage"`
	Priority     string `json:"priority"`
	CreatedAt    string `json:"created_at"`
	Description  string `json:"description"`
}

// Reminder target kinds.
const (
	ReminderTargetProject = "project"
	ReminderTargetLead    = "lead"
)

// Reminder is the creation payload for POST api/reminders.
type Reminder struct {
	UserID       int64  `json:"user_id"`
	Title        string `json:"title"`
	Text         string `json:"text"`
	DueAt        int64  `json:"due_at"`
	ReminderType string `json:"reminder_type"`
	TargetID     int64  `json:"target_id"`
}

// ProjectReport aggregates per-project lead statistics.
type ProjectReport struct {
	ProjectName      string  `json:"project_name"`
	Period           string  `json:"period"`
	TotalLeads       int     `json:"total_leads"`
	NewLeads         int     `json:"new_leads"`
	ContactedLeads   int     `json:"contacted_leads"`
	QualifiedLeads   int     `json:"qualified_leads"`
	ProposalLeads    int     `json:"proposal_leads"`
	NegotiationLeads int     `json:"negotiation_leads"`
	TotalValue       int64   `json:"total_value"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// DailyReport is the per-user daily summary.
type DailyReport struct {
	Date       string `json:"date"`
	NewLeads   int    `json:"new_leads"`
	CallsMade  int    `json:"calls_made"`
	SalesTotal int64  `json:"sales_total"`
	Sellers    int    `json:"sellers"`
	TotalLeads int    `json:"total_leads"`
	TotalValue int64  `json:"total_value"`
}
