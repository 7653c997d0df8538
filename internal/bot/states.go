package bot

import "github.com/leadana/crmbot/core/telegram/state"

// Conversation states. Auth and the reminder wizard are the only
// multi-step flows; everything else is a single request/response.
const (
	StateAuthPhone     state.State = "auth:phone"
	StateAuthCode      state.State = "auth:code"
	StateReminderTitle state.State = "reminder:title"
	StateReminderText  state.State = "reminder:text"
	StateReminderTime  state.State = "reminder:time"
)

// Temp-data keys used inside sessions.
const (
	tempPhone        = "phone"
	tempReminderKind = "reminder_kind"
	tempTargetID     = "target_id"
	tempTargetName   = "target_name"
	tempTitle        = "title"
	tempText         = "text"
)
