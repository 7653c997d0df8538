package bot

import (
	"log/slog"

	"github.com/leadana/crmbot/core/logger"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/core/telegram/keyboard"
	"github.com/leadana/crmbot/internal/crm"
	"github.com/leadana/crmbot/internal/phone"

	tele "gopkg.in/telebot.v4"
)

const (
	btnSharePhone = "📱 Share phone number"
	btnEnterPhone = "📝 Enter phone number"
)

const (
	msgWelcomeAuth     = "🔐 Welcome to the CRM bot!\n\nPlease sign in to continue:"
	msgPhonePrompt     = "📱 Enter your phone number.\n\nAccepted formats: +989123456789, 989123456789, 09123456789"
	msgPhoneInvalid    = "❌ That doesn't look like a valid phone number. Try again:"
	msgPhoneUnknown    = "❌ This phone number is not registered in the CRM. Contact your manager."
	msgCodePrompt      = "📨 A 6-digit verification code was sent. Enter it here:"
	msgCodeInvalid     = "❌ The code must be exactly 6 digits. Try again:"
	msgCodeWrong       = "❌ Wrong code. Try again:"
	msgGenericFailure  = "❌ Something went wrong. Please try again."
	msgSessionRequired = "🔐 Please sign in first. Run /start."
)

func authKeyboard() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(
		markup.Contact(btnSharePhone),
		markup.Text(btnEnterPhone),
	))
	return markup
}

// cmdStart asks the backend whether the user is already logged in and
// renders either the role menu or the auth keyboard.
func (a *App) cmdStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	userID := c.Sender().ID

	status, err := a.crm.StartAuth(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "tg", "auth.start_check_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return c.Send(msgWelcomeAuth, authKeyboard())
	}
	if !status.IsLoggedIn {
		greeting := msgWelcomeAuth
		if status.Message != "" {
			greeting = "🔐 Welcome to the CRM bot!\n\n" + status.Message
		}
		return c.Send(greeting, authKeyboard())
	}

	name := status.UserInfo.Name
	if name == "" {
		name = "there"
	}
	text, markup := a.renderMenu(userID, "👋 Welcome back, "+name+"!")
	return c.Send(text, markup)
}

// promptPhone starts manual phone entry.
func (a *App) promptPhone(c tele.Context) error {
	a.sessions.SetState(c.Sender().ID, StateAuthPhone)
	return c.Send(msgPhonePrompt, keyboard.RemoveKeyboard())
}

// handlePhoneInput validates and normalizes the typed phone, then asks
// the backend to send the SMS code. Invalid input re-prompts in place.
func (a *App) handlePhoneInput(c tele.Context) error {
	tghelpers.WithHandler(c, "auth_phone")

	normalized, err := phone.Normalize(c.Text())
	if err != nil {
		return c.Send(msgPhoneInvalid)
	}
	return a.startVerification(c, normalized)
}

// handleContact is the contact-sharing shortcut: idle straight to the
// code step.
func (a *App) handleContact(c tele.Context) error {
	tghelpers.WithHandler(c, "auth_contact")

	contact := c.Message().Contact
	if contact == nil {
		return c.Send(msgGenericFailure)
	}
	normalized, err := phone.Normalize(contact.PhoneNumber)
	if err != nil {
		return c.Send(msgPhoneInvalid)
	}
	return a.startVerification(c, normalized)
}

func (a *App) startVerification(c tele.Context, normalized string) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if err := a.crm.SendSMS(ctx, userID, normalized); err != nil {
		if crm.IsDomain(err) {
			return c.Send(msgPhoneUnknown)
		}
		logger.Warn(ctx, "tg", "auth.send_sms_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return c.Send(msgGenericFailure)
	}

	a.sessions.SetTemp(userID, tempPhone, normalized)
	a.sessions.SetState(userID, StateAuthCode)
	return c.Send(msgCodePrompt, keyboard.RemoveKeyboard())
}

// handleCodeInput verifies the SMS code. Wrong length or non-digits are
// rejected locally; a backend 409 keeps the user in the code step.
func (a *App) handleCodeInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "auth_code")
	userID := c.Sender().ID

	code := c.Text()
	if !phone.ValidCode(code) {
		return c.Send(msgCodeInvalid)
	}

	storedPhone, ok := a.sessions.GetTempString(userID, tempPhone)
	if !ok || storedPhone == "" {
		a.sessions.Clear(userID)
		return c.Send(msgGenericFailure + " Run /start to begin again.")
	}

	status, err := a.crm.VerifyCode(ctx, userID, storedPhone, code)
	if err != nil {
		if crm.IsDomain(err) {
			return c.Send(msgCodeWrong)
		}
		logger.Warn(ctx, "tg", "auth.verify_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return c.Send(msgGenericFailure)
	}

	a.sessions.Clear(userID)

	name := status.UserInfo.Name
	if name == "" {
		name = "there"
	}
	text, markup := a.renderMenu(userID, "✅ Signed in. Welcome, "+name+"!")
	return c.Send(text, markup)
}

// cmdProfile renders backend user info.
func (a *App) cmdProfile(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "profile")
	userID := c.Sender().ID

	status, err := a.crm.StartAuth(ctx, userID)
	if err != nil || !status.IsLoggedIn {
		return c.Send("❌ No profile found. Run /start to sign in.")
	}

	info := status.UserInfo
	text := "👤 Your profile\n\n" +
		"Name: " + orDash(info.Name) + "\n" +
		"Phone: " + orDash(info.Phone) + "\n" +
		"Email: " + orDash(info.Email) + "\n" +
		"Role: " + orDash(info.Role)
	return c.Send(text)
}

// cmdLogout terminates the backend session.
func (a *App) cmdLogout(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "logout")
	userID := c.Sender().ID

	if err := a.crm.Logout(ctx, userID); err != nil {
		logger.Warn(ctx, "tg", "auth.logout_fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return c.Send(msgGenericFailure)
	}
	a.sessions.Clear(userID)
	return c.Send("✅ Signed out. Run /start to sign in again.", keyboard.RemoveKeyboard())
}

// requireSession re-queries the backend for login truth; it is never
// cached locally.
func (a *App) requireSession(c tele.Context) bool {
	ctx := tghelpers.BuildContext(c)
	status, err := tghelpers.CurrentSession[*crm.SessionStatus](ctx, a.crm, c.Sender().ID)
	if err != nil || status == nil || !status.IsAuthenticated {
		if c.Callback() != nil {
			_ = c.Respond(&tele.CallbackResponse{Text: msgSessionRequired, ShowAlert: true})
		} else {
			_ = c.Send(msgSessionRequired)
		}
		return false
	}
	return true
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
