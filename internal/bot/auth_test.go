package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leadana/crmbot/core/telegram/state"
	"github.com/leadana/crmbot/internal/crm"
	"github.com/leadana/crmbot/internal/roles"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements the slice of tele.Context the handlers touch. The
// embedded interface panics on anything unexpected, which is what we
// want in a test.
type fakeCtx struct {
	tele.Context

	sender   *tele.User
	chat     *tele.Chat
	text     string
	message  *tele.Message
	callback *tele.Callback

	kv       map[string]interface{}
	sent     []string
	responds []*tele.CallbackResponse
}

func newFakeCtx(userID int64) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: userID},
		kv:     map[string]interface{}{},
	}
}

func (f *fakeCtx) Sender() *tele.User       { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat         { return f.chat }
func (f *fakeCtx) Update() tele.Update      { return tele.Update{ID: 1} }
func (f *fakeCtx) Text() string             { return f.text }
func (f *fakeCtx) Message() *tele.Message   { return f.message }
func (f *fakeCtx) Callback() *tele.Callback { return f.callback }

func (f *fakeCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeCtx) Respond(resp ...*tele.CallbackResponse) error {
	f.responds = append(f.responds, resp...)
	return nil
}

func (f *fakeCtx) Get(key string) interface{} { return f.kv[key] }
func (f *fakeCtx) Set(key string, v interface{}) {
	f.kv[key] = v
}

func (f *fakeCtx) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fakeCRM struct {
	authStatus *crm.AuthStatus
	authErr    error

	smsErr   error
	smsCalls []string

	verifyStatus *crm.AuthStatus
	verifyErr    error
	verifyCalls  []string

	session    *crm.SessionStatus
	sessionErr error

	daily    *crm.DailyReport
	dailyErr error
}

func (f *fakeCRM) StartAuth(_ context.Context, _ int64) (*crm.AuthStatus, error) {
	return f.authStatus, f.authErr
}

func (f *fakeCRM) SendSMS(_ context.Context, _ int64, phone string) error {
	f.smsCalls = append(f.smsCalls, phone)
	return f.smsErr
}

func (f *fakeCRM) VerifyCode(_ context.Context, _ int64, phone, code string) (*crm.AuthStatus, error) {
	f.verifyCalls = append(f.verifyCalls, phone+":"+code)
	return f.verifyStatus, f.verifyErr
}

func (f *fakeCRM) Logout(_ context.Context, _ int64) error { return nil }

func (f *fakeCRM) CheckSession(_ context.Context, _ int64) (*crm.SessionStatus, error) {
	return f.session, f.sessionErr
}

func (f *fakeCRM) SellerProjects(_ context.Context, _ int64) ([]crm.Project, error) {
	return nil, nil
}
func (f *fakeCRM) Project(_ context.Context, _ int64) (*crm.Project, error) { return nil, nil }
func (f *fakeCRM) ProjectLeads(_ context.Context, _ int64, _ string, _ int64) ([]crm.Lead, error) {
	return nil, nil
}
func (f *fakeCRM) Lead(_ context.Context, _, _ int64) (*crm.Lead, error)          { return nil, nil }
func (f *fakeCRM) UpdateLeadStatus(_ context.Context, _ int64, _ string, _ int64) error {
	return nil
}
func (f *fakeCRM) CreateReminder(_ context.Context, _ crm.Reminder) error { return nil }
func (f *fakeCRM) ProjectReport(_ context.Context, _, _ int64) (*crm.ProjectReport, error) {
	return nil, nil
}
func (f *fakeCRM) DailyReport(_ context.Context, _ int64, _ string) (*crm.DailyReport, error) {
	return f.daily, f.dailyErr
}

func newTestApp(fake *fakeCRM, managers, sellers []int64) *App {
	return &App{
		crm:      fake,
		gate:     roles.NewGate(managers, sellers),
		sessions: state.NewMemoryManager(time.Minute),
	}
}

func TestPromptPhoneSetsState(t *testing.T) {
	app := newTestApp(&fakeCRM{}, nil, []int64{7})
	c := newFakeCtx(7)

	if err := app.promptPhone(c); err != nil {
		t.Fatalf("promptPhone: %v", err)
	}
	if got := app.sessions.GetState(7); got != StateAuthPhone {
		t.Errorf("state = %q", got)
	}
	if c.lastSent() != msgPhonePrompt {
		t.Errorf("sent = %q", c.lastSent())
	}
}

func TestInvalidPhoneRepromptsWithoutBackendCall(t *testing.T) {
	fake := &fakeCRM{}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthPhone)

	c := newFakeCtx(7)
	c.text = "hello world"

	if err := app.handlePhoneInput(c); err != nil {
		t.Fatalf("handlePhoneInput: %v", err)
	}
	if len(fake.smsCalls) != 0 {
		t.Errorf("SendSMS called %d times for garbage input", len(fake.smsCalls))
	}
	if got := app.sessions.GetState(7); got != StateAuthPhone {
		t.Errorf("state moved to %q on invalid input", got)
	}
	if c.lastSent() != msgPhoneInvalid {
		t.Errorf("sent = %q", c.lastSent())
	}
}

func TestValidPhoneAdvancesToCodeStep(t *testing.T) {
	fake := &fakeCRM{}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthPhone)

	c := newFakeCtx(7)
	c.text = "+989123456789"

	if err := app.handlePhoneInput(c); err != nil {
		t.Fatalf("handlePhoneInput: %v", err)
	}
	if len(fake.smsCalls) != 1 || fake.smsCalls[0] != "09123456789" {
		t.Errorf("smsCalls = %v, want canonical form", fake.smsCalls)
	}
	if got := app.sessions.GetState(7); got != StateAuthCode {
		t.Errorf("state = %q, want auth:code", got)
	}
	stored, ok := app.sessions.GetTempString(7, tempPhone)
	if !ok || stored != "09123456789" {
		t.Errorf("stored phone = %q, %v", stored, ok)
	}
}

func TestUnknownPhoneStaysInPhoneStep(t *testing.T) {
	fake := &fakeCRM{smsErr: &crm.DomainError{Op: "send-sms", Message: "user not found"}}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthPhone)

	c := newFakeCtx(7)
	c.text = "09123456789"

	if err := app.handlePhoneInput(c); err != nil {
		t.Fatalf("handlePhoneInput: %v", err)
	}
	if c.lastSent() != msgPhoneUnknown {
		t.Errorf("sent = %q", c.lastSent())
	}
	if got := app.sessions.GetState(7); got != StateAuthPhone {
		t.Errorf("state = %q, rejection must keep the phone step", got)
	}
}

func TestShortCodeRejectedLocally(t *testing.T) {
	fake := &fakeCRM{}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthCode)
	app.sessions.SetTemp(7, tempPhone, "09123456789")

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		c := newFakeCtx(7)
		c.text = code
		if err := app.handleCodeInput(c); err != nil {
			t.Fatalf("handleCodeInput(%q): %v", code, err)
		}
		if c.lastSent() != msgCodeInvalid {
			t.Errorf("code %q: sent = %q", code, c.lastSent())
		}
	}
	if len(fake.verifyCalls) != 0 {
		t.Errorf("VerifyCode called %d times for locally invalid codes", len(fake.verifyCalls))
	}
}

func TestWrongCodeKeepsCodeStep(t *testing.T) {
	fake := &fakeCRM{verifyErr: &crm.DomainError{Op: "verify-code", Message: "wrong code"}}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthCode)
	app.sessions.SetTemp(7, tempPhone, "09123456789")

	c := newFakeCtx(7)
	c.text = "111111"

	if err := app.handleCodeInput(c); err != nil {
		t.Fatalf("handleCodeInput: %v", err)
	}
	if c.lastSent() != msgCodeWrong {
		t.Errorf("sent = %q", c.lastSent())
	}
	if got := app.sessions.GetState(7); got != StateAuthCode {
		t.Errorf("state = %q, wrong code must keep the code step", got)
	}
}

func TestSuccessfulVerifyClearsConversation(t *testing.T) {
	fake := &fakeCRM{verifyStatus: &crm.AuthStatus{
		IsLoggedIn: true,
		UserInfo:   crm.UserInfo{Name: "Sara"},
	}}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthCode)
	app.sessions.SetTemp(7, tempPhone, "09123456789")

	c := newFakeCtx(7)
	c.text = "123456"

	if err := app.handleCodeInput(c); err != nil {
		t.Fatalf("handleCodeInput: %v", err)
	}
	if fake.verifyCalls[0] != "09123456789:123456" {
		t.Errorf("verifyCalls = %v", fake.verifyCalls)
	}
	if app.sessions.HasState(7) {
		t.Error("conversation state survived a successful login")
	}
	if _, ok := app.sessions.GetTempString(7, tempPhone); ok {
		t.Error("temp phone survived a successful login")
	}
	if !strings.Contains(c.lastSent(), "Sara") {
		t.Errorf("welcome text = %q", c.lastSent())
	}
}

func TestCodeWithoutStoredPhoneRestarts(t *testing.T) {
	fake := &fakeCRM{}
	app := newTestApp(fake, nil, []int64{7})
	app.sessions.SetState(7, StateAuthCode)

	c := newFakeCtx(7)
	c.text = "123456"

	if err := app.handleCodeInput(c); err != nil {
		t.Fatalf("handleCodeInput: %v", err)
	}
	if len(fake.verifyCalls) != 0 {
		t.Error("VerifyCode called without a stored phone")
	}
	if app.sessions.HasState(7) {
		t.Error("broken conversation was not cleared")
	}
}

func TestContactShareStartsVerification(t *testing.T) {
	fake := &fakeCRM{}
	app := newTestApp(fake, nil, []int64{7})

	c := newFakeCtx(7)
	c.message = &tele.Message{Contact: &tele.Contact{PhoneNumber: "+989123456789"}}

	if err := app.handleContact(c); err != nil {
		t.Fatalf("handleContact: %v", err)
	}
	if len(fake.smsCalls) != 1 || fake.smsCalls[0] != "09123456789" {
		t.Errorf("smsCalls = %v", fake.smsCalls)
	}
	if got := app.sessions.GetState(7); got != StateAuthCode {
		t.Errorf("state = %q", got)
	}
}

func TestRenderMenuByRole(t *testing.T) {
	app := newTestApp(&fakeCRM{}, []int64{1}, []int64{2})

	text, markup := app.renderMenu(1, "hi")
	if !strings.Contains(text, "manager") || markup == nil {
		t.Errorf("manager menu = %q, markup %v", text, markup)
	}

	text, markup = app.renderMenu(2, "hi")
	if !strings.Contains(text, "seller") || markup == nil {
		t.Errorf("seller menu = %q, markup %v", text, markup)
	}

	text, markup = app.renderMenu(99, "hi")
	if text != msgUnauthorized || markup != nil {
		t.Errorf("unknown user menu = %q, markup %v", text, markup)
	}
}

func TestRenderMenuDeterministic(t *testing.T) {
	app := newTestApp(&fakeCRM{}, []int64{1}, nil)
	first, _ := app.renderMenu(1, "🏠")
	for i := 0; i < 20; i++ {
		if text, _ := app.renderMenu(1, "🏠"); text != first {
			t.Fatal("renderMenu is not deterministic")
		}
	}
}

func TestReportUnauthorizedUser(t *testing.T) {
	app := newTestApp(&fakeCRM{}, nil, nil)
	c := newFakeCtx(99)

	if err := app.cmdReport(c); err != nil {
		t.Fatalf("cmdReport: %v", err)
	}
	if c.lastSent() != msgUnauthorized {
		t.Errorf("sent = %q", c.lastSent())
	}
}

func TestReportRequiresBackendSession(t *testing.T) {
	fake := &fakeCRM{session: &crm.SessionStatus{IsAuthenticated: false}}
	app := newTestApp(fake, nil, []int64{7})
	c := newFakeCtx(7)

	if err := app.cmdReport(c); err != nil {
		t.Fatalf("cmdReport: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != msgSessionRequired {
		t.Errorf("sent = %v, want a single sign-in prompt", c.sent)
	}
}

func TestReportManagerVsSeller(t *testing.T) {
	fake := &fakeCRM{
		session: &crm.SessionStatus{IsAuthenticated: true},
		daily:   &crm.DailyReport{Sellers: 3, TotalLeads: 40, NewLeads: 5, CallsMade: 12, SalesTotal: 2},
	}
	app := newTestApp(fake, []int64{1}, []int64{2})

	mgr := newFakeCtx(1)
	if err := app.cmdReport(mgr); err != nil {
		t.Fatalf("manager cmdReport: %v", err)
	}
	if !strings.Contains(mgr.lastSent(), "Management report") {
		t.Errorf("manager report = %q", mgr.lastSent())
	}

	seller := newFakeCtx(2)
	if err := app.cmdReport(seller); err != nil {
		t.Fatalf("seller cmdReport: %v", err)
	}
	if !strings.Contains(seller.lastSent(), "Your daily report") {
		t.Errorf("seller report = %q", seller.lastSent())
	}
}

func TestStartWhileLoggedIn(t *testing.T) {
	fake := &fakeCRM{authStatus: &crm.AuthStatus{
		IsLoggedIn: true,
		UserInfo:   crm.UserInfo{Name: "Sara"},
	}}
	app := newTestApp(fake, nil, []int64{7})
	c := newFakeCtx(7)

	if err := app.cmdStart(c); err != nil {
		t.Fatalf("cmdStart: %v", err)
	}
	if !strings.Contains(c.lastSent(), "Welcome back") {
		t.Errorf("sent = %q", c.lastSent())
	}
}

func TestStartWhileLoggedOut(t *testing.T) {
	fake := &fakeCRM{authStatus: &crm.AuthStatus{IsLoggedIn: false}}
	app := newTestApp(fake, nil, []int64{7})
	c := newFakeCtx(7)

	if err := app.cmdStart(c); err != nil {
		t.Fatalf("cmdStart: %v", err)
	}
	if c.lastSent() != msgWelcomeAuth {
		t.Errorf("sent = %q", c.lastSent())
	}
}
