package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type cbCtx struct {
	tele.Context
	cb *tele.Callback
}

func (c *cbCtx) Callback() *tele.Callback { return c.cb }

func withData(data string) *cbCtx {
	return &cbCtx{cb: &tele.Callback{Data: data}}
}

func TestParseCallbackData(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\fproject|42"})
	if unique != "project" || payload != "42" {
		t.Errorf("parsed %q, %q", unique, payload)
	}

	unique, payload = ParseCallbackData(&tele.Callback{Data: "\fnav_home"})
	if unique != "nav_home" || payload != "" {
		t.Errorf("parsed %q, %q", unique, payload)
	}

	if u, p := ParseCallbackData(nil); u != "" || p != "" {
		t.Errorf("nil callback parsed as %q, %q", u, p)
	}
}

func TestCallbackKeyPrefersUnique(t *testing.T) {
	c := &cbCtx{cb: &tele.Callback{Unique: "lead", Data: "\fother|1"}}
	if got := CallbackKey(c); got != "lead" {
		t.Errorf("key = %q", got)
	}
	if got := CallbackKey(withData("\flead|1")); got != "lead" {
		t.Errorf("key from data = %q", got)
	}
}

func TestPayloadInt64(t *testing.T) {
	got, err := PayloadInt64(withData("\fproject|42"))
	if err != nil || got != 42 {
		t.Errorf("PayloadInt64 = %d, %v", got, err)
	}
	if _, err := PayloadInt64(withData("\fproject|abc")); err == nil {
		t.Error("non-numeric payload accepted")
	}
}

func TestPayloadInt(t *testing.T) {
	got, err := PayloadInt(withData("\fpage|3"))
	if err != nil || got != 3 {
		t.Errorf("PayloadInt = %d, %v", got, err)
	}
}

func TestPayloadFloat64(t *testing.T) {
	got, err := PayloadFloat64(withData("\famount|1.5"))
	if err != nil || got != 1.5 {
		t.Errorf("PayloadFloat64 = %f, %v", got, err)
	}
}

func TestPayloadParts(t *testing.T) {
	parts, err := PayloadParts(withData("\fleads|new|42"), "|")
	if err != nil {
		t.Fatalf("PayloadParts: %v", err)
	}
	if len(parts) != 2 || parts[0] != "new" || parts[1] != "42" {
		t.Errorf("parts = %v", parts)
	}
	if _, err := PayloadParts(withData("\fnav_home"), "|"); err == nil {
		t.Error("empty payload accepted")
	}
}

func TestPayloadTwoInt64(t *testing.T) {
	a, b, err := PayloadTwoInt64(withData("\fmove|7|9"), "|")
	if err != nil || a != 7 || b != 9 {
		t.Errorf("PayloadTwoInt64 = %d, %d, %v", a, b, err)
	}
	if _, _, err := PayloadTwoInt64(withData("\fmove|7"), "|"); err == nil {
		t.Error("single value accepted")
	}
	if _, _, err := PayloadTwoInt64(withData("\fmove|x|9"), "|"); err == nil {
		t.Error("non-numeric first value accepted")
	}
}
