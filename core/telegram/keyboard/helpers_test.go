package keyboard

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestInlineButtonsOnePerRow(t *testing.T) {
	markup := InlineButtons([]InlineBtn{
		{Text: "A", Unique: "a"},
		{Text: "B", Unique: "b", Data: "42"},
	})
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(markup.InlineKeyboard))
	}
	btn := markup.InlineKeyboard[1][0]
	if btn.Text != "B" {
		t.Errorf("text = %q", btn.Text)
	}
	if btn.Unique != "b" || btn.Data != "42" {
		t.Errorf("button = %+v", btn)
	}
}

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Unique: "a"}, {Text: "B", Unique: "b"}},
		[]InlineBtn{{Text: "C", Unique: "c"}},
	)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 || len(markup.InlineKeyboard[1]) != 1 {
		t.Errorf("row sizes = %d, %d", len(markup.InlineKeyboard[0]), len(markup.InlineKeyboard[1]))
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "1", Unique: "x"}, {Text: "2", Unique: "x"}, {Text: "3", Unique: "x"},
		{Text: "4", Unique: "x"}, {Text: "5", Unique: "x"},
	}
	markup := InlineButtonsNPerRow(buttons, 2)
	if len(markup.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[2]) != 1 {
		t.Errorf("last row size = %d", len(markup.InlineKeyboard[2]))
	}

	// n <= 1 degrades to one per row.
	if rows := len(InlineButtonsNPerRow(buttons, 0).InlineKeyboard); rows != 5 {
		t.Errorf("rows = %d with n=0", rows)
	}
}

func TestChunkButtons(t *testing.T) {
	markup := &tele.ReplyMarkup{}
	flat := []tele.Btn{
		markup.Data("1", "x"), markup.Data("2", "x"), markup.Data("3", "x"),
	}
	rows := ChunkButtons(flat, 2)
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Errorf("chunks = %v", rows)
	}

	inline := ToInlineKeyboard(rows)
	if len(inline) != 2 || inline[0][0].Text != "1" {
		t.Errorf("inline = %v", inline)
	}
}

func TestReplyButtons(t *testing.T) {
	markup := ReplyButtons([]string{"Yes", "No"}, []string{"Cancel"})
	if !markup.ResizeKeyboard {
		t.Error("reply keyboard should resize")
	}
	if len(markup.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d", len(markup.ReplyKeyboard))
	}
	if markup.ReplyKeyboard[0][1].Text != "No" {
		t.Errorf("button = %+v", markup.ReplyKeyboard[0][1])
	}
}

func TestSingleCancelMarkup(t *testing.T) {
	markup := SingleCancelMarkup("wizard_cancel")
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("keyboard = %v", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Unique != "wizard_cancel" || btn.Text != defaultCancelButtonText {
		t.Errorf("button = %+v", btn)
	}

	custom := SingleCancelMarkup("wizard_cancel", "abort", "Stop")
	if got := custom.InlineKeyboard[0][0]; got.Data != "abort" || got.Text != "Stop" {
		t.Errorf("custom button = %+v", got)
	}
}

func TestMarkupModes(t *testing.T) {
	if !RemoveKeyboard().RemoveKeyboard {
		t.Error("RemoveKeyboard flag unset")
	}
	if !ForceReply().ForceReply {
		t.Error("ForceReply flag unset")
	}
}
