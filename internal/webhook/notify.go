package webhook

import (
	"encoding/json"
	"net/http"

	tele "gopkg.in/telebot.v4"
)

type notifyRequest struct {
	ChatID    int64  `json:"chat_id"`
	Message   string `json:"message"`
	ParseMode string `json:"parse_mode"`
}

type buttonSpec struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type notifyWithButtonsRequest struct {
	ChatID  int64        `json:"chat_id"`
	Message string       `json:"message"`
	Buttons []buttonSpec `json:"buttons"`
}

type bulkNotifyRequest struct {
	ChatIDs   []int64 `json:"chat_ids"`
	Message   string  `json:"message"`
	ParseMode string  `json:"parse_mode"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ChatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := s.notifier.Send(r.Context(), req.ChatID, req.Message, req.ParseMode, nil)
	if !result.Success {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"error":   result.Error,
			"data":    result,
		})
		return
	}
	writeOK(w, envelope{
		"message": "notification sent",
		"data":    result,
	})
}

func (s *Server) handleNotifyWithButtons(w http.ResponseWriter, r *http.Request) {
	var req notifyWithButtonsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ChatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var markup *tele.ReplyMarkup
	if len(req.Buttons) > 0 {
		markup = &tele.ReplyMarkup{}
		row := make([]tele.InlineButton, 0, len(req.Buttons))
		for _, b := range req.Buttons {
			row = append(row, tele.InlineButton{Text: b.Text, Data: b.CallbackData})
		}
		markup.InlineKeyboard = [][]tele.InlineButton{row}
	}

	result := s.notifier.Send(r.Context(), req.ChatID, req.Message, "", markup)
	if !result.Success {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"error":   result.Error,
			"data":    result,
		})
		return
	}
	writeOK(w, envelope{
		"message": "notification with buttons sent",
		"data":    result,
	})
}

// handleBulkNotify always answers 200: partial failures are reported per
// recipient inside the result list, never as an HTTP error.
func (s *Server) handleBulkNotify(w http.ResponseWriter, r *http.Request) {
	var req bulkNotifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.ChatIDs) == 0 {
		writeError(w, http.StatusBadRequest, "chat_ids is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	results := s.notifier.Bulk(r.Context(), req.ChatIDs, req.Message, req.ParseMode)
	sent := 0
	for _, res := range results {
		if res.Success {
			sent++
		}
	}
	writeOK(w, envelope{
		"total_requested": len(req.ChatIDs),
		"total_sent":      sent,
		"total_failed":    len(req.ChatIDs) - sent,
		"results":         results,
	})
}

// handleRaw accepts arbitrary JSON; only chat_id is mandatory.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !decodeBody(w, r, &payload) {
		return
	}

	chatID, ok := numberField(payload, "chat_id")
	if !ok || chatID == 0 {
		writeError(w, http.StatusBadRequest, "chat_id is required")
		return
	}
	message, _ := payload["message"].(string)
	if message == "" {
		message = "Test notification from webhook"
	}

	result := s.notifier.Send(r.Context(), chatID, message, "", nil)
	writeOK(w, envelope{
		"message":          "raw webhook processed",
		"data":             result,
		"received_payload": payload,
	})
}

// numberField extracts an int64 from a decoded JSON map, tolerating the
// float64 representation encoding/json uses for numbers.
func numberField(m map[string]interface{}, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
