package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leadana/crmbot/core/logger"
	tghelpers "github.com/leadana/crmbot/core/telegram/helpers"
	"github.com/leadana/crmbot/internal/notify"

	tele "gopkg.in/telebot.v4"
)

type receiptRequest struct {
	GroupID      int64  `json:"group_id"`
	ThreadID     int    `json:"thread_id"`
	CustomerName string `json:"customer_name"`
	PriceDeal    int64  `json:"price_deal"`
	PriceDeposit int64  `json:"price_deposit"`
	Date         string `json:"date"`
	PhotoURL     string `json:"photo_url"`
	Description  string `json:"description"`
}

// handleReceipt validates everything locally before the first Telegram
// call: a malformed date or a deposit above the deal price is a 400 with
// zero sends performed.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GroupID == 0 {
		writeError(w, http.StatusBadRequest, "group_id is required")
		return
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		writeError(w, http.StatusBadRequest, "customer_name is required")
		return
	}
	if _, ok := tghelpers.ParseFlexibleDate(req.Date); !ok {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}
	if req.PriceDeal < 0 || req.PriceDeposit < 0 {
		writeError(w, http.StatusBadRequest, "prices must not be negative")
		return
	}
	if req.PriceDeposit > req.PriceDeal {
		writeError(w, http.StatusBadRequest, "deposit exceeds deal price")
		return
	}

	text := formatReceipt(req)
	result, mode := s.deliverReceipt(r.Context(), req, text)
	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"error":   result.Error,
		})
		return
	}
	writeOK(w, envelope{
		"message":  "receipt delivered",
		"mode":     mode,
		"data":     result,
		"group_id": req.GroupID,
	})
}

func formatReceipt(req receiptRequest) string {
	var b strings.Builder
	b.WriteString("🧾 Receipt\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", req.CustomerName)
	fmt.Fprintf(&b, "Deal: %d\n", req.PriceDeal)
	fmt.Fprintf(&b, "Deposit: %d\n", req.PriceDeposit)
	fmt.Fprintf(&b, "Remaining: %d\n", req.PriceDeal-req.PriceDeposit)
	fmt.Fprintf(&b, "Date: %s\n", strings.TrimSpace(req.Date))
	if desc := strings.TrimSpace(req.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	return b.String()
}

// deliverReceipt tries, in order of decreasing fidelity: photo into the
// topic, text into the topic, photo into the main stream, text into the
// main stream. The photo step is skipped when no photo URL was supplied.
func (s *Server) deliverReceipt(ctx context.Context, req receiptRequest, text string) (notify.Result, string) {
	threadIDs := []int{req.ThreadID}
	if req.ThreadID > 0 {
		threadIDs = append(threadIDs, 0)
	}

	var last notify.Result
	for _, threadID := range threadIDs {
		opts := &tele.SendOptions{ThreadID: threadID}

		if req.PhotoURL != "" {
			res, err := s.notifier.SendPhoto(ctx, req.GroupID, req.PhotoURL, text, opts)
			if err == nil {
				return res, deliveryMode("photo", threadID)
			}
			last = res
			logger.Warn(ctx, "web", "receipt.photo_fallback",
				slog.Int64("group_id", req.GroupID),
				slog.Int("thread_id", threadID),
				slog.String("err", res.Error),
			)
		}

		res, err := s.notifier.SendText(ctx, req.GroupID, text, opts)
		if err == nil {
			return res, deliveryMode("text", threadID)
		}
		last = res
		if threadID > 0 {
			logger.Warn(ctx, "web", "receipt.topic_fallback",
				slog.Int64("group_id", req.GroupID),
				slog.Int("thread_id", threadID),
				slog.String("err", res.Error),
			)
		}
	}
	return last, ""
}

func deliveryMode(kind string, threadID int) string {
	if threadID > 0 {
		return kind + "_topic"
	}
	return kind + "_main"
}
