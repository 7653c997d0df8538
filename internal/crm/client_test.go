package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestVerifyCodeWrongCodeIsDomainError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-code" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "wrong code"})
	})

	_, err := client.VerifyCode(context.Background(), 42, "09123456789", "123456")
	if err == nil {
		t.Fatal("expected error")
	}
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if de.Message != "wrong code" {
		t.Errorf("message = %q", de.Message)
	}
	if !IsDomain(err) {
		t.Error("IsDomain = false")
	}
}

func TestSendSMSUserNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "user not found"})
	})

	err := client.SendSMS(context.Background(), 42, "09123456789")
	if !IsDomain(err) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestServerErrorIsNotDomain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.SendSMS(context.Background(), 42, "09123456789")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsDomain(err) {
		t.Error("5xx must not map to a domain rejection")
	}
}

func TestStartAuthDecodesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["telegram_id"].(float64) != 42 {
			t.Errorf("telegram_id = %v", body["telegram_id"])
		}
		_ = json.NewEncoder(w).Encode(AuthStatus{
			IsLoggedIn: true,
			UserInfo:   UserInfo{Name: "Sara", Phone: "09123456789"},
		})
	})

	status, err := client.StartAuth(context.Background(), 42)
	if err != nil {
		t.Fatalf("StartAuth: %v", err)
	}
	if !status.IsLoggedIn || status.UserInfo.Name != "Sara" {
		t.Errorf("status = %+v", status)
	}
}

func TestSellerProjectsPathAndDecode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sellers/7/projects" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"projects": []Project{{ID: 1, Name: "Towers", TotalLeads: 3}},
		})
	})

	projects, err := client.SellerProjects(context.Background(), 7)
	if err != nil {
		t.Fatalf("SellerProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Towers" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestUpdateLeadStatusSendsPut(t *testing.T) {
	var method, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	if err := client.UpdateLeadStatus(context.Background(), 5, LeadStatusQualified, 7); err != nil {
		t.Fatalf("UpdateLeadStatus: %v", err)
	}
	if method != http.MethodPut || path != "/api/leads/5/status" {
		t.Errorf("request = %s %s", method, path)
	}
}

func TestCreateReminderAcceptsCreated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rem Reminder
		if err := json.NewDecoder(r.Body).Decode(&rem); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rem.Title != "call back" || rem.ReminderType != ReminderTargetLead {
			t.Errorf("reminder = %+v", rem)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateReminder(context.Background(), Reminder{
		UserID: 7, Title: "call back", Text: "ask about budget",
		DueAt: 1700000000, ReminderType: ReminderTargetLead, TargetID: 5,
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
}

func TestKnownLeadStatus(t *testing.T) {
	for _, s := range []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusProposal, LeadStatusNegotiation} {
		if !KnownLeadStatus(s) {
			t.Errorf("KnownLeadStatus(%q) = false", s)
		}
	}
	if KnownLeadStatus("closed") || KnownLeadStatus("") {
		t.Error("unknown status accepted")
	}
}
