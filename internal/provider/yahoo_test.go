package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inboxguardian/internal/model"
)

func yahooServer(t *testing.T, handler http.HandlerFunc) *YahooMailbox {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewYahooMailbox(srv.URL, "user@yahoo.com", 5*time.Second)
}

func TestYahooConnect(t *testing.T) {
	var gotBody map[string]string
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/yahoo/connect" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "Connected to Yahoo Mail"})
	})

	if err := m.Connect(context.Background(), "app-pass"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if gotBody["email"] != "user@yahoo.com" || gotBody["appPassword"] != "app-pass" {
		t.Errorf("body got %v", gotBody)
	}
}

func TestYahooConnect_BadCredentials(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "Failed to connect"})
	})

	err := m.Connect(context.Background(), "wrong")
	var notAuth *NotAuthenticatedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("want NotAuthenticatedError, got %v", err)
	}
}

func TestYahooFetchUnread(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/yahoo/emails" {
			t.Errorf("path got %s", r.URL.Path)
		}
		if r.URL.Query().Get("email") != "user@yahoo.com" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("query got %v", r.URL.Query())
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"emails": []model.Email{
				{ID: "yahoo-12", Subject: "hi", Sender: "A", SenderEmail: "a@x.com", Date: "2024-01-01T00:00:00Z"},
			},
			"count": 1,
		})
	})

	emails, err := m.FetchUnread(context.Background(), 50)
	if err != nil {
		t.Fatalf("FetchUnread: %v", err)
	}
	if len(emails) != 1 || emails[0].ID != "yahoo-12" {
		t.Fatalf("emails got %v", emails)
	}
}

func TestYahooFetchUnread_NotConnected(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "Not connected. Please connect first."})
	})

	_, err := m.FetchUnread(context.Background(), 50)
	var notAuth *NotAuthenticatedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("want NotAuthenticatedError, got %v", err)
	}
}

func TestYahooFetchDetail_DegradesOnServerError(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "boom"})
	})

	base := model.Email{ID: "yahoo-3", Snippet: "the snippet"}
	detail, err := m.FetchDetail(context.Background(), "yahoo-3", base)
	if err != nil {
		t.Fatalf("FetchDetail: %v", err)
	}
	if detail.Body != "the snippet" || detail.BodyText != "the snippet" {
		t.Errorf("degraded detail got %+v", detail)
	}
}

func TestYahooTrash_PartialOutcome(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MessageIDs []string `json:"messageIds"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.MessageIDs) != 3 {
			t.Errorf("ids got %v", body.MessageIDs)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":      false,
			"trashedCount": 2,
			"failedIds":    []string{"yahoo-9"},
		})
	})

	out := m.Trash(context.Background(), []string{"yahoo-7", "yahoo-8", "yahoo-9"})
	if out.Success {
		t.Error("expected partial failure")
	}
	if out.TrashedCount != 2 || len(out.FailedIDs) != 1 || out.FailedIDs[0] != "yahoo-9" {
		t.Errorf("outcome got %+v", out)
	}
	if out.TrashedCount+len(out.FailedIDs) != 3 {
		t.Errorf("outcome does not account for all ids: %+v", out)
	}
}

func TestYahooTrash_TransportFailureFailsAll(t *testing.T) {
	m := NewYahooMailbox("http://127.0.0.1:1", "user@yahoo.com", 500*time.Millisecond)

	ids := []string{"yahoo-1", "yahoo-2"}
	out := m.Trash(context.Background(), ids)
	if out.Success || out.TrashedCount != 0 {
		t.Errorf("outcome got %+v", out)
	}
	if len(out.FailedIDs) != 2 {
		t.Errorf("failed ids got %v", out.FailedIDs)
	}
	if out.ErrorMessage == "" {
		t.Error("expected error message")
	}
}

func TestYahooStatus(t *testing.T) {
	m := yahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/yahoo/status" {
			t.Errorf("path got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "connected": true, "email": "user@yahoo.com",
		})
	})

	connected, err := m.Status(context.Background())
	if err != nil || !connected {
		t.Fatalf("Status: connected=%v err=%v", connected, err)
	}
}
