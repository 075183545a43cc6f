package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

func TestFetchAlertsParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/alerts" {
			t.Fatalf("path = %q, want /api/alerts", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("Authorization = %q, want Bearer tok-123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"alerts":[
			{"id":1,"alert_level":"danger","category":"Food","message":"over budget",
			 "spent_amount":1200,"budget_amount":1000,"percentage":120,"remaining":-200}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok-123"))
	alerts, err := c.FetchAlerts(context.Background())
	if err != nil {
		t.Fatalf("FetchAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}

	a := alerts[0]
	if a.Level != model.SeverityDanger {
		t.Fatalf("Level = %q, want danger", a.Level)
	}
	if !a.Remaining.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("Remaining = %s, want -200", a.Remaining)
	}
	if !a.Overspent() {
		t.Fatal("Overspent() = false for negative remaining")
	}
}

func TestFetchAlertsMissingFieldYieldsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	alerts, err := c.FetchAlerts(context.Background())
	if err != nil {
		t.Fatalf("FetchAlerts: %v", err)
	}
	if alerts == nil || len(alerts) != 0 {
		t.Fatalf("alerts = %v, want non-nil empty slice", alerts)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("expired"))
	if _, err := c.FetchAlerts(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"database unavailable"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.FetchAlerts(context.Background())
	if err == nil {
		t.Fatal("expected error for status 500")
	}
	if got := err.Error(); got != "api: database unavailable (status 500)" {
		t.Fatalf("err = %q", got)
	}
}

func TestSendChatReturnsReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		_, _ = w.Write([]byte(`{"reply":"You spent ₹1,200.00 on Food this month."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok"))
	reply, err := c.SendChat(context.Background(), "how much on food?")
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if reply != "You spent ₹1,200.00 on Food this month." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestSendChatErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"","error":"could not understand request"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.SendChat(context.Background(), "???"); err == nil {
		t.Fatal("expected error from chat error payload")
	}
}

func TestLoginReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"token":"abc-def"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	tok, err := c.Login(context.Background(), "dev", "dev")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "abc-def" {
		t.Fatalf("token = %q", tok)
	}
}
