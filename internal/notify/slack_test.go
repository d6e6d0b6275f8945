package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewSlack_NilWhenUnconfigured(t *testing.T) {
	if s := NewSlack(""); s != nil {
		t.Fatal("empty webhook should return nil")
	}
}

func TestSlack_SendPostsPayload(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type: %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if err := s.Send(context.Background(), "api is DOWN", "URL: https://example.com"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got.Text, "*api is DOWN*\n") {
		t.Fatalf("subject should be bolded on its own line, got %q", got.Text)
	}
	if !strings.Contains(got.Text, "https://example.com") {
		t.Fatalf("body missing from payload: %q", got.Text)
	}
}

func TestSlack_SendNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	s := NewSlack(srv.URL)
	if err := s.Send(context.Background(), "s", "b"); err == nil {
		t.Fatal("want error on non-2xx webhook response")
	}
}

func TestMulti_SkipsNilSinksAndFansOut(t *testing.T) {
	var calls int
	rec := notifierFunc(func(ctx context.Context, subject, body string) error {
		calls++
		return nil
	})

	m := Multi{nil, rec, rec}
	if err := m.Send(context.Background(), "s", "b"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("want both non-nil sinks called, got %d", calls)
	}
}

type notifierFunc func(ctx context.Context, subject, body string) error

func (f notifierFunc) Send(ctx context.Context, subject, body string) error {
	return f(ctx, subject, body)
}
