package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	e := NewEvent(EventRunStarted, "run-1", "started")

	if e.Type != EventRunStarted || e.RunID != "run-1" || e.Message != "started" {
		t.Errorf("event = %+v", e)
	}
	if e.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", e.Severity)
	}
	if e.Timestamp.Before(before) {
		t.Errorf("Timestamp = %v, want >= %v", e.Timestamp, before)
	}
}

func TestNopNotifier(t *testing.T) {
	if err := (NopNotifier{}).Notify(context.Background(), Event{Type: EventRunStarted}); err != nil {
		t.Errorf("NopNotifier.Notify() error = %v, want nil", err)
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogNotifier(zap.New(core))

	err := n.Notify(context.Background(), Event{
		Type:     EventPRCreated,
		RunID:    "run-123",
		App:      "billing-svc",
		Repo:     "acme/infra",
		URL:      "https://github.com/acme/infra/pull/1",
		Message:  "pull request created",
		Severity: SeverityInfo,
	})
	if err != nil {
		t.Fatalf("LogNotifier.Notify() error = %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Message != "pull request created" {
		t.Errorf("Message = %q", entries[0].Message)
	}
	if fields["run_id"] != "run-123" || fields["app"] != "billing-svc" || fields["pr"] != "https://github.com/acme/infra/pull/1" {
		t.Errorf("fields = %v", fields)
	}
}

func TestLogNotifier_Severity(t *testing.T) {
	tests := []struct {
		severity string
		want     zapcore.Level
	}{
		{SeverityInfo, zapcore.InfoLevel},
		{SeverityWarning, zapcore.WarnLevel},
		{SeverityError, zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			n := NewLogNotifier(zap.New(core))

			if err := n.Notify(context.Background(), Event{Type: EventRunStarted, Message: "test", Severity: tt.severity}); err != nil {
				t.Fatalf("Notify() error = %v", err)
			}
			if got := logs.All()[0].Level; got != tt.want {
				t.Errorf("Level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("NewLogNotifier should use a no-op logger when nil")
	}
	if err := n.Notify(context.Background(), Event{}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
}

func TestWebhookNotifier(t *testing.T) {
	var receivedBody []byte
	var receivedAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, WithWebhookToken("hook-token"))
	err := n.Notify(context.Background(), Event{
		Type:     EventPRCreated,
		RunID:    "run-123",
		App:      "billing-svc",
		Repo:     "acme/infra",
		URL:      "https://github.com/acme/infra/pull/3",
		Severity: SeverityInfo,
	})
	if err != nil {
		t.Fatalf("WebhookNotifier.Notify() error = %v", err)
	}

	var parsed struct {
		Event
		Text string `json:"text"`
	}
	if err := json.Unmarshal(receivedBody, &parsed); err != nil {
		t.Fatalf("Failed to parse received body: %v", err)
	}
	if parsed.RunID != "run-123" || parsed.App != "billing-svc" || parsed.Type != EventPRCreated {
		t.Errorf("parsed = %+v", parsed)
	}
	if want := "billing-svc: pull request in acme/infra https://github.com/acme/infra/pull/3"; parsed.Text != want {
		t.Errorf("text = %q, want %q", parsed.Text, want)
	}
	if receivedAuth != "Bearer hook-token" {
		t.Errorf("Authorization header = %q", receivedAuth)
	}
}

func TestWebhookNotifier_Filter(t *testing.T) {
	var got []EventType
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		got = append(got, ev.Type)
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header without a token")
		}
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, WithWebhookClient(server.Client()))
	for _, typ := range []EventType{
		EventRunStarted, EventAppStarted, EventAppCompleted, EventPRCreated,
		EventCommentPosted, EventCommentSkipped, EventRunFailed, EventRunCompleted,
	} {
		if err := n.Notify(context.Background(), NewEvent(typ, "run-1", "msg")); err != nil {
			t.Fatalf("Notify(%s): %v", typ, err)
		}
	}

	want := []EventType{EventPRCreated, EventRunFailed, EventRunCompleted}
	if len(got) != len(want) {
		t.Fatalf("posted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("posted[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWebhookNotifier_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "receiver down", http.StatusInternalServerError)
	}))
	defer server.Close()

	ev := NewEvent(EventRunFailed, "run-1", "boom")
	err := NewWebhookNotifier(server.URL).Notify(context.Background(), ev)
	if err == nil || !strings.Contains(err.Error(), "500: receiver down") {
		t.Errorf("Notify() error = %v, want status and body", err)
	}
	if err := NewWebhookNotifier("http://localhost:99999").Notify(context.Background(), ev); err == nil {
		t.Error("Notify() should return error for network failure")
	}
}

func TestJiraNotifier(t *testing.T) {
	var paths []string
	var comment struct {
		Body string `json:"body"`
	}
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		user, pass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&comment)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "10000", "body": "ok"}`))
	}))
	defer server.Close()

	n, err := NewJiraNotifier(server.URL, "bot@example.com", "api-token", nil)
	if err != nil {
		t.Fatalf("NewJiraNotifier: %v", err)
	}

	ctx := context.Background()
	event := Event{
		Type:     EventPRCreated,
		App:      "billing-svc",
		IssueRef: "OPS-12",
		Repo:     "acme/infra",
		URL:      "https://github.com/acme/infra/pull/3",
	}
	if err := n.Notify(ctx, event); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if len(paths) != 1 || paths[0] != "/rest/api/2/issue/OPS-12/comment" {
		t.Fatalf("paths = %v", paths)
	}
	if comment.Body != "Pull request for billing-svc in acme/infra: https://github.com/acme/infra/pull/3" {
		t.Errorf("comment = %q", comment.Body)
	}
	if user != "bot@example.com" || pass != "api-token" {
		t.Errorf("basic auth = %q/%q", user, pass)
	}

	// Placeholder references and other event types are ignored.
	ignored := []Event{
		{Type: EventPRCreated, IssueRef: "no-jira"},
		{Type: EventPRCreated, IssueRef: ""},
		{Type: EventAppCompleted, IssueRef: "OPS-12"},
	}
	for _, e := range ignored {
		if err := n.Notify(ctx, e); err != nil {
			t.Errorf("Notify(%+v) error = %v", e, err)
		}
	}
	if len(paths) != 1 {
		t.Errorf("ignored events reached Jira: %v", paths)
	}
}

func TestJiraNotifier_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	n, err := NewJiraNotifier(server.URL, "u", "p", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Notify(context.Background(), Event{Type: EventPRCreated, IssueRef: "OPS-1"}); err == nil {
		t.Error("expected error for missing issue")
	}
}

func TestMultiNotifier(t *testing.T) {
	var calls []string

	notifier1 := &mockNotifier{name: "n1", calls: &calls}
	notifier2 := &mockNotifier{name: "n2", calls: &calls}

	multi := NewMultiNotifier(nil, notifier1, notifier2)
	if err := multi.Notify(context.Background(), Event{Type: EventRunStarted}); err != nil {
		t.Errorf("MultiNotifier.Notify() error = %v", err)
	}

	if len(calls) != 2 || calls[0] != "n1" || calls[1] != "n2" {
		t.Errorf("Calls = %v, want [n1, n2]", calls)
	}
}

func TestMultiNotifier_ContinuesOnError(t *testing.T) {
	var calls []string
	failure := errors.New("jira down")

	core, logs := observer.New(zapcore.WarnLevel)
	multi := NewMultiNotifier(zap.New(core),
		&mockNotifier{name: "n1", calls: &calls, err: failure},
		&mockNotifier{name: "n2", calls: &calls},
	)

	err := multi.Notify(context.Background(), Event{Type: EventPRCreated})
	if !errors.Is(err, failure) {
		t.Errorf("error = %v, want last notifier error", err)
	}
	if len(calls) != 2 {
		t.Errorf("Call count = %d, want 2 (both notifiers called)", len(calls))
	}
	if logs.FilterMessage("notifier failed").Len() != 1 {
		t.Errorf("expected one warning, got %v", logs.All())
	}
}

type mockNotifier struct {
	name  string
	calls *[]string
	err   error
}

func (m *mockNotifier) Notify(ctx context.Context, event Event) error {
	*m.calls = append(*m.calls, m.name)
	return m.err
}
