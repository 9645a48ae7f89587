package notifications_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/arbiter/internal/awards"
	"github.com/JaimeStill/arbiter/internal/classifications"
	"github.com/JaimeStill/arbiter/internal/notifications"
	"github.com/JaimeStill/arbiter/internal/requests"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/mail"
)

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type subscriptions map[string]int

func (s subscriptions) Subscribe(eventType string, _ events.Handler) {
	s[eventType]++
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestEvent(t *testing.T, data requests.RequestedEvent) events.Event {
	t.Helper()
	e, err := events.New(requests.EventRequested, data)
	if err != nil {
		t.Fatalf("events.New: %v", err)
	}
	return e
}

func sampleRequest() requests.RequestedEvent {
	due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	return requests.RequestedEvent{
		RequestID:    uuid.MustParse("3f1d2c4b-5a69-4e7f-8a1b-2c3d4e5f6a7b"),
		CaseID:       uuid.New(),
		CaseNumber:   "ARB-2024-001",
		ContactEmail: "registry@example.com",
		RequestedBy:  "tribunal",
		DocumentType: "Statement of Defence",
		Description:  "Please file the statement of defence.",
		DueDate:      &due,
	}
}

func TestRegister(t *testing.T) {
	subs := subscriptions{}
	notifications.New(&recordingSender{}, discard()).Register(subs)

	for _, eventType := range []string{
		requests.EventRequested,
		classifications.EventClassified,
		awards.EventDrafted,
		awards.EventSubmitted,
		awards.EventReviewed,
		awards.EventFinalized,
	} {
		if subs[eventType] != 1 {
			t.Errorf("%s subscriptions = %d, want 1", eventType, subs[eventType])
		}
	}
}

func TestDocumentRequested(t *testing.T) {
	sender := &recordingSender{}
	n := notifications.New(sender, discard())

	if err := n.DocumentRequested(context.Background(), requestEvent(t, sampleRequest())); err != nil {
		t.Fatalf("DocumentRequested: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.Subject != "Document Request - 3f1d2c4b-5a69-4e7f-8a1b-2c3d4e5f6a7b" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "registry@example.com" {
		t.Errorf("to = %v", msg.To)
	}
	for _, want := range []string{
		"case ARB-2024-001",
		"Document type: Statement of Defence",
		"Due date: 1 July 2024",
		"Please file the statement of defence.",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestDocumentRequestedWithoutContact(t *testing.T) {
	sender := &recordingSender{}
	n := notifications.New(sender, discard())

	data := sampleRequest()
	data.ContactEmail = ""

	if err := n.DocumentRequested(context.Background(), requestEvent(t, data)); err != nil {
		t.Fatalf("DocumentRequested: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(sender.sent))
	}
}

func TestDocumentRequestedSendFailure(t *testing.T) {
	boom := errors.New("smtp unavailable")
	n := notifications.New(&recordingSender{err: boom}, discard())

	err := n.DocumentRequested(context.Background(), requestEvent(t, sampleRequest()))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped send error", err)
	}
}

func TestRequestBodyOptionalFields(t *testing.T) {
	data := sampleRequest()
	data.DueDate = nil
	data.Description = ""

	body := notifications.RequestBody(data)
	if strings.Contains(body, "Due date") {
		t.Errorf("body has due date:\n%s", body)
	}
	if !strings.HasSuffix(body, "Request reference: "+data.RequestID.String()+"\n") {
		t.Errorf("body = %q", body)
	}
}

func TestLifecycleEvents(t *testing.T) {
	n := notifications.New(&recordingSender{}, discard())

	award, _ := events.New(awards.EventFinalized, awards.AwardEvent{AwardID: uuid.New(), Status: awards.StatusFinal})
	if err := n.AwardChanged(context.Background(), award); err != nil {
		t.Errorf("AwardChanged: %v", err)
	}

	classified, _ := events.New(classifications.EventClassified, classifications.ClassifiedEvent{DocumentID: uuid.New(), RequiresReview: true})
	if err := n.DocumentClassified(context.Background(), classified); err != nil {
		t.Errorf("DocumentClassified: %v", err)
	}

	bad := events.Event{Type: awards.EventReviewed, Data: []byte(`{"award_id": 7}`)}
	if err := n.AwardChanged(context.Background(), bad); err == nil {
		t.Error("AwardChanged accepted malformed payload")
	}
}
