// Package notifications reacts to domain events: document requests are
// mailed to the case contact and lifecycle events are recorded in the log.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/arbiter/internal/awards"
	"github.com/JaimeStill/arbiter/internal/classifications"
	"github.com/JaimeStill/arbiter/internal/requests"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/mail"
)

// Subscriber registers event handlers.
type Subscriber interface {
	Subscribe(eventType string, h events.Handler)
}

// Notifier turns domain events into mail and log records.
type Notifier struct {
	mail   mail.Sender
	logger *slog.Logger
}

// New creates a Notifier delivering through sender.
func New(sender mail.Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		mail:   sender,
		logger: logger.With("system", "notifications"),
	}
}

// Register subscribes the notifier to every event it handles.
func (n *Notifier) Register(s Subscriber) {
	s.Subscribe(requests.EventRequested, n.DocumentRequested)
	s.Subscribe(classifications.EventClassified, n.DocumentClassified)
	for _, t := range []string{
		awards.EventDrafted,
		awards.EventSubmitted,
		awards.EventReviewed,
		awards.EventFinalized,
	} {
		s.Subscribe(t, n.AwardChanged)
	}
}

// DocumentRequested mails the request to the case contact. Cases without a
// contact email are logged and skipped.
func (n *Notifier) DocumentRequested(ctx context.Context, e events.Event) error {
	var data requests.RequestedEvent
	if err := e.Decode(&data); err != nil {
		return err
	}

	if data.ContactEmail == "" {
		n.logger.WarnContext(ctx, "document request not mailed, case has no contact",
			"request_id", data.RequestID,
			"case_id", data.CaseID,
		)
		return nil
	}

	msg := mail.Message{
		To:      []string{data.ContactEmail},
		Subject: RequestSubject(data),
		Body:    RequestBody(data),
	}
	if err := n.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("mail document request %s: %w", data.RequestID, err)
	}

	n.logger.InfoContext(ctx, "document request mailed",
		"request_id", data.RequestID,
		"to", data.ContactEmail,
	)
	return nil
}

// DocumentClassified logs classifications that need human review.
func (n *Notifier) DocumentClassified(ctx context.Context, e events.Event) error {
	var data classifications.ClassifiedEvent
	if err := e.Decode(&data); err != nil {
		return err
	}

	if data.RequiresReview {
		n.logger.WarnContext(ctx, "document classification requires review",
			"document_id", data.DocumentID,
			"case_id", data.CaseID,
			"categories", data.Categories,
		)
	}
	return nil
}

// AwardChanged records an award lifecycle transition.
func (n *Notifier) AwardChanged(ctx context.Context, e events.Event) error {
	var data awards.AwardEvent
	if err := e.Decode(&data); err != nil {
		return err
	}

	n.logger.InfoContext(ctx, "award lifecycle",
		"event", e.Type,
		"award_id", data.AwardID,
		"case_id", data.CaseID,
		"version", data.Version,
		"status", data.Status,
		"actor", data.Actor,
	)
	return nil
}

// RequestSubject is the subject line of a document request mail.
func RequestSubject(data requests.RequestedEvent) string {
	return "Document Request - " + data.RequestID.String()
}

// RequestBody is the plain text body of a document request mail.
func RequestBody(data requests.RequestedEvent) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "A document has been requested in case %s.\n\n", data.CaseNumber)
	fmt.Fprintf(&sb, "Document type: %s\n", data.DocumentType)
	fmt.Fprintf(&sb, "Requested by: %s\n", data.RequestedBy)
	if data.DueDate != nil {
		fmt.Fprintf(&sb, "Due date: %s\n", data.DueDate.Format("2 January 2006"))
	}
	if data.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", data.Description)
	}
	fmt.Fprintf(&sb, "\nRequest reference: %s\n", data.RequestID)

	return sb.String()
}
