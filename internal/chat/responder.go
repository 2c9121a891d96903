package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medreport-assistant-server/internal/domain"
)

// Responder produces the assistant's reply for a case question. The lookup
// client never fails outward, so Respond always yields some reply text.
type Responder struct {
	store  *Store
	lookup domain.MedicalLookup
	logger *logrus.Logger
}

// NewResponder creates a chat responder.
func NewResponder(store *Store, lookup domain.MedicalLookup, logger *logrus.Logger) *Responder {
	return &Responder{
		store:  store,
		lookup: lookup,
		logger: logger,
	}
}

// Respond looks up the question, formats the assistant reply and, when a room
// ID is given, appends it to that room's history.
func (r *Responder) Respond(ctx context.Context, roomID, question string) (string, error) {
	info, err := r.lookup.Lookup(ctx, question)
	if err != nil {
		return "", fmt.Errorf("lookup failed: %w", err)
	}

	reply := FormatReply(info)

	if roomID != "" {
		if _, err := r.store.AddMessage(ctx, roomID, AssistantName, reply); err != nil {
			r.logger.WithError(err).WithField("room_id", roomID).Warn("failed to record assistant reply")
		}
	}
	return reply, nil
}

// FormatReply renders a lookup result as the sectioned assistant reply.
func FormatReply(info *domain.MedicalInfo) string {
	return fmt.Sprintf(
		"Disease/Query: %s\n\n"+
			"Description:\n%s\n\n"+
			"Recommendations / Symptoms:\n%s\n\n"+
			"Follow-up / Treatment:\n%s\n\n"+
			"Warnings:\n%s\n\n"+
			"References:\n%s",
		info.Query,
		info.Description,
		joinOr(info.Recommendations, "Not available"),
		joinOr(info.FollowUp, "Not available"),
		joinOr(info.Warnings, "None"),
		joinOr(info.References, "None"),
	)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "; ")
}
