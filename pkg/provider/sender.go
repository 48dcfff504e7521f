package provider

import (
	"context"

	"github.com/dialogs/dialog-gcm-queue/pkg/message"
)

// DefaultEndpoint of the legacy HTTP API.
const DefaultEndpoint = "https://gcm-http.googleapis.com/gcm/send"

// ISender transmits one validated message and reports the push server answer.
type ISender interface {
	Send(ctx context.Context, msg *message.Message) (*Response, error)
}

// Targets lists the recipients of msg in request order.
func Targets(msg *message.Message) []string {
	if to := msg.To(); to != "" {
		return []string{to}
	}

	return msg.RegistrationIDs()
}
