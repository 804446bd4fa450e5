// Package feedback forwards user feedback to the internal
// event-notification endpoint.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opsboard/opsboard/internal/action"
)

// Event is the payload posted to the notification endpoint.
type Event struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Email   string            `json:"email,omitempty"`
	UserID  string            `json:"userId,omitempty"`
	UTM     map[string]string `json:"utm,omitempty"`
}

// NotifierOption configures the notifier.
type NotifierOption func(*Notifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) NotifierOption {
	return func(n *Notifier) {
		n.httpClient = httpClient
	}
}

// Notifier posts events to the configured endpoint with bearer auth.
type Notifier struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewNotifier creates a notifier for the event endpoint.
func NewNotifier(endpoint, token string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		endpoint:   endpoint,
		token:      token,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send posts one event. Endpoint failures surface as integration errors.
func (n *Notifier) Send(ctx context.Context, event *Event) error {
	if n.endpoint == "" {
		return fmt.Errorf("notification endpoint not configured")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification endpoint error (status %d): %s", resp.StatusCode, string(msg))
	}

	return nil
}

// Input is the payload for the send.feedback action.
type Input struct {
	Message string            `json:"message" validate:"required,min=3,max=4000"`
	Email   string            `json:"email" validate:"omitempty,email"`
	UTM     map[string]string `json:"utm" validate:"omitempty"`
}

// RegisterActions wires the send.feedback action into the client.
func RegisterActions(client *action.Client, notifier *Notifier) {
	client.Register(action.Definition{
		Name:  "send.feedback",
		Kind:  action.Mutate,
		Input: func() any { return &Input{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			in := inv.Input.(*Input)

			event := &Event{
				Kind:    "feedback",
				Message: in.Message,
				Email:   in.Email,
				UTM:     in.UTM,
			}
			if claims := inv.Scope.Claims(); claims != nil {
				event.UserID = claims.Subject
				if event.Email == "" {
					event.Email = claims.Email
				}
			}

			if err := notifier.Send(ctx, event); err != nil {
				return nil, err
			}

			return &action.Result{Data: map[string]bool{"sent": true}}, nil
		},
	})
}
