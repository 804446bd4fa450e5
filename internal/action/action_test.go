package action

import (
	"context"
	"errors"
	"testing"

	"github.com/opsboard/opsboard/internal/session"
)

type feedbackInput struct {
	Message string `validate:"required,min=3"`
	Email   string `validate:"omitempty,email"`
}

func TestClient_Execute_Success(t *testing.T) {
	var events []ExecutionEvent
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		events = append(events, e)
	}))

	handlerCalled := false
	c.Register(Definition{
		Name:  "send.feedback",
		Kind:  Mutate,
		Input: func() any { return &feedbackInput{} },
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			handlerCalled = true
			in := inv.Input.(*feedbackInput)
			return &Result{Data: map[string]string{"message": in.Message}}, nil
		},
	})

	result, err := c.Execute(context.Background(), "send.feedback", &feedbackInput{Message: "love it"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !handlerCalled {
		t.Error("handler was not invoked")
	}
	if result == nil || result.Data == nil {
		t.Errorf("result = %v", result)
	}

	if len(events) != 1 {
		t.Fatalf("onExecute fired %d times, want exactly 1", len(events))
	}
	if events[0].Err != nil {
		t.Errorf("event.Err = %v, want nil on success", events[0].Err)
	}
	if events[0].Action != "send.feedback" || events[0].Kind != Mutate {
		t.Errorf("event = %+v", events[0])
	}
}

func TestClient_Execute_ValidationBeforeHandler(t *testing.T) {
	var events []ExecutionEvent
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		events = append(events, e)
	}))

	handlerCalled := false
	c.Register(Definition{
		Name:  "send.feedback",
		Kind:  Mutate,
		Input: func() any { return &feedbackInput{} },
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			handlerCalled = true
			return &Result{}, nil
		},
	})

	_, err := c.Execute(context.Background(), "send.feedback", &feedbackInput{Email: "not-an-email"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if handlerCalled {
		t.Error("handler ran despite validation failure")
	}
	if _, ok := verr.Fields["message"]; !ok {
		t.Errorf("fields = %v, want message violation", verr.Fields)
	}

	if len(events) != 1 {
		t.Fatalf("onExecute fired %d times, want exactly 1", len(events))
	}
	if events[0].Err == nil {
		t.Error("event.Err = nil, want validation error reported")
	}
}

func TestClient_Execute_DomainErrorPropagates(t *testing.T) {
	var events []ExecutionEvent
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		events = append(events, e)
	}))

	domainErr := errors.New("invite is invalid")
	c.Register(Definition{
		Name: "app.invites.accept",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return nil, domainErr
		},
	})

	_, err := c.Execute(context.Background(), "app.invites.accept", nil)
	if !errors.Is(err, domainErr) {
		t.Errorf("error = %v, want domain error surfaced", err)
	}

	if len(events) != 1 {
		t.Fatalf("onExecute fired %d times, want exactly 1", len(events))
	}
	if !errors.Is(events[0].Err, domainErr) {
		t.Errorf("event.Err = %v, want domain error", events[0].Err)
	}
}

func TestClient_Execute_CallbackPanicDoesNotMaskResult(t *testing.T) {
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		panic("audit sink down")
	}))

	c.Register(Definition{
		Name: "app.ping",
		Kind: Query,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return &Result{Data: "pong"}, nil
		},
	})

	result, err := c.Execute(context.Background(), "app.ping", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v, callback panic must not leak", err)
	}
	if result.Data != "pong" {
		t.Errorf("result.Data = %v", result.Data)
	}
}

func TestClient_Execute_HandlerPanicReportsFailure(t *testing.T) {
	var events []ExecutionEvent
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		events = append(events, e)
	}))

	c.Register(Definition{
		Name: "app.crash",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			panic("nil map write")
		},
	})

	result, err := c.Execute(context.Background(), "app.crash", nil)
	if err == nil {
		t.Fatal("Execute() returned no error for a panicking handler")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}

	if len(events) != 1 {
		t.Fatalf("onExecute fired %d times, want 1", len(events))
	}
	if events[0].Err == nil {
		t.Error("event.Err unset for a failed execution")
	}
}

func TestClient_Execute_UnknownAction(t *testing.T) {
	c := New(nil)
	if _, err := c.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("Execute() accepted an unregistered action")
	}
}

func TestClient_Execute_ScopeIdentityInEvent(t *testing.T) {
	var events []ExecutionEvent
	c := New(nil, WithOnExecute(func(e ExecutionEvent) {
		events = append(events, e)
	}))

	c.Register(Definition{
		Name: "app.whoami",
		Kind: Query,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return &Result{}, nil
		},
	})

	claims := &session.Claims{Email: "ada@example.com", TenantID: "tenant-1"}
	claims.Subject = "user-1"
	ctx := session.WithScope(context.Background(), session.NewScope(claims, nil, nil))

	if _, err := c.Execute(ctx, "app.whoami", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if events[0].UserID != "user-1" || events[0].TenantID != "tenant-1" {
		t.Errorf("event identity = %+v, want ids from scope", events[0])
	}
}

func TestClient_Execute_RedirectResult(t *testing.T) {
	c := New(nil)
	c.Register(Definition{
		Name: "app.invites.accept",
		Kind: Mutate,
		Handler: func(ctx context.Context, inv *Invocation) (*Result, error) {
			return &Result{Redirect: "/app/acme"}, nil
		},
	})

	result, err := c.Execute(context.Background(), "app.invites.accept", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Redirect != "/app/acme" {
		t.Errorf("Redirect = %v, want /app/acme", result.Redirect)
	}
}
