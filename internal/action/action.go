// Package action executes server-side actions: operations invoked from
// UI forms rather than raw HTTP routes. An action definition bundles a
// name, a kind, an input schema, and a handler; the client validates
// input, resolves the actor scope, runs the handler, and reports every
// execution through a lifecycle callback.
package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/opsboard/opsboard/internal/session"
)

// Kind distinguishes read-only actions from mutations.
type Kind string

const (
	Query  Kind = "query"
	Mutate Kind = "mutate"
)

// ErrUnauthorized is returned when an action requires a session or tenant
// the request does not carry.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError reports input that failed schema validation. The
// handler never ran.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// Invocation is the per-execution value handed to an action handler.
type Invocation struct {
	Input any
	Scope *session.Scope
}

// Result is a successful action outcome: either a data payload or a
// redirect directive for the calling UI layer.
type Result struct {
	Data     any
	Redirect string
}

// Definition declares one action. Definitions are immutable after
// registration.
type Definition struct {
	Name    string
	Kind    Kind
	Input   func() any
	Handler func(ctx context.Context, inv *Invocation) (*Result, error)
}

// ExecutionEvent is emitted exactly once per action execution, with Err
// set on failure and unset on success, never both, never neither.
type ExecutionEvent struct {
	Action   string
	Kind     Kind
	UserID   string
	TenantID string
	Err      error
}

// Client validates, dispatches, and audits actions. Construct one at
// startup and register definitions before serving.
type Client struct {
	logger    *slog.Logger
	validate  *validator.Validate
	onExecute func(ExecutionEvent)
	actions   map[string]Definition
}

// Option configures a Client.
type Option func(*Client)

// WithOnExecute sets the lifecycle callback fired after every execution.
// Callback panics are contained and never mask the action result.
func WithOnExecute(fn func(ExecutionEvent)) Option {
	return func(c *Client) { c.onExecute = fn }
}

// New creates an action client.
func New(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		actions:  make(map[string]Definition),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Register adds an action definition. Duplicate names panic: the registry
// is assembled once at startup and a collision is a programming error.
func (c *Client) Register(def Definition) {
	if def.Name == "" {
		panic("action: definition has no name")
	}
	if def.Handler == nil {
		panic(fmt.Sprintf("action: %q has no handler", def.Name))
	}
	if _, exists := c.actions[def.Name]; exists {
		panic(fmt.Sprintf("action: duplicate name %q", def.Name))
	}

	c.actions[def.Name] = def
}

// Execute runs the named action against the scope attached to ctx. Input
// is validated before the handler runs; validation failures are reported
// as *ValidationError. Whatever the outcome, the OnExecute callback fires
// exactly once.
func (c *Client) Execute(ctx context.Context, name string, input any) (result *Result, err error) {
	def, ok := c.actions[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", name)
	}

	scope := session.FromContext(ctx)

	defer func() {
		c.emit(ctx, def, scope, err)
	}()

	if def.Input != nil {
		if input == nil {
			err = &ValidationError{Fields: map[string]string{"input": "is required"}}
			return nil, err
		}
		if verr := c.checkInput(input); verr != nil {
			err = verr
			return nil, err
		}
	}

	result, err = c.run(ctx, def, &Invocation{Input: input, Scope: scope})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &Result{}
	}

	return result, nil
}

// run invokes the handler, converting a panic into an error so the
// lifecycle callback still sees the execution as failed.
func (c *Client) run(ctx context.Context, def Definition, inv *Invocation) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("action handler panicked",
				slog.String("action", def.Name),
				slog.Any("panic", r),
			)
			result = nil
			err = fmt.Errorf("action %s: internal error", def.Name)
		}
	}()

	return def.Handler(ctx, inv)
}

func (c *Client) checkInput(input any) error {
	err := c.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"input": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}

	return &ValidationError{Fields: fields}
}

// emit fires the lifecycle callback and logs the execution. Runs exactly
// once per Execute call; a panicking callback must not mask the result.
func (c *Client) emit(ctx context.Context, def Definition, scope *session.Scope, err error) {
	event := ExecutionEvent{
		Action: def.Name,
		Kind:   def.Kind,
		Err:    err,
	}

	if claims := scope.Claims(); claims != nil {
		event.UserID = claims.Subject
		event.TenantID = claims.TenantID
	}

	if err != nil {
		c.logger.Error("action failed",
			slog.String("action", def.Name),
			slog.String("kind", string(def.Kind)),
			slog.String("user_id", event.UserID),
			slog.String("tenant_id", event.TenantID),
			slog.String("error", err.Error()),
		)
	} else {
		c.logger.Info("action executed",
			slog.String("action", def.Name),
			slog.String("kind", string(def.Kind)),
			slog.String("user_id", event.UserID),
			slog.String("tenant_id", event.TenantID),
		)
	}

	if c.onExecute == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("onExecute callback panicked",
				slog.String("action", def.Name),
				slog.Any("panic", r),
			)
		}
	}()

	c.onExecute(event)
}
