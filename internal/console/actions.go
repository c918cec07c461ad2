package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActionType names a user action emitted by rendered markup.
type ActionType string

const (
	ActionOpenAdd       ActionType = "open-add"
	ActionEdit          ActionType = "edit"
	ActionDelete        ActionType = "delete"
	ActionConfirmDelete ActionType = "confirm-delete"
	ActionCancelDelete  ActionType = "cancel-delete"
	ActionCloseModal    ActionType = "close-modal"
	ActionLogout        ActionType = "logout"
	ActionToggleAuth    ActionType = "toggle-auth"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingID     = errors.New("action requires a product id")
)

// Action is one dispatched user action. ID is set for entity actions.
type Action struct {
	Type ActionType
	ID   *int
}

// ParseAction builds an Action from the submitted action and id fields.
func ParseAction(actionType, id string) (Action, error) {
	action := Action{Type: ActionType(strings.TrimSpace(actionType))}
	if id = strings.TrimSpace(id); id != "" {
		n, err := strconv.Atoi(id)
		if err != nil {
			return Action{}, fmt.Errorf("invalid id %q: %w", id, err)
		}
		action.ID = &n
	}
	return action, nil
}

// ActionHandler runs an action. id is nil for actions without an entity.
type ActionHandler func(ctx context.Context, id *int) error

// Registry maps action types to their handlers.
type Registry struct {
	handlers map[ActionType]ActionHandler
	needsID  map[ActionType]bool
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[ActionType]ActionHandler),
		needsID:  make(map[ActionType]bool),
	}
}

// Register adds a handler for actions without an entity id.
func (r *Registry) Register(t ActionType, h ActionHandler) {
	r.handlers[t] = h
	delete(r.needsID, t)
}

// RegisterEntity adds a handler whose action must carry an id.
func (r *Registry) RegisterEntity(t ActionType, h func(ctx context.Context, id int) error) {
	r.handlers[t] = func(ctx context.Context, id *int) error {
		return h(ctx, *id)
	}
	r.needsID[t] = true
}

// Dispatch runs the handler registered for a.Type.
func (r *Registry) Dispatch(ctx context.Context, a Action) error {
	h, ok := r.handlers[a.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	if r.needsID[a.Type] && a.ID == nil {
		return fmt.Errorf("%s: %w", a.Type, ErrMissingID)
	}
	return h(ctx, a.ID)
}
