// Package finitestate tracks the lifecycle of a script engine registry.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

const (
	StatusUninitialized       = "Uninitialized"
	StatusFactoriesRegistered = "FactoriesRegistered"
	StatusInjectorsRegistered = "InjectorsRegistered"
	StatusReady               = "Ready"
)

// RegistryTransitions lists the only allowed path through the registry lifecycle. Every
// state only moves forward.
var RegistryTransitions = map[string][]string{
	StatusUninitialized:       {StatusFactoriesRegistered},
	StatusFactoriesRegistered: {StatusInjectorsRegistered},
	StatusInjectorsRegistered: {StatusReady},
	StatusReady:               {},
}

// Machine is the subset of the state machine used by the registry.
type Machine interface {
	// Transition attempts to move the machine to state.
	Transition(state string) error

	// TransitionIfCurrentState moves to newState only when the machine is in currentState.
	TransitionIfCurrentState(currentState, newState string) error

	// GetState returns the current state.
	GetState() string

	// GetStateChan returns a channel that emits the state whenever it changes.
	// The channel is closed when ctx is canceled.
	GetStateChan(ctx context.Context) <-chan string
}

// New creates a registry lifecycle machine in StatusUninitialized.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusUninitialized, RegistryTransitions)
	if err != nil {
		return nil, err
	}
	return machine, nil
}
