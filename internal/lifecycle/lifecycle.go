// Package lifecycle implements the order status machine: which
// transitions exist, which role may apply each one, and the racing
// rules a store must enforce around status writes.
package lifecycle

import (
	"errors"
	"fmt"

	"el-sabor/internal/models"
)

// Role identifies the actor requesting a transition
type Role string

const (
	RoleKitchen Role = "kitchen"
	RoleDriver  Role = "driver"
)

// ErrAlreadyTransitioned reports that the order is already in the
// requested state, typically because a concurrent or retried request
// applied the same transition first.
var ErrAlreadyTransitioned = errors.New("order already transitioned")

// InvalidTransitionError reports an attempt to move an order along an
// edge that does not exist in the transition graph.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// UnauthorizedRoleError reports a transition requested by a role that
// is not allowed to apply it.
type UnauthorizedRoleError struct {
	Role Role
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *UnauthorizedRoleError) Error() string {
	return fmt.Sprintf("role %s may not transition %s to %s", e.Role, e.From, e.To)
}

// transitions is the full edge set of the status graph. PENDING is the
// sole initial state; CANCELED, DELIVERED and COMPLETED are terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:        {models.StatusAccepted, models.StatusCanceled},
	models.StatusAccepted:       {models.StatusOutForDelivery, models.StatusReadyForPickup},
	models.StatusOutForDelivery: {models.StatusDelivered},
	models.StatusReadyForPickup: {models.StatusCompleted},
}

// transitionRoles maps each edge to the role allowed to apply it
var transitionRoles = map[models.OrderStatus]map[models.OrderStatus]Role{
	models.StatusPending: {
		models.StatusAccepted: RoleKitchen,
		models.StatusCanceled: RoleKitchen,
	},
	models.StatusAccepted: {
		models.StatusOutForDelivery: RoleKitchen,
		models.StatusReadyForPickup: RoleKitchen,
	},
	models.StatusOutForDelivery: {
		models.StatusDelivered: RoleDriver,
	},
	models.StatusReadyForPickup: {
		models.StatusCompleted: RoleDriver,
	},
}

// CanTransition reports whether the edge current -> next exists
func CanTransition(current, next models.OrderStatus) bool {
	for _, s := range transitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status
func IsTerminal(status models.OrderStatus) bool {
	return len(transitions[status]) == 0
}

// Check validates the edge current -> next without a role. A request
// for the state the order is already in reports ErrAlreadyTransitioned
// so a raced or retried caller can tell a no-op from a real conflict.
func Check(current, next models.OrderStatus) error {
	if current == next {
		return ErrAlreadyTransitioned
	}
	if !CanTransition(current, next) {
		return &InvalidTransitionError{From: current, To: next}
	}
	return nil
}

// Apply validates the edge current -> next for the given role
func Apply(role Role, current, next models.OrderStatus) error {
	if err := Check(current, next); err != nil {
		return err
	}
	if transitionRoles[current][next] != role {
		return &UnauthorizedRoleError{Role: role, From: current, To: next}
	}
	return nil
}
