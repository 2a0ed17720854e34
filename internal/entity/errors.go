package entity

import "errors"

// Sentinel errors for the order/inventory core. Callers branch with
// errors.Is; repositories and services wrap these with context via
// fmt.Errorf("...: %w", ...). Store failures propagate as the driver's
// own errors.
var (
	// ErrValidation marks missing or invalid input: empty item lists,
	// non-positive quantities, unresolved references, missing actor.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an order, menu item, table or staff id that
	// does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInventory marks an inconsistent stock mutation, e.g. losing
	// the conditional-update race on every retry.
	ErrInventory = errors.New("inventory conflict")

	// ErrInvalidTransition marks a table occupancy transition outside
	// the allowed set.
	ErrInvalidTransition = errors.New("invalid table transition")
)
