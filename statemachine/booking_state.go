package statemachine

import (
	"errors"

	"restaurant-booking-api/models"
)

// Actor identifies who is attempting a transition
const (
	ActorUser    = "user"
	ActorManager = "manager"
	ActorAdmin   = "admin"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.BookingStatus
	To    models.BookingStatus
	Actor string
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Manager confirms a pending booking
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorManager},
	// User or Manager can cancel a pending booking
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorUser},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorManager},
	// User or Manager can cancel a confirmed booking (while unpaid)
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorUser},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorManager},
	// Manager completes a confirmed booking after the visit
	{From: models.StatusConfirmed, To: models.StatusCompleted, Actor: ActorManager},
}

type transitionKey struct {
	From  models.BookingStatus
	To    models.BookingStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.BookingStatus) []models.BookingStatus {
	var nexts []models.BookingStatus
	seen := map[models.BookingStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another.
// Admins bypass actor scoping but still need a transition that exists for
// some actor, so terminal states stay terminal.
func CanTransition(from, to models.BookingStatus, actor string) error {
	if actor == ActorAdmin {
		for _, t := range validTransitions {
			if t.From == from && t.To == to {
				return nil
			}
		}
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

// CanPay reports whether payment is legal for the booking's current state.
// Payment is only reachable from a confirmed booking and happens once.
func CanPay(b *models.Booking) error {
	if b.IsPaid {
		return errors.New("booking is already paid")
	}
	if b.Status != models.StatusConfirmed {
		return errors.New("booking must be confirmed before payment, current status: " + string(b.Status))
	}
	return nil
}

// CanCancel reports whether cancellation is legal for the booking's current
// state. Cancellation is only permitted while unpaid.
func CanCancel(b *models.Booking) error {
	if b.IsPaid {
		return errors.New("paid bookings cannot be cancelled")
	}
	if b.Status != models.StatusPending && b.Status != models.StatusConfirmed {
		return errors.New("cannot cancel a booking in status: " + string(b.Status))
	}
	return nil
}

func describeValidFrom(status models.BookingStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
