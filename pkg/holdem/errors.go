package holdem

import (
	"errors"
	"fmt"
)

// ValidationError is a missing or malformed request field
type ValidationError string

func (v ValidationError) Error() string {
	return string(v)
}

// NotFoundError is an unknown table or seat
type NotFoundError string

func (n NotFoundError) Error() string {
	return string(n)
}

// TurnError happens when a seat acts while another seat is to act
type TurnError string

func (t TurnError) Error() string {
	return string(t)
}

// RuleViolation is an action the rules of the game do not permit
type RuleViolation string

func (r RuleViolation) Error() string {
	return string(r)
}

func newRuleViolation(format string, a ...interface{}) RuleViolation {
	return RuleViolation(fmt.Sprintf(format, a...))
}

// ErrInsufficientChips is an error when a seat is asked to bet more than its stack
// The engine clamps every bet to the stack, so this indicates a bug
var ErrInsufficientChips = errors.New("insufficient chips")

// rule violations
var (
	ErrInvalidPlayer    = RuleViolation("you have already folded this hand")
	ErrSeatAllIn        = RuleViolation("you are all-in and cannot act")
	ErrNoHandInProgress = RuleViolation("no hand is in progress")
	ErrHandInProgress   = RuleViolation("a hand is already in progress")
	ErrNotEnoughPlayers = RuleViolation("at least two seats with chips are required")
	ErrTableFull        = RuleViolation("the table is full")
)

// ErrNotYourTurn is returned when a seat acts out of turn
var ErrNotYourTurn = TurnError("it is not your turn")

// ErrorKind classifies an error for clients
type ErrorKind string

// ErrorKind constants
const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "notFound"
	KindTurn          ErrorKind = "turn"
	KindRuleViolation ErrorKind = "ruleViolation"
	KindInternal      ErrorKind = "internal"
)

// Kind returns the classification of err
func Kind(err error) ErrorKind {
	var ve ValidationError
	var nf NotFoundError
	var te TurnError
	var rv RuleViolation

	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &te):
		return KindTurn
	case errors.As(err, &rv):
		return KindRuleViolation
	}

	return KindInternal
}
