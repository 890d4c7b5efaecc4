package policy

import (
	"context"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
)

// RuleName is the name of the built-in policy
const RuleName = "rule"

// Rule raises most of the time with a pair or two face cards, and otherwise
// mixes folds, calls, and raises at random
type Rule struct {
	rng rng.Generator
}

// NewRule returns the built-in policy
func NewRule(gen rng.Generator) *Rule {
	if gen == nil {
		gen = rng.Crypto{}
	}

	return &Rule{rng: gen}
}

// Name implements Policy
func (r *Rule) Name() string {
	return RuleName
}

// Decide implements Policy
func (r *Rule) Decide(ctx context.Context, view holdem.View) (Decision, error) {
	seat, ok := ownSeat(view)
	if !ok || len(seat.Hand) != 2 {
		return Decision{Action: holdem.Fold}, nil
	}

	roll := r.rng.Intn(100)
	if isStrong(seat.Hand) {
		if roll < 70 {
			return raise(view), nil
		}

		return Decision{Action: holdem.Call}, nil
	}

	switch {
	case roll < 20:
		if view.ToCall == 0 {
			return Decision{Action: holdem.Check}, nil
		}

		return Decision{Action: holdem.Fold}, nil
	case roll < 70:
		return Decision{Action: holdem.Call}, nil
	}

	return raise(view), nil
}

func raise(view holdem.View) Decision {
	return Decision{Action: holdem.Raise, Amount: view.MinRaiseTo}
}

// isStrong is a pocket pair or two of J, Q, K, A
func isStrong(hand []deck.Card) bool {
	if hand[0].Rank == hand[1].Rank {
		return true
	}

	return hand[0].Rank >= deck.Jack && hand[1].Rank >= deck.Jack
}
