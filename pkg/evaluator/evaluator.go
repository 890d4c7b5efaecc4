// Package evaluator ranks seven-card poker hands.
package evaluator

import (
	"errors"
	"fmt"
	"holdem-server/pkg/deck"

	"github.com/paulhankin/poker"
)

// Rank is the strength of a hand. A larger rank is a stronger hand and equal ranks tie.
type Rank int16

// Hand is two hole cards plus five board cards
type Hand [7]deck.Card

// ErrNoHands is returned when Winners is called without any hands
var ErrNoHands = errors.New("no hands to evaluate")

// Evaluator is the hand-evaluation capability used at showdown
type Evaluator interface {
	// Rank returns a comparable rank for the best five-card hand within the seven cards
	Rank(hand Hand) (Rank, error)

	// Winners returns the indexes of every hand tied for the best rank, in ascending order
	Winners(hands []Hand) ([]int, error)

	// Describe returns a human readable name for the hand, i.e., "Two pair"
	Describe(hand Hand) (string, error)
}

// NewHand builds an evaluator input from the hole cards and a full board
func NewHand(hole []deck.Card, board []deck.Card) (Hand, error) {
	var h Hand
	if len(hole) != 2 || len(board) != 5 {
		return h, fmt.Errorf("a hand requires 2 hole cards and 5 board cards, got %d and %d", len(hole), len(board))
	}

	copy(h[:2], hole)
	copy(h[2:], board)
	return h, nil
}

// PaulHankin evaluates hands with github.com/paulhankin/poker
type PaulHankin struct{}

// New returns the default evaluator
func New() PaulHankin {
	return PaulHankin{}
}

// Rank implements Evaluator
func (p PaulHankin) Rank(hand Hand) (Rank, error) {
	cards, err := convert(hand)
	if err != nil {
		return 0, err
	}

	return Rank(poker.Eval7(&cards)), nil
}

// Winners implements Evaluator
func (p PaulHankin) Winners(hands []Hand) ([]int, error) {
	if len(hands) == 0 {
		return nil, ErrNoHands
	}

	var best Rank
	winners := make([]int, 0, 1)
	for i, hand := range hands {
		rank, err := p.Rank(hand)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i, err)
		}

		switch {
		case len(winners) == 0 || rank > best:
			best = rank
			winners = append(winners[:0], i)
		case rank == best:
			winners = append(winners, i)
		}
	}

	return winners, nil
}

// Describe implements Evaluator
func (p PaulHankin) Describe(hand Hand) (string, error) {
	cards, err := convert(hand)
	if err != nil {
		return "", err
	}

	return poker.Describe(cards[:])
}

func convert(hand Hand) ([7]poker.Card, error) {
	var cards [7]poker.Card
	for i, c := range hand {
		if !c.IsValid() {
			return cards, fmt.Errorf("invalid card at index %d: %d of %s", i, c.Rank, c.Suit)
		}

		rank := c.Rank
		if rank == deck.Ace {
			rank = 1
		}

		card, err := poker.MakeCard(suitOf(c.Suit), poker.Rank(rank))
		if err != nil {
			return cards, fmt.Errorf("invalid card at index %d: %w", i, err)
		}

		cards[i] = card
	}

	return cards, nil
}

func suitOf(s deck.Suit) poker.Suit {
	switch s {
	case deck.Clubs:
		return poker.Club
	case deck.Diamonds:
		return poker.Diamond
	case deck.Hearts:
		return poker.Heart
	}

	return poker.Spade
}
