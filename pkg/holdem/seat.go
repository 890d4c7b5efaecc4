package holdem

import (
	"fmt"
	"holdem-server/pkg/deck"
)

// Seat is one player's place at the table
// Seats are only mutated by the Table
type Seat struct {
	ID          string      `json:"id"`
	Identity    string      `json:"identity"`
	DisplayName string      `json:"displayName"`
	Chips       int         `json:"chips"`
	HoleCards   []deck.Card `json:"holeCards"`
	// StreetBet is what the seat has put in on the current street
	StreetBet int `json:"streetBet"`
	// Committed is what the seat has put in over the whole hand
	Committed int    `json:"committed"`
	Folded    bool   `json:"folded"`
	AllIn     bool   `json:"allIn"`
	SeatIndex int    `json:"seatIndex"`
	Policy    string `json:"policy,omitempty"`
}

// Bet moves amount from the stack into play
func (s *Seat) Bet(amount int) error {
	if amount < 0 || amount > s.Chips {
		return fmt.Errorf("%w: seat %s cannot bet %d with %d", ErrInsufficientChips, s.ID, amount, s.Chips)
	}

	s.Chips -= amount
	s.StreetBet += amount
	s.Committed += amount
	if s.Chips == 0 && amount > 0 {
		s.AllIn = true
	}

	return nil
}

// Fold folds the seat for the rest of the hand
func (s *Seat) Fold() {
	s.Folded = true
}

// HasPolicy returns true if decisions for the seat are made by an AI policy
func (s *Seat) HasPolicy() bool {
	return s.Policy != ""
}

// inHand returns true if the seat was dealt in and has not folded
func (s *Seat) inHand() bool {
	return !s.Folded && len(s.HoleCards) == 2
}

// canAct returns true if the seat can still check, call, bet, raise, or fold
func (s *Seat) canAct() bool {
	return s.inHand() && !s.AllIn
}

func (s *Seat) resetHand() {
	s.HoleCards = nil
	s.StreetBet = 0
	s.Committed = 0
	s.Folded = false
	s.AllIn = false
}

func (s *Seat) clone() *Seat {
	cp := *s
	if s.HoleCards != nil {
		cp.HoleCards = append([]deck.Card{}, s.HoleCards...)
	}

	return &cp
}
