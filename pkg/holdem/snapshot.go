package holdem

import (
	"fmt"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/evaluator"
)

// Snapshot is the durable form of a table
// It carries the undealt deck so a hand can resume exactly where it stopped.
type Snapshot struct {
	TableID            string      `json:"tableId"`
	Options            Options     `json:"options"`
	Status             Status      `json:"status"`
	HandNumber         int         `json:"handNumber"`
	Street             Street      `json:"street"`
	ButtonIndex        int         `json:"buttonIndex"`
	Seats              []Seat      `json:"seats"`
	Board              []deck.Card `json:"board"`
	Deck               []deck.Card `json:"deck"`
	Pot                int         `json:"pot"`
	SidePots           []SidePot   `json:"sidePots"`
	CurrentBet         int         `json:"currentBet"`
	MinRaise           int         `json:"minRaise"`
	ActedSeatIDs       []string    `json:"actedSeatIds"`
	CurrentToActSeatID string      `json:"currentToActSeatId"`
	Result             *Result     `json:"result,omitempty"`
}

// Snapshot returns a deep copy of the table state
func (t *Table) Snapshot() *Snapshot {
	s := &Snapshot{
		TableID:            t.id,
		Options:            t.options,
		Status:             t.status,
		HandNumber:         t.handNumber,
		Street:             t.street,
		ButtonIndex:        t.buttonIndex,
		Seats:              t.Seats(),
		Board:              t.Board(),
		Deck:               t.deck.Remaining(),
		Pot:                t.Pot(),
		SidePots:           t.SidePots(),
		CurrentBet:         t.currentBet,
		MinRaise:           t.minRaise,
		ActedSeatIDs:       make([]string, 0, len(t.acted)),
		CurrentToActSeatID: t.currentToAct,
		Result:             t.Result(),
	}

	// seat order keeps the output stable
	for _, seat := range t.seats {
		if t.acted[seat.ID] {
			s.ActedSeatIDs = append(s.ActedSeatIDs, seat.ID)
		}
	}

	return s
}

// Rehydrate rebuilds a table from a snapshot
func Rehydrate(s *Snapshot, ev evaluator.Evaluator, gen rng.Generator) (*Table, error) {
	if s == nil {
		return nil, ValidationError("snapshot is required")
	}

	t, err := NewTable(s.TableID, s.Options, ev, gen)
	if err != nil {
		return nil, err
	}

	if !s.Status.IsValid() {
		return nil, fmt.Errorf("snapshot %s: unknown status %q", s.TableID, s.Status)
	}

	if s.Street < Preflop || s.Street > Showdown {
		return nil, fmt.Errorf("snapshot %s: unknown street %d", s.TableID, s.Street)
	}

	if len(s.Seats) > s.Options.MaxSeats {
		return nil, fmt.Errorf("snapshot %s: %d seats exceeds the maximum of %d", s.TableID, len(s.Seats), s.Options.MaxSeats)
	}

	if len(s.Seats) > 0 && (s.ButtonIndex < 0 || s.ButtonIndex >= len(s.Seats)) {
		return nil, fmt.Errorf("snapshot %s: button index %d out of range", s.TableID, s.ButtonIndex)
	}

	seen := make(map[deck.Card]bool)
	checkCards := func(cards []deck.Card) error {
		for _, c := range cards {
			if !c.IsValid() {
				return fmt.Errorf("snapshot %s: invalid card %d of %s", s.TableID, c.Rank, c.Suit)
			}

			if seen[c] {
				return fmt.Errorf("snapshot %s: card %s appears more than once", s.TableID, c.Code())
			}

			seen[c] = true
		}

		return nil
	}

	ids := make(map[string]bool)
	for i, seat := range s.Seats {
		if seat.ID == "" || ids[seat.ID] {
			return nil, fmt.Errorf("snapshot %s: seat %d has a missing or duplicate id", s.TableID, i)
		}

		if seat.Chips < 0 || seat.StreetBet < 0 || seat.Committed < seat.StreetBet {
			return nil, fmt.Errorf("snapshot %s: seat %s has inconsistent chips", s.TableID, seat.ID)
		}

		if len(seat.HoleCards) != 0 && len(seat.HoleCards) != 2 {
			return nil, fmt.Errorf("snapshot %s: seat %s has %d hole cards", s.TableID, seat.ID, len(seat.HoleCards))
		}

		if err := checkCards(seat.HoleCards); err != nil {
			return nil, err
		}

		ids[seat.ID] = true
		cp := seat
		cp.SeatIndex = i
		t.seats = append(t.seats, cp.clone())
	}

	if err := checkCards(s.Board); err != nil {
		return nil, err
	}

	if err := checkCards(s.Deck); err != nil {
		return nil, err
	}

	if s.Status == StatusPlaying && len(s.Board) != s.Street.boardSize() {
		return nil, fmt.Errorf("snapshot %s: %s has %d board cards", s.TableID, s.Street, len(s.Board))
	}

	t.status = s.Status
	t.handNumber = s.HandNumber
	t.street = s.Street
	t.buttonIndex = s.ButtonIndex
	t.board = append(make([]deck.Card, 0, 5), s.Board...)
	t.deck = deck.FromCards(t.rng, s.Deck)
	t.currentBet = s.CurrentBet
	t.minRaise = s.MinRaise
	t.currentToAct = s.CurrentToActSeatID
	if s.Result != nil {
		t.result = s.Result.clone()
	}

	for _, id := range s.ActedSeatIDs {
		if !ids[id] {
			return nil, fmt.Errorf("snapshot %s: acted seat %s not found", s.TableID, id)
		}

		t.acted[id] = true
	}

	if t.currentToAct != "" && !ids[t.currentToAct] {
		return nil, fmt.Errorf("snapshot %s: seat to act %s not found", s.TableID, t.currentToAct)
	}

	t.pots = buildPots(t.seats)
	if t.Pot() != s.Pot || sumPots(t.pots) != s.Pot+sumPots(s.SidePots) {
		return nil, fmt.Errorf("snapshot %s: pots do not match the seat commitments", s.TableID)
	}

	return t, nil
}
