package holdem

import "sort"

// SidePot is a slice of the chips in play that only some seats can win
type SidePot struct {
	Amount          int      `json:"amount"`
	EligibleSeatIDs []string `json:"eligibleSeatIds"`
}

// IsEligible returns true if the seat can win the pot
func (p SidePot) IsEligible(seatID string) bool {
	for _, id := range p.EligibleSeatIDs {
		if id == seatID {
			return true
		}
	}

	return false
}

// buildPots layers the hand's commitments into a main pot followed by side pots
//
// A layer is cut at every distinct all-in level of a live seat. Every seat,
// folded or not, feeds each layer up to that level, but only live seats that
// reached into the layer may win it. A layer nobody live reached is folded
// into the layer below it.
func buildPots(seats []*Seat) []SidePot {
	maxCommitted := 0
	seen := make(map[int]bool)
	levels := make([]int, 0)
	for _, s := range seats {
		if s.Committed > maxCommitted {
			maxCommitted = s.Committed
		}

		if s.AllIn && !s.Folded && s.Committed > 0 && !seen[s.Committed] {
			seen[s.Committed] = true
			levels = append(levels, s.Committed)
		}
	}

	if maxCommitted == 0 {
		return nil
	}

	sort.Ints(levels)
	if len(levels) == 0 || levels[len(levels)-1] < maxCommitted {
		levels = append(levels, maxCommitted)
	}

	pots := make([]SidePot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		pot := SidePot{EligibleSeatIDs: make([]string, 0)}
		for _, s := range seats {
			if s.Committed <= prev {
				continue
			}

			pot.Amount += minInt(s.Committed, level) - prev
			if !s.Folded {
				pot.EligibleSeatIDs = append(pot.EligibleSeatIDs, s.ID)
			}
		}

		prev = level
		if pot.Amount == 0 {
			continue
		}

		if len(pot.EligibleSeatIDs) == 0 {
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += pot.Amount
				continue
			}

			pot.EligibleSeatIDs = liveSeatIDs(seats)
		}

		pots = append(pots, pot)
	}

	return pots
}

func liveSeatIDs(seats []*Seat) []string {
	ids := make([]string, 0, len(seats))
	for _, s := range seats {
		if s.inHand() {
			ids = append(ids, s.ID)
		}
	}

	return ids
}

func sumPots(pots []SidePot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}

	return total
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
