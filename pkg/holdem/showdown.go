package holdem

import (
	"fmt"
	"holdem-server/pkg/evaluator"
)

// Result is the outcome of a completed hand
type Result struct {
	// Winners are the seats holding the best hand among those that reached showdown
	Winners []string `json:"winners"`
	// Payouts is what every winning seat collected, across all pots
	Payouts map[string]int `json:"payouts"`
	// Hands names the best hand of each seat that reached showdown
	Hands       map[string]string `json:"hands,omitempty"`
	Total       int               `json:"total"`
	Uncontested bool              `json:"uncontested"`
}

func (r *Result) clone() *Result {
	cp := &Result{
		Winners:     append([]string{}, r.Winners...),
		Payouts:     make(map[string]int, len(r.Payouts)),
		Total:       r.Total,
		Uncontested: r.Uncontested,
	}

	for k, v := range r.Payouts {
		cp.Payouts[k] = v
	}

	if r.Hands != nil {
		cp.Hands = make(map[string]string, len(r.Hands))
		for k, v := range r.Hands {
			cp.Hands[k] = v
		}
	}

	return cp
}

// awardUncontested gives every chip in play to the last live seat
func (t *Table) awardUncontested() {
	var winner *Seat
	for _, s := range t.seats {
		if s.inHand() {
			winner = s
			break
		}
	}

	total := sumPots(t.pots)
	winner.Chips += total

	t.street = Showdown
	t.finishHand(&Result{
		Winners:     []string{winner.ID},
		Payouts:     map[string]int{winner.ID: total},
		Total:       total,
		Uncontested: true,
	})
}

// showdown evaluates every pot and pays it out
// Winners are determined for every pot before any chips move.
func (t *Table) showdown() error {
	hands := make(map[string]evaluator.Hand)
	participants := make([]*Seat, 0, len(t.seats))
	for _, s := range t.seats {
		if !s.inHand() {
			continue
		}

		hand, err := evaluator.NewHand(s.HoleCards, t.board)
		if err != nil {
			return fmt.Errorf("seat %s: %w", s.ID, err)
		}

		hands[s.ID] = hand
		participants = append(participants, s)
	}

	type award struct {
		seat   *Seat
		amount int
	}

	awards := make([]award, 0, len(participants))
	for i, pot := range t.pots {
		eligible := make([]*Seat, 0, len(pot.EligibleSeatIDs))
		potHands := make([]evaluator.Hand, 0, len(pot.EligibleSeatIDs))
		for _, s := range participants {
			if pot.IsEligible(s.ID) {
				eligible = append(eligible, s)
				potHands = append(potHands, hands[s.ID])
			}
		}

		if len(eligible) == 0 {
			return fmt.Errorf("pot %d has no eligible seats", i)
		}

		winners, err := t.evaluator.Winners(potHands)
		if err != nil {
			return fmt.Errorf("pot %d: %w", i, err)
		}

		if len(winners) == 0 {
			return fmt.Errorf("pot %d: evaluator returned no winners", i)
		}

		// the odd chip goes to the first winner in seat order
		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for j, w := range winners {
			amount := share
			if j == 0 {
				amount += remainder
			}

			awards = append(awards, award{seat: eligible[w], amount: amount})
		}
	}

	allHands := make([]evaluator.Hand, len(participants))
	for i, s := range participants {
		allHands[i] = hands[s.ID]
	}

	best, err := t.evaluator.Winners(allHands)
	if err != nil {
		return err
	}

	result := &Result{
		Winners: make([]string, 0, len(best)),
		Payouts: make(map[string]int),
		Hands:   make(map[string]string, len(participants)),
		Total:   sumPots(t.pots),
	}

	for _, i := range best {
		result.Winners = append(result.Winners, participants[i].ID)
	}

	for _, s := range participants {
		if name, err := t.evaluator.Describe(hands[s.ID]); err == nil {
			result.Hands[s.ID] = name
		}
	}

	for _, a := range awards {
		a.seat.Chips += a.amount
		result.Payouts[a.seat.ID] += a.amount
	}

	t.finishHand(result)
	return nil
}

func (t *Table) finishHand(result *Result) {
	for _, s := range t.seats {
		s.StreetBet = 0
		s.Committed = 0
	}

	t.pots = nil
	t.currentBet = 0
	t.minRaise = t.options.BigBlind
	t.acted = make(map[string]bool)
	t.currentToAct = ""
	t.status = StatusComplete
	t.result = result
}
