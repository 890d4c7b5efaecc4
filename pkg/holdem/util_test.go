package holdem

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/evaluator"
	"testing"
)

// stackedGen never swaps during a shuffle, so hands are dealt from the
// canonical deck order: 2s 3s 4s ... As 2h ...
type stackedGen struct{}

func (stackedGen) Intn(n int) int {
	return n - 1
}

// fakeEvaluator ranks a hand by its first hole card
type fakeEvaluator struct {
	ranks map[deck.Card]evaluator.Rank
	calls int
}

func newFakeEvaluator(ranks map[string]evaluator.Rank) *fakeEvaluator {
	f := &fakeEvaluator{ranks: make(map[deck.Card]evaluator.Rank)}
	for code, rank := range ranks {
		card, err := deck.CardFromString(code)
		if err != nil {
			panic(err)
		}

		f.ranks[card] = rank
	}

	return f
}

func (f *fakeEvaluator) Rank(hand evaluator.Hand) (evaluator.Rank, error) {
	f.calls++
	return f.ranks[hand[0]], nil
}

func (f *fakeEvaluator) Winners(hands []evaluator.Hand) ([]int, error) {
	f.calls++
	if len(hands) == 0 {
		return nil, evaluator.ErrNoHands
	}

	var best evaluator.Rank
	winners := make([]int, 0, 1)
	for i, hand := range hands {
		rank := f.ranks[hand[0]]
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

func (f *fakeEvaluator) Describe(hand evaluator.Hand) (string, error) {
	return fmt.Sprintf("rank %d", f.ranks[hand[0]]), nil
}

// setupTable seats s1..sN (identities p1..pN) with the given stacks
func setupTable(opts Options, ev evaluator.Evaluator, stacks ...int) *Table {
	table, err := NewTable("table-1", opts, ev, stackedGen{})
	if err != nil {
		panic(err)
	}

	for i, chips := range stacks {
		if _, err := table.AddSeat(fmt.Sprintf("s%d", i+1), fmt.Sprintf("p%d", i+1), fmt.Sprintf("Player %d", i+1), ""); err != nil {
			panic(err)
		}

		table.seats[i].Chips = chips
	}

	return table
}

func assertAct(t *testing.T, table *Table, seatID string, action Action, amount int, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, seatID, table.CurrentToAct(), msgAndArgs...)
	assert.NoError(t, table.Act(seatID, action, amount), msgAndArgs...)
}

// chipsInPlay is every chip at the table, in stacks or in the pots
func chipsInPlay(table *Table) int {
	total := sumPots(table.pots)
	for _, s := range table.seats {
		total += s.Chips
	}

	return total
}

func assertUniqueCards(t *testing.T, table *Table) {
	t.Helper()

	seen := make(map[deck.Card]bool)
	all := append([]deck.Card{}, table.board...)
	all = append(all, table.deck.Remaining()...)
	for _, s := range table.seats {
		all = append(all, s.HoleCards...)
	}

	for _, c := range all {
		assert.False(t, seen[c], "%s dealt twice", c)
		seen[c] = true
	}

	assert.Equal(t, 52, len(seen))
}

func seatChips(table *Table) []int {
	chips := make([]int, len(table.seats))
	for i, s := range table.seats {
		chips[i] = s.Chips
	}

	return chips
}
