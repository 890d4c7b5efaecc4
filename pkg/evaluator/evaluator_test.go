package evaluator

import (
	"holdem-server/pkg/deck"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hand(t *testing.T, hole, board string) Hand {
	t.Helper()

	h, err := NewHand(deck.MustCardsFromString(hole), deck.MustCardsFromString(board))
	require.NoError(t, err)
	return h
}

func TestNewHand(t *testing.T) {
	_, err := NewHand(deck.MustCardsFromString("As"), deck.MustCardsFromString("2c,3c,4c,5c,6c"))
	assert.EqualError(t, err, "a hand requires 2 hole cards and 5 board cards, got 1 and 5")
}

func TestPaulHankin_Rank(t *testing.T) {
	a := assert.New(t)
	e := New()
	board := "2c,7c,9h,Js,Kc"

	rankOf := func(hole string) Rank {
		t.Helper()
		r, err := e.Rank(hand(t, hole, board))
		a.NoError(err)
		return r
	}

	highCard := rankOf("3d,4h")
	pair := rankOf("2d,4h")
	twoPair := rankOf("2d,7h")
	trips := rankOf("2d,2h")
	straight := rankOf("10d,Qh")
	flush := rankOf("3c,5c")

	a.Less(int(highCard), int(pair))
	a.Less(int(pair), int(twoPair))
	a.Less(int(twoPair), int(trips))
	a.Less(int(trips), int(straight))
	a.Less(int(straight), int(flush))

	// aces are high
	a.Less(int(rankOf("Qd,3h")), int(rankOf("Ad,3h")))

	_, err := e.Rank(Hand{})
	a.Error(err)
}

func TestPaulHankin_Winners(t *testing.T) {
	a := assert.New(t)
	e := New()
	board := "2c,7d,9h,Js,Kc"

	winners, err := e.Winners([]Hand{
		hand(t, "3d,4h", board),
		hand(t, "Kd,Kh", board),
		hand(t, "Ah,Qd", board),
	})
	a.NoError(err)
	a.Equal([]int{1}, winners)

	// both play the board
	winners, err = e.Winners([]Hand{
		hand(t, "3d,4h", "10c,Jd,Qh,Ks,Ac"),
		hand(t, "3h,4d", "10c,Jd,Qh,Ks,Ac"),
	})
	a.NoError(err)
	a.Equal([]int{0, 1}, winners)

	_, err = e.Winners(nil)
	a.Equal(ErrNoHands, err)
}

func TestPaulHankin_Describe(t *testing.T) {
	desc, err := New().Describe(hand(t, "Kd,Kh", "2c,7d,9h,Js,Kc"))
	assert.NoError(t, err)
	assert.NotEmpty(t, desc)
}
