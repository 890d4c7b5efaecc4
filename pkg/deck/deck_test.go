package deck

import (
	"errors"
	"holdem-server/internal/rng"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := assert.New(t)
	d := New(rng.NewSeeded(1))

	a.Equal(52, d.CardsLeft())
	a.Equal(Card{Rank: 2, Suit: Spades}, d.Cards[0])
	a.Equal(Card{Rank: Ace, Suit: Clubs}, d.Cards[51])

	seen := make(map[Card]bool)
	for _, card := range d.Cards {
		a.True(card.IsValid())
		a.False(seen[card], "duplicate %s", card)
		seen[card] = true
	}
}

func TestDeck_Shuffle(t *testing.T) {
	a := assert.New(t)

	d := New(rng.NewSeeded(1))
	canonical := d.HashCode()
	d.Shuffle()
	shuffled := d.HashCode()
	a.NotEqual(canonical, shuffled)
	a.Equal(52, d.CardsLeft())

	// same seed, same order
	d2 := New(rng.NewSeeded(1))
	d2.Shuffle()
	a.Equal(shuffled, d2.HashCode())

	// still every card exactly once
	seen := make(map[Card]bool)
	for _, card := range d.Cards {
		seen[card] = true
	}
	a.Len(seen, 52)

	d.Reset()
	a.Equal(canonical, d.HashCode())
}

func TestDeck_Deal(t *testing.T) {
	a := assert.New(t)
	d := New(nil)

	cards, err := d.Deal(2)
	a.NoError(err)
	a.Equal(MustCardsFromString("2s,3s"), cards)
	a.Equal(50, d.CardsLeft())

	cards, err = d.Deal(50)
	a.NoError(err)
	a.Len(cards, 50)
	a.Equal(0, d.CardsLeft())

	cards, err = d.Deal(1)
	a.Nil(cards)
	a.True(errors.Is(err, ErrInsufficientCards))
	a.EqualError(err, "insufficient cards left in the deck: wanted 1, have 0")

	_, err = d.Deal(-1)
	a.Error(err)

	d.Reset()
	a.Equal(52, d.CardsLeft())
}

func TestFromCards(t *testing.T) {
	a := assert.New(t)
	cards := MustCardsFromString("Ah,Kh")
	d := FromCards(nil, cards)
	cards[0] = Card{Rank: 2, Suit: Clubs}

	dealt, err := d.Deal(2)
	a.NoError(err)
	a.Equal(MustCardsFromString("Ah,Kh"), dealt)
	a.Equal([]Card{}, d.Remaining())
}
