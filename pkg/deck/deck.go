package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"
	"fmt"
	"holdem-server/internal/rng"
)

// ErrInsufficientCards is an error when more cards are requested than remain in the deck
var ErrInsufficientCards = errors.New("insufficient cards left in the deck")

// Deck is an ordered set of the 52 distinct cards
type Deck struct {
	Cards []Card `json:"cards"`
	rng   rng.Generator
}

// New returns a new deck in canonical order.
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New(gen rng.Generator) *Deck {
	if gen == nil {
		gen = rng.Crypto{}
	}

	d := &Deck{rng: gen}
	d.Reset()
	return d
}

// FromCards returns a deck that will deal the provided cards in order
func FromCards(gen rng.Generator, cards []Card) *Deck {
	d := New(gen)
	d.Cards = append(make([]Card, 0, len(cards)), cards...)
	return d
}

// Reset rebuilds all 52 cards in canonical order
func (d *Deck) Reset() {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := 2; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}

	d.Cards = cards
}

// Shuffle performs a Fisher-Yates shuffle of the remaining cards
func (d *Deck) Shuffle() {
	for j := len(d.Cards) - 1; j > 0; j-- {
		i := d.rng.Intn(j + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Deal removes and returns the first n cards
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot deal %d cards", n)
	}

	if n > len(d.Cards) {
		return nil, fmt.Errorf("%w: wanted %d, have %d", ErrInsufficientCards, n, len(d.Cards))
	}

	cards := make([]Card, n)
	copy(cards, d.Cards[:n])
	d.Cards = d.Cards[n:]

	return cards, nil
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}

// Remaining returns a copy of the cards left in dealing order
func (d *Deck) Remaining() []Card {
	return append(make([]Card, 0, len(d.Cards)), d.Cards...)
}

// HashCode returns a SHA1 hash code of the deck order
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.Code()))
	}

	return hex.EncodeToString(hash.Sum(nil))
}
