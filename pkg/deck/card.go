package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Spades   Suit = "spades"
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
)

// Suits is the canonical suit order used when a deck is rebuilt
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// face cards
const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14
)

// Card is an individual playing card. Cards are values and never mutated.
type Card struct {
	Rank int
	Suit Suit
}

// IsValid returns true if the rank and suit describe one of the 52 cards
func (c Card) IsValid() bool {
	if c.Rank < 2 || c.Rank > Ace {
		return false
	}

	switch c.Suit {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}

	return false
}

func rankString(rank int) string {
	switch rank {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}

	return strconv.Itoa(rank)
}

// String returns the display form, i.e., A♠
func (c Card) String() string {
	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♦"
	case Hearts:
		suit = "♥"
	case Spades:
		suit = "♠"
	default:
		suit = "?"
	}

	return rankString(c.Rank) + suit
}

// Code returns the wire form <rank><suitChar>, i.e., As or 10h
func (c Card) Code() string {
	var suit string
	switch c.Suit {
	case Clubs:
		suit = "c"
	case Diamonds:
		suit = "d"
	case Hearts:
		suit = "h"
	case Spades:
		suit = "s"
	default:
		suit = "?"
	}

	return rankString(c.Rank) + suit
}

// MarshalText encodes the card as its wire code
func (c Card) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid card: %d of %s", c.Rank, c.Suit)
	}

	return []byte(c.Code()), nil
}

// UnmarshalText decodes a wire code
func (c *Card) UnmarshalText(b []byte) error {
	card, err := CardFromString(string(b))
	if err != nil {
		return err
	}

	*c = card
	return nil
}

var cardRx = regexp.MustCompile(`(?i)^(10|[2-9JQKA])([cdhs])\z`)

// CardFromString parses a card in the format of <rank><suit>, i.e., As, 10h, 7c
func CardFromString(s string) (Card, error) {
	match := cardRx.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return Card{}, fmt.Errorf("could not parse card: %q", s)
	}

	var rank int
	switch strings.ToUpper(match[1]) {
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		rank, _ = strconv.Atoi(match[1])
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MustCardsFromString parses a comma separated list of cards and panics on failure
// This is intended for tests
func MustCardsFromString(s string) []Card {
	if s == "" {
		return []Card{}
	}

	parts := strings.Split(s, ",")
	cards := make([]Card, len(parts))
	for i, part := range parts {
		card, err := CardFromString(part)
		if err != nil {
			panic(err)
		}

		cards[i] = card
	}

	return cards
}

// Codes converts cards into their wire codes
func Codes(cards []Card) []string {
	codes := make([]string, len(cards))
	for i, card := range cards {
		codes[i] = card.Code()
	}

	return codes
}
