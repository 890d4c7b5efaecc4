package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, 11, Jack)
	assert.Equal(t, 12, Queen)
	assert.Equal(t, 13, King)
	assert.Equal(t, 14, Ace)
}

func TestCard_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("2♥", Card{Rank: 2, Suit: Hearts}.String())
	a.Equal("J♣", Card{Rank: Jack, Suit: Clubs}.String())
	a.Equal("Q♦", Card{Rank: Queen, Suit: Diamonds}.String())
	a.Equal("K♠", Card{Rank: King, Suit: Spades}.String())
	a.Equal("A♠", Card{Rank: Ace, Suit: Spades}.String())
}

func TestCard_Code(t *testing.T) {
	a := assert.New(t)
	a.Equal("As", Card{Rank: Ace, Suit: Spades}.Code())
	a.Equal("10h", Card{Rank: 10, Suit: Hearts}.Code())
	a.Equal("7c", Card{Rank: 7, Suit: Clubs}.Code())
	a.Equal("Qd", Card{Rank: Queen, Suit: Diamonds}.Code())
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)

	for _, code := range []string{"2c", "10h", "Jd", "Qs", "Kh", "Ac", "9s"} {
		card, err := CardFromString(code)
		a.NoError(err)
		a.Equal(code, card.Code())
	}

	card, err := CardFromString("as")
	a.NoError(err)
	a.Equal(Card{Rank: Ace, Suit: Spades}, card)

	for _, bad := range []string{"", "1c", "11h", "Ax", "A", "10"} {
		_, err := CardFromString(bad)
		a.Error(err, bad)
	}
}

func TestCard_JSON(t *testing.T) {
	a := assert.New(t)

	b, err := json.Marshal([]Card{{Rank: Ace, Suit: Spades}, {Rank: 10, Suit: Diamonds}})
	a.NoError(err)
	a.Equal(`["As","10d"]`, string(b))

	var cards []Card
	a.NoError(json.Unmarshal([]byte(`["Kh","2c"]`), &cards))
	a.Equal(MustCardsFromString("Kh,2c"), cards)

	_, err = json.Marshal(Card{})
	a.Error(err)

	a.Error(json.Unmarshal([]byte(`["Zz"]`), &cards))
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []string{"As", "10d"}, Codes(MustCardsFromString("As,10d")))
	assert.Equal(t, []string{}, Codes(nil))
}
