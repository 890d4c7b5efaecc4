package holdem

import "holdem-server/pkg/deck"

// SeatView is a seat as seen by one recipient
type SeatView struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Chips       int         `json:"chips"`
	Folded      bool        `json:"folded"`
	AllIn       bool        `json:"allIn"`
	SittingOut  bool        `json:"sittingOut"`
	CurrentBet  int         `json:"currentBet"`
	SeatIndex   int         `json:"seatIndex"`
	IsBot       bool        `json:"isBot"`
	Hand        []deck.Card `json:"hand"`
}

// View is the table state personalized for one seat
type View struct {
	TableID            string      `json:"tableId"`
	Status             Status      `json:"status"`
	HandNumber         int         `json:"handNumber"`
	Street             Street      `json:"street"`
	ButtonIndex        int         `json:"buttonIndex"`
	Pot                int         `json:"pot"`
	SidePots           []SidePot   `json:"sidePots"`
	CurrentBet         int         `json:"currentBet"`
	MinRaise           int         `json:"minRaise"`
	Board              []deck.Card `json:"board"`
	Seats              []SeatView  `json:"seats"`
	CurrentToActSeatID *string     `json:"currentToActSeatId"`
	Winner             *string     `json:"winner"`
	Result             *Result     `json:"result,omitempty"`

	// SeatID is the recipient, empty when the recipient has no seat
	SeatID string `json:"seatId,omitempty"`
	// ToCall is what the recipient must add to stay in
	ToCall int `json:"toCall"`
	// MinRaiseTo is the smallest legal bet-to amount for a raise
	MinRaiseTo int `json:"minRaiseTo"`
}

// View returns the state as seen by recipientSeatID
// Other seats' hole cards are only revealed after a contested showdown.
func (t *Table) View(recipientSeatID string) View {
	reveal := t.street == Showdown && t.result != nil && !t.result.Uncontested

	v := View{
		TableID:     t.id,
		Status:      t.status,
		HandNumber:  t.handNumber,
		Street:      t.street,
		ButtonIndex: t.buttonIndex,
		Pot:         t.Pot(),
		SidePots:    t.SidePots(),
		CurrentBet:  t.currentBet,
		MinRaise:    t.minRaise,
		Board:       t.Board(),
		Seats:       make([]SeatView, len(t.seats)),
		SeatID:      recipientSeatID,
		MinRaiseTo:  t.currentBet + t.minRaise,
	}

	if t.currentToAct != "" {
		id := t.currentToAct
		v.CurrentToActSeatID = &id
	}

	if t.result != nil {
		v.Result = t.result.clone()
		if len(t.result.Winners) > 0 {
			winner := t.result.Winners[0]
			v.Winner = &winner
		}
	}

	for i, s := range t.seats {
		sv := SeatView{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Chips:       s.Chips,
			Folded:      s.Folded,
			AllIn:       s.AllIn,
			SittingOut:  t.status == StatusPlaying && len(s.HoleCards) == 0,
			CurrentBet:  s.StreetBet,
			SeatIndex:   s.SeatIndex,
			IsBot:       s.HasPolicy(),
			Hand:        []deck.Card{},
		}

		if s.ID == recipientSeatID || (reveal && s.inHand()) {
			sv.Hand = append(sv.Hand, s.HoleCards...)
		}

		if s.ID == recipientSeatID && s.canAct() {
			toCall := t.currentBet - s.StreetBet
			if toCall > s.Chips {
				toCall = s.Chips
			}

			if toCall > 0 {
				v.ToCall = toCall
			}
		}

		v.Seats[i] = sv
	}

	return v
}

// ShowdownSeat is a seat as shown to the whole table after a hand
type ShowdownSeat struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Chips       int         `json:"chips"`
	Folded      bool        `json:"folded"`
	Hand        []deck.Card `json:"hand"`
}

// ShowdownEvent describes how a completed hand was paid out
type ShowdownEvent struct {
	TableID     string            `json:"tableId"`
	HandNumber  int               `json:"handNumber"`
	Winner      *string           `json:"winner"`
	Winners     []string          `json:"winners"`
	Pot         int               `json:"pot"`
	Board       []deck.Card       `json:"board"`
	Seats       []ShowdownSeat    `json:"seats"`
	Payouts     map[string]int    `json:"payouts"`
	Hands       map[string]string `json:"hands,omitempty"`
	Uncontested bool              `json:"uncontested"`
}

// ShowdownEvent returns the payout event of the last hand, or nil if it is still in play
// Hole cards are only shown for seats that reached a contested showdown.
func (t *Table) ShowdownEvent() *ShowdownEvent {
	if t.status != StatusComplete || t.result == nil {
		return nil
	}

	r := t.result.clone()
	ev := &ShowdownEvent{
		TableID:     t.id,
		HandNumber:  t.handNumber,
		Winners:     r.Winners,
		Pot:         r.Total,
		Board:       t.Board(),
		Seats:       make([]ShowdownSeat, len(t.seats)),
		Payouts:     r.Payouts,
		Hands:       r.Hands,
		Uncontested: r.Uncontested,
	}

	if len(r.Winners) > 0 {
		winner := r.Winners[0]
		ev.Winner = &winner
	}

	for i, s := range t.seats {
		seat := ShowdownSeat{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Chips:       s.Chips,
			Folded:      s.Folded,
			Hand:        []deck.Card{},
		}

		if !r.Uncontested && s.inHand() {
			seat.Hand = append(seat.Hand, s.HoleCards...)
		}

		ev.Seats[i] = seat
	}

	return ev
}
