package holdem

import (
	"fmt"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/evaluator"
)

// Table is the state machine for a single no-limit hold'em table
// Table is not safe for concurrent use. All calls for a table must be serialized
// by its owner.
type Table struct {
	id        string
	options   Options
	evaluator evaluator.Evaluator
	rng       rng.Generator

	deck  *deck.Deck
	seats []*Seat
	board []deck.Card
	pots  []SidePot

	status      Status
	street      Street
	handNumber  int
	buttonIndex int
	currentBet  int
	minRaise    int

	// acted tracks which seats have acted since the last increase of the current bet
	acted        map[string]bool
	currentToAct string

	result *Result
}

// NewTable returns a table waiting for seats
func NewTable(id string, opts Options, ev evaluator.Evaluator, gen rng.Generator) (*Table, error) {
	if id == "" {
		return nil, ValidationError("table id is required")
	}

	if err := opts.Validate(); err != nil {
		return nil, ValidationError(err.Error())
	}

	if ev == nil {
		ev = evaluator.New()
	}

	if gen == nil {
		gen = rng.Crypto{}
	}

	return &Table{
		id:        id,
		options:   opts,
		evaluator: ev,
		rng:       gen,
		deck:      deck.New(gen),
		seats:     make([]*Seat, 0, opts.MaxSeats),
		board:     make([]deck.Card, 0, 5),
		status:    StatusWaiting,
		street:    Preflop,
		minRaise:  opts.BigBlind,
		acted:     make(map[string]bool),
	}, nil
}

// ID returns the table identifier
func (t *Table) ID() string {
	return t.id
}

// Options returns the table options
func (t *Table) Options() Options {
	return t.options
}

// Status returns the lifecycle status
func (t *Table) Status() Status {
	return t.status
}

// Street returns the current betting round
func (t *Table) Street() Street {
	return t.street
}

// HandNumber returns how many hands have been started
func (t *Table) HandNumber() int {
	return t.handNumber
}

// CurrentToAct returns the seat that must act next, or an empty string
func (t *Table) CurrentToAct() string {
	return t.currentToAct
}

// CurrentBet is the highest street bet among live seats
func (t *Table) CurrentBet() int {
	return t.currentBet
}

// MinRaise is the smallest legal raise increment
func (t *Table) MinRaise() int {
	return t.minRaise
}

// Pot returns the main pot
func (t *Table) Pot() int {
	if len(t.pots) == 0 {
		return 0
	}

	return t.pots[0].Amount
}

// SidePots returns a copy of the side pots
func (t *Table) SidePots() []SidePot {
	if len(t.pots) < 2 {
		return []SidePot{}
	}

	return clonePots(t.pots[1:])
}

// Board returns a copy of the community cards
func (t *Table) Board() []deck.Card {
	return append([]deck.Card{}, t.board...)
}

// Result returns the result of the last completed hand
func (t *Table) Result() *Result {
	if t.result == nil {
		return nil
	}

	return t.result.clone()
}

// SeatCount returns the number of seats
func (t *Table) SeatCount() int {
	return len(t.seats)
}

// Seat returns a copy of the seat with the given id
func (t *Table) Seat(seatID string) (Seat, bool) {
	if idx := t.indexOf(seatID); idx >= 0 {
		return *t.seats[idx].clone(), true
	}

	return Seat{}, false
}

// SeatByIdentity returns a copy of the seat held by identity
func (t *Table) SeatByIdentity(identity string) (Seat, bool) {
	for _, s := range t.seats {
		if s.Identity == identity {
			return *s.clone(), true
		}
	}

	return Seat{}, false
}

// Seats returns copies of every seat in seat order
func (t *Table) Seats() []Seat {
	seats := make([]Seat, len(t.seats))
	for i, s := range t.seats {
		seats[i] = *s.clone()
	}

	return seats
}

// AddSeat seats a new player with the starting stack
// A seat added while a hand is in progress sits out until the next hand.
func (t *Table) AddSeat(id, identity, displayName, policy string) (Seat, error) {
	if id == "" || identity == "" {
		return Seat{}, ValidationError("seat id and identity are required")
	}

	if len(t.seats) >= t.options.MaxSeats {
		return Seat{}, ErrTableFull
	}

	for _, s := range t.seats {
		if s.ID == id {
			return Seat{}, ValidationError(fmt.Sprintf("seat %s already exists", id))
		}

		if s.Identity == identity {
			return Seat{}, ValidationError(fmt.Sprintf("%s is already seated", identity))
		}
	}

	seat := &Seat{
		ID:          id,
		Identity:    identity,
		DisplayName: displayName,
		Chips:       t.options.StartingChips,
		SeatIndex:   len(t.seats),
		Policy:      policy,
		Folded:      t.status == StatusPlaying,
	}

	t.seats = append(t.seats, seat)
	return *seat.clone(), nil
}

// StartHand deals a new hand without moving the button
func (t *Table) StartHand() error {
	if t.status == StatusPlaying {
		return ErrHandInProgress
	}

	if t.fundedSeats() < 2 {
		return ErrNotEnoughPlayers
	}

	if t.buttonIndex >= len(t.seats) {
		t.buttonIndex = 0
	}

	t.deck.Reset()
	t.deck.Shuffle()

	t.board = make([]deck.Card, 0, 5)
	t.pots = nil
	t.result = nil
	t.acted = make(map[string]bool)
	t.currentBet = 0
	t.minRaise = t.options.BigBlind
	t.street = Preflop
	t.currentToAct = ""

	for _, s := range t.seats {
		s.resetHand()
		if s.Chips == 0 {
			// busted seats sit out
			s.Folded = true
			continue
		}

		cards, err := t.deck.Deal(2)
		if err != nil {
			return newRuleViolation("could not deal hole cards: %v", err)
		}

		s.HoleCards = cards
	}

	sbIndex := t.nextInHand(t.buttonIndex)
	bbIndex := t.nextInHand(sbIndex)
	if err := t.postBlind(sbIndex, t.options.SmallBlind); err != nil {
		return err
	}

	if err := t.postBlind(bbIndex, t.options.BigBlind); err != nil {
		return err
	}

	t.acted[t.seats[bbIndex].ID] = true
	t.currentBet = t.maxStreetBet()
	t.handNumber++
	t.status = StatusPlaying

	return t.afterAction(bbIndex)
}

// ResetForNextHand moves the button one seat and deals the next hand
func (t *Table) ResetForNextHand() error {
	if t.status == StatusPlaying {
		return ErrHandInProgress
	}

	if t.fundedSeats() < 2 {
		return ErrNotEnoughPlayers
	}

	t.buttonIndex = (t.buttonIndex + 1) % len(t.seats)
	return t.StartHand()
}

// Act dispatches an action for a seat
func (t *Table) Act(seatID string, action Action, amount int) error {
	switch action {
	case Bet:
		return t.PlaceBet(seatID, amount)
	case Raise:
		return t.Raise(seatID, amount)
	case Call:
		return t.Call(seatID)
	case Check:
		return t.Check(seatID)
	case Fold:
		return t.Fold(seatID)
	}

	return ValidationError(fmt.Sprintf("unknown action: %q", action))
}

// PlaceBet makes the seat's total bet for the street equal to amount
// A request the seat cannot cover puts the seat all-in.
func (t *Table) PlaceBet(seatID string, amount int) error {
	idx, s, err := t.actingSeat(seatID)
	if err != nil {
		return err
	}

	if amount <= 0 {
		return ValidationError("amount must be greater than zero")
	}

	if amount > t.currentBet && amount < t.currentBet+t.minRaise {
		return newRuleViolation("the minimum raise is to %d", t.currentBet+t.minRaise)
	}

	add := amount - s.StreetBet
	if add >= s.Chips {
		add = s.Chips
	} else if amount < t.currentBet {
		return newRuleViolation("you must bet at least %d to stay in the hand", t.currentBet)
	}

	// only a short all-in raised since this seat acted
	if t.acted[s.ID] && s.StreetBet+add > t.currentBet {
		return newRuleViolation("the betting was not reopened, you may only call or fold")
	}

	prev := t.currentBet
	if err := s.Bet(add); err != nil {
		return err
	}

	if raise := s.StreetBet - prev; raise >= t.minRaise {
		t.minRaise = raise
		t.currentBet = s.StreetBet
		t.acted = map[string]bool{s.ID: true}
	} else {
		// an all-in for less than a full raise does not reopen the betting
		if s.StreetBet > t.currentBet {
			t.currentBet = s.StreetBet
		}

		t.acted[s.ID] = true
	}

	return t.afterAction(idx)
}

// Raise is an alias for PlaceBet
func (t *Table) Raise(seatID string, amount int) error {
	return t.PlaceBet(seatID, amount)
}

// Call matches the current bet, or goes all-in for less
func (t *Table) Call(seatID string) error {
	idx, s, err := t.actingSeat(seatID)
	if err != nil {
		return err
	}

	toCall := t.currentBet - s.StreetBet
	if toCall > s.Chips {
		toCall = s.Chips
	}

	if err := s.Bet(toCall); err != nil {
		return err
	}

	t.acted[s.ID] = true
	return t.afterAction(idx)
}

// Check is a call of zero
func (t *Table) Check(seatID string) error {
	_, s, err := t.actingSeat(seatID)
	if err != nil {
		return err
	}

	if s.StreetBet < t.currentBet {
		return newRuleViolation("you cannot check, the bet is %d", t.currentBet)
	}

	return t.Call(seatID)
}

// Fold gives up the hand
func (t *Table) Fold(seatID string) error {
	idx, s, err := t.actingSeat(seatID)
	if err != nil {
		return err
	}

	s.Fold()
	t.acted[s.ID] = true
	return t.afterAction(idx)
}

// actingSeat validates that the seat may act at all
// Turn order is enforced by the caller.
func (t *Table) actingSeat(seatID string) (int, *Seat, error) {
	if t.status != StatusPlaying {
		return -1, nil, ErrNoHandInProgress
	}

	idx := t.indexOf(seatID)
	if idx < 0 {
		return -1, nil, NotFoundError(fmt.Sprintf("seat %s not found", seatID))
	}

	s := t.seats[idx]
	if !s.inHand() {
		return -1, nil, ErrInvalidPlayer
	}

	if s.AllIn {
		return -1, nil, ErrSeatAllIn
	}

	return idx, s, nil
}

// afterAction moves the hand forward after the seat at idx acted
func (t *Table) afterAction(idx int) error {
	t.pots = buildPots(t.seats)
	t.currentBet = t.maxStreetBet()

	if t.liveSeats() == 1 {
		t.awardUncontested()
		return nil
	}

	if t.streetSettled() {
		return t.advanceStreet()
	}

	t.currentToAct = t.nextToAct(idx)
	return nil
}

// streetSettled returns true when no live seat owes action
func (t *Table) streetSettled() bool {
	for _, s := range t.seats {
		if !s.inHand() || s.AllIn {
			continue
		}

		if !t.acted[s.ID] || s.StreetBet != t.currentBet {
			return false
		}
	}

	return true
}

// advanceStreet deals the next street, running the board out when fewer than
// two seats can still bet
func (t *Table) advanceStreet() error {
	for {
		n := 0
		switch t.street {
		case Preflop:
			n = 3
		case Flop, Turn:
			n = 1
		}

		if n > 0 {
			cards, err := t.deck.Deal(n)
			if err != nil {
				return newRuleViolation("could not deal the %s: %v", t.street+1, err)
			}

			t.board = append(t.board, cards...)
		}

		t.street++
		for _, s := range t.seats {
			s.StreetBet = 0
		}

		t.currentBet = 0
		t.minRaise = t.options.BigBlind
		t.acted = make(map[string]bool)
		t.currentToAct = ""

		if t.street == Showdown {
			return t.showdown()
		}

		if t.actionableSeats() >= 2 {
			t.currentToAct = t.nextToAct(t.buttonIndex)
			return nil
		}
	}
}

// nextToAct returns the first seat after idx that still owes action
// A seat that already acted owes action when a short all-in raised past it.
func (t *Table) nextToAct(idx int) string {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		s := t.seats[(idx+i)%n]
		if s.canAct() && (!t.acted[s.ID] || s.StreetBet < t.currentBet) {
			return s.ID
		}
	}

	return ""
}

// nextInHand returns the index of the first dealt-in seat after idx
func (t *Table) nextInHand(idx int) int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		if j := (idx + i) % n; t.seats[j].inHand() {
			return j
		}
	}

	return idx
}

func (t *Table) postBlind(idx, amount int) error {
	s := t.seats[idx]
	return s.Bet(minInt(amount, s.Chips))
}

func (t *Table) indexOf(seatID string) int {
	for i, s := range t.seats {
		if s.ID == seatID {
			return i
		}
	}

	return -1
}

func (t *Table) fundedSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.Chips > 0 {
			n++
		}
	}

	return n
}

func (t *Table) liveSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.inHand() {
			n++
		}
	}

	return n
}

func (t *Table) actionableSeats() int {
	n := 0
	for _, s := range t.seats {
		if s.canAct() {
			n++
		}
	}

	return n
}

func (t *Table) maxStreetBet() int {
	max := 0
	for _, s := range t.seats {
		if s.inHand() && s.StreetBet > max {
			max = s.StreetBet
		}
	}

	return max
}

func clonePots(pots []SidePot) []SidePot {
	cp := make([]SidePot, len(pots))
	for i, p := range pots {
		cp[i] = SidePot{
			Amount:          p.Amount,
			EligibleSeatIDs: append([]string{}, p.EligibleSeatIDs...),
		}
	}

	return cp
}
