package room

import (
	"context"
	"errors"
	"holdem-server/internal/rng"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/policy"
	"holdem-server/pkg/store"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPitBoss(t *testing.T, gw store.Gateway) *PitBoss {
	t.Helper()

	pb, err := NewPitBoss(Config{
		Store: gw,
		RNG:   rng.NewSeeded(1),
	})
	require.NoError(t, err)
	t.Cleanup(pb.EndShift)

	return pb
}

// drain returns every response queued for the client
func drain(c *Client) []*Response {
	out := make([]*Response, 0)
	for {
		select {
		case msg := <-c.SendChan():
			out = append(out, msg.(*Response))
		default:
			return out
		}
	}
}

// lastState drains the client and returns the newest table state it received
func lastState(t *testing.T, c *Client) holdem.View {
	t.Helper()
	return stateIn(t, drain(c))
}

// stateIn returns the newest table state among the responses
func stateIn(t *testing.T, responses []*Response) holdem.View {
	t.Helper()

	var view *holdem.View
	for _, msg := range responses {
		if msg.Key == KeyTableState {
			v := msg.Data.(holdem.View)
			view = &v
		}
	}

	require.NotNil(t, view, "no table state received")
	return *view
}

// waitFor reads from the client until a response with the key arrives
func waitFor(t *testing.T, c *Client, key string) *Response {
	t.Helper()

	responses := collectUntil(t, c, key)
	return responses[len(responses)-1]
}

// collectUntil reads from the client until a response with the key arrives and
// returns everything it read, the matching response last
func collectUntil(t *testing.T, c *Client, key string) []*Response {
	t.Helper()

	out := make([]*Response, 0)
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.SendChan():
			r := msg.(*Response)
			out = append(out, r)
			if r.Key == key {
				return out
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for "+key)
			return nil
		}
	}
}

func keys(responses []*Response) []string {
	out := make([]string, len(responses))
	for i, r := range responses {
		out[i] = r.Key
	}

	return out
}

type panicPolicy struct{}

func (panicPolicy) Name() string {
	return "panic"
}

func (panicPolicy) Decide(context.Context, holdem.View) (policy.Decision, error) {
	panic("policy exploded")
}

func TestDealer_AddClient(t *testing.T) {
	pb := newTestPitBoss(t, nil)
	table, err := holdem.NewTable("t1", holdem.DefaultOptions(), nil, nil)
	require.NoError(t, err)

	d := NewDealer(pb, table)
	c := NewClient(nil)
	c2 := NewClient(nil)

	d.AddClient(c, "s1")
	d.AddClient(c2, "s2")
	assert.Equal(t, 2, d.ClientCount())

	tableID, seatID := c2.Seat()
	assert.Equal(t, "t1", tableID)
	assert.Equal(t, "s2", seatID)

	assert.False(t, d.RemoveClient(c))
	assert.True(t, d.RemoveClient(c2))

	tableID, _ = c2.Seat()
	assert.Equal(t, "", tableID)
}

func TestDealer_AddClient_movesTables(t *testing.T) {
	a := assert.New(t)
	pb := newTestPitBoss(t, nil)

	t1, _ := holdem.NewTable("t1", holdem.DefaultOptions(), nil, nil)
	t2, _ := holdem.NewTable("t2", holdem.DefaultOptions(), nil, nil)
	d1 := NewDealer(pb, t1)
	d2 := NewDealer(pb, t2)

	c := NewClient(nil)
	d1.AddClient(c, "s1")
	d2.AddClient(c, "s9")

	a.Equal(0, d1.ClientCount())
	a.Equal(1, d2.ClientCount())
	tableID, seatID := c.Seat()
	a.Equal("t2", tableID)
	a.Equal("s9", seatID)
}

func TestDealer_exec_recoversPanics(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	pb := newTestPitBoss(t, nil)
	pb.policies.Register(panicPolicy{})

	owner := NewClient(nil)
	tbl, err := pb.CreateTable(ctx, owner, "p1", "Player 1")
	a.NoError(err)

	_, err = pb.AddBot(ctx, tbl.TableID, "Boom", "panic")
	a.NoError(err)

	// the bot is first to act heads-up, so its policy runs during the deal
	err = pb.StartNewHand(ctx, tbl.TableID)
	a.Error(err)
	a.Equal(holdem.KindInternal, holdem.Kind(err))

	// the table keeps serving requests
	_, err = pb.JoinTable(ctx, nil, tbl.TableID, "p2", "Player 2")
	a.NoError(err)

	// other tables are unaffected
	_, err = pb.CreateTable(ctx, nil, "p3", "")
	a.NoError(err)
}

func TestDealer_persistenceFailureKeepsState(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	mem := store.NewMemory()
	pb := newTestPitBoss(t, mem)

	c1 := NewClient(nil)
	c2 := NewClient(nil)
	tbl, err := pb.CreateTable(ctx, c1, "p1", "Player 1")
	a.NoError(err)
	s2, err := pb.JoinTable(ctx, c2, tbl.TableID, "p2", "Player 2")
	a.NoError(err)
	a.NoError(pb.StartNewHand(ctx, tbl.TableID))
	drain(c1)

	mem.SetUnavailable(errors.New("connection refused"))

	// heads-up the small blind is the joiner and acts first
	a.NoError(pb.SubmitAction(ctx, tbl.TableID, s2.SeatID, "call", 0))

	// the warning comes from the persister and may land before or after the state
	responses := collectUntil(t, c1, KeyWarning)
	warning := responses[len(responses)-1]
	a.Contains(warning.Value, "could not be saved")

	view := stateIn(t, append(responses, drain(c1)...))
	a.Equal(holdem.Flop, view.Street)
	a.Equal(3, len(view.Board))

	// the applied action was not rolled back
	a.NoError(pb.SubmitAction(ctx, tbl.TableID, s2.SeatID, "check", 0))
	a.Equal(holdem.Flop, lastState(t, c1).Street)
}

func TestDealer_botFallsBackToCall(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	pb := newTestPitBoss(t, nil)

	checker, err := policy.NewLua("checker", `function decide(view) return "check" end`, nil)
	require.NoError(t, err)
	pb.policies.Register(checker)

	c1 := NewClient(nil)
	tbl, err := pb.CreateTable(ctx, c1, "p1", "Player 1")
	a.NoError(err)
	bot, err := pb.AddBot(ctx, tbl.TableID, "", "checker")
	a.NoError(err)

	a.NoError(pb.StartNewHand(ctx, tbl.TableID))

	// the bot cannot check the small blind, calls instead, then checks the flop
	view := lastState(t, c1)
	a.Equal(holdem.Flop, view.Street)
	a.Equal(tbl.SeatID, *view.CurrentToActSeatID)
	a.Equal(990, view.Seats[1].Chips)
	a.Equal(bot.SeatID, view.Seats[1].ID)
	a.True(view.Seats[1].IsBot)
	a.NotEmpty(view.Seats[1].DisplayName)
}

func TestDealer_botsFinishHand(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	// short stacks keep the number of broadcasts within the client buffer
	pb, err := NewPitBoss(Config{
		RNG:          rng.NewSeeded(7),
		TableOptions: holdem.Options{SmallBlind: 5, BigBlind: 10, StartingChips: 100, MaxSeats: 10},
	})
	require.NoError(t, err)
	defer pb.EndShift()

	c1 := NewClient(nil)
	tbl, err := pb.CreateTable(ctx, c1, "p1", "Player 1")
	a.NoError(err)
	for i := 0; i < 2; i++ {
		_, err = pb.AddBot(ctx, tbl.TableID, "", "")
		a.NoError(err)
	}

	_, err = pb.AddBot(ctx, tbl.TableID, "", "no-such-policy")
	a.Equal(holdem.KindValidation, holdem.Kind(err))

	a.NoError(pb.StartNewHand(ctx, tbl.TableID))
	view := lastState(t, c1)
	a.Equal(tbl.SeatID, *view.CurrentToActSeatID)

	a.NoError(pb.SubmitAction(ctx, tbl.TableID, tbl.SeatID, "fold", 0))

	var showdown *holdem.ShowdownEvent
	var final *holdem.View
	for _, msg := range drain(c1) {
		switch msg.Key {
		case KeyShowdown:
			showdown = msg.Data.(*holdem.ShowdownEvent)
		case KeyTableState:
			v := msg.Data.(holdem.View)
			final = &v
		}
	}

	require.NotNil(t, showdown)
	require.NotNil(t, final)
	a.Equal(holdem.StatusComplete, final.Status)
	a.NotNil(showdown.Winner)
	a.Empty(showdown.Seats[0].Hand)

	total := 0
	for _, seat := range final.Seats {
		total += seat.Chips
	}

	a.Equal(300, total)
}
