package policy

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fixedGen always rolls the same number
type fixedGen int

func (f fixedGen) Intn(n int) int {
	return int(f) % n
}

func testView(hand string, toCall int) holdem.View {
	return holdem.View{
		SeatID:     "s1",
		Street:     holdem.Flop,
		Pot:        30,
		SidePots:   []holdem.SidePot{{Amount: 20}},
		CurrentBet: toCall,
		MinRaise:   10,
		MinRaiseTo: toCall + 10,
		ToCall:     toCall,
		Board:      deck.MustCardsFromString("2h,9c,Kd"),
		Seats: []holdem.SeatView{
			{ID: "s1", Chips: 500, Hand: deck.MustCardsFromString(hand)},
			{ID: "s2", Chips: 500, Hand: []deck.Card{}},
			{ID: "s3", Chips: 500, Folded: true, Hand: []deck.Card{}},
		},
	}
}

func TestRule_Decide(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	decide := func(roll int, hand string, toCall int) Decision {
		d, err := NewRule(fixedGen(roll)).Decide(ctx, testView(hand, toCall))
		a.NoError(err)
		return d
	}

	// pairs and face cards
	a.Equal(Decision{Action: holdem.Raise, Amount: 20}, decide(10, "As,Ad", 10))
	a.Equal(Decision{Action: holdem.Raise, Amount: 20}, decide(69, "Qs,Jd", 10))
	a.Equal(Decision{Action: holdem.Call}, decide(70, "7s,7d", 10))

	// everything else
	a.Equal(Decision{Action: holdem.Fold}, decide(10, "2c,7d", 10))
	a.Equal(Decision{Action: holdem.Check}, decide(10, "2c,7d", 0))
	a.Equal(Decision{Action: holdem.Call}, decide(50, "As,10d", 10))
	a.Equal(Decision{Action: holdem.Raise, Amount: 20}, decide(90, "2c,7d", 10))

	view := testView("2c,7d", 10)
	view.SeatID = "s2"
	d, err := NewRule(fixedGen(90)).Decide(ctx, view)
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Fold}, d)
}

const aceScript = `
function decide(view)
  if view.toCall == 0 then
    return "check"
  end

  if string.sub(view.hand[1], 1, 1) == "A" and view.players == 2 and view.pot == 50 then
    return "raise", view.minRaiseTo
  end

  return "fold"
end
`

func TestLua_Decide(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p, err := NewLua("aces", aceScript, fixedGen(0))
	a.NoError(err)
	defer p.Close()
	a.Equal("aces", p.Name())

	d, err := p.Decide(ctx, testView("As,2d", 40))
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Raise, Amount: 50}, d)

	d, err = p.Decide(ctx, testView("Ks,2d", 40))
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Fold}, d)

	d, err = p.Decide(ctx, testView("Ks,2d", 0))
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Check}, d)
}

func TestLua_random(t *testing.T) {
	a := assert.New(t)

	p, err := NewLua("dice", `
function decide(view)
  if random(10) == 7 then return "call" end
  return "fold"
end`, fixedGen(7))
	a.NoError(err)
	defer p.Close()

	d, err := p.Decide(context.Background(), testView("As,2d", 10))
	a.NoError(err)
	a.Equal(holdem.Call, d.Action)
}

func TestLua_errors(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	_, err := NewLua("empty", `x = 1`, nil)
	a.EqualError(err, "policy empty: script does not define decide(view)")

	_, err = NewLua("broken", `function decide(view`, nil)
	a.Error(err)

	_, err = NewLua("files", `dofile("/etc/passwd")`, nil)
	a.Error(err)

	p, err := NewLua("dance", `function decide(view) return "dance" end`, nil)
	a.NoError(err)
	_, err = p.Decide(ctx, testView("As,2d", 10))
	a.EqualError(err, `policy dance: unknown action: "dance"`)
	p.Close()

	p, err = NewLua("boom", `function decide(view) error("boom") end`, nil)
	a.NoError(err)
	_, err = p.Decide(ctx, testView("As,2d", 10))
	a.Error(err)
	p.Close()

	p, err = NewLua("spin", `function decide(view) while true do end end`, nil)
	a.NoError(err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Decide(ctx, testView("As,2d", 10))
	a.Error(err)
}

func TestRegistry(t *testing.T) {
	a := assert.New(t)

	r := NewRegistry(fixedGen(0))
	defer r.Close()

	p, err := r.Get(RuleName)
	a.NoError(err)
	a.Equal(RuleName, p.Name())

	_, err = r.Get("nope")
	a.True(errors.Is(err, ErrUnknownPolicy))
	a.EqualError(err, "unknown policy: nope")

	dir := t.TempDir()
	a.NoError(os.WriteFile(filepath.Join(dir, "aces.lua"), []byte(aceScript), 0644))
	a.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	a.NoError(r.LoadDir(dir, fixedGen(0)))
	a.Equal([]string{"aces", RuleName}, r.Names())

	p, err = r.Get("aces")
	a.NoError(err)
	a.IsType(&Lua{}, p)

	// reloading replaces the script
	a.NoError(r.LoadDir(dir, fixedGen(0)))
	a.Equal([]string{"aces", RuleName}, r.Names())

	a.NoError(os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function"), 0644))
	a.Error(r.LoadDir(dir, nil))
}

func TestApply(t *testing.T) {
	a := assert.New(t)

	table, err := holdem.NewTable("t1", holdem.DefaultOptions(), nil, rng.NewSeeded(1))
	a.NoError(err)
	_, _ = table.AddSeat("s1", "p1", "Player 1", "")
	_, _ = table.AddSeat("s2", "p2", "Player 2", RuleName)
	a.NoError(table.StartHand())
	a.Equal("s2", table.CurrentToAct())

	// the small blind cannot check
	d, err := Apply(table, "s2", Decision{Action: holdem.Check})
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Call}, d)
	a.Equal(holdem.Flop, table.Street())

	// a bet below the big blind is checked instead
	d, err = Apply(table, "s2", Decision{Action: holdem.Bet, Amount: 5})
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Call}, d)

	d, err = Apply(table, "s1", Decision{Action: holdem.Bet, Amount: 50})
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Bet, Amount: 50}, d)

	d, err = Apply(table, "s2", Decision{Action: holdem.Fold})
	a.NoError(err)
	a.Equal(Decision{Action: holdem.Fold}, d)
	a.Equal(holdem.StatusComplete, table.Status())

	_, err = Apply(table, "s2", Decision{Action: holdem.Call})
	a.Error(err)
}
