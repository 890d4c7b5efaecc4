package policy

import (
	"context"
	"fmt"
	lua "github.com/yuin/gopher-lua"
	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/holdem"
	"sync"
)

// Lua is a policy scripted in Lua
//
// The script must define a global decide(view) function that returns an
// action name and, for bet or raise, the amount to bet to:
//
//	function decide(view)
//	  if view.toCall == 0 then return "check" end
//	  return "call"
//	end
//
// random(n) returns an integer in [0, n)
type Lua struct {
	name string

	// an LState cannot be shared between goroutines
	mu     sync.Mutex
	state  *lua.LState
	decide *lua.LFunction
}

var luaLibs = []struct {
	name string
	fn   lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// NewLua compiles a policy script
func NewLua(name, source string, gen rng.Generator) (*Lua, error) {
	if gen == nil {
		gen = rng.Crypto{}
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range luaLibs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("policy %s: %w", name, err)
		}
	}

	// scripts do not touch the filesystem
	for _, fn := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(fn, lua.LNil)
	}

	L.SetGlobal("random", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "must be greater than zero")
			return 0
		}

		L.Push(lua.LNumber(gen.Intn(n)))
		return 1
	}))

	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("policy %s: %w", name, err)
	}

	decide, ok := L.GetGlobal("decide").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("policy %s: script does not define decide(view)", name)
	}

	return &Lua{
		name:   name,
		state:  L,
		decide: decide,
	}, nil
}

// Name implements Policy
func (l *Lua) Name() string {
	return l.name
}

// Decide implements Policy
func (l *Lua) Decide(ctx context.Context, view holdem.View) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.SetContext(ctx)
	defer l.state.RemoveContext()

	if err := l.state.CallByParam(lua.P{
		Fn:      l.decide,
		NRet:    2,
		Protect: true,
	}, l.viewTable(view)); err != nil {
		return Decision{}, fmt.Errorf("policy %s: %w", l.name, err)
	}

	action := l.state.Get(-2)
	amount := l.state.Get(-1)
	l.state.Pop(2)

	a, err := holdem.ActionFromString(lua.LVAsString(action))
	if err != nil {
		return Decision{}, fmt.Errorf("policy %s: %w", l.name, err)
	}

	return Decision{
		Action: a,
		Amount: int(lua.LVAsNumber(amount)),
	}, nil
}

// Close releases the interpreter
func (l *Lua) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Close()
}

func (l *Lua) viewTable(view holdem.View) *lua.LTable {
	L := l.state
	seat, _ := ownSeat(view)

	street, _ := view.Street.MarshalText()
	pot := view.Pot
	for _, sp := range view.SidePots {
		pot += sp.Amount
	}

	live := 0
	for _, s := range view.Seats {
		if !s.Folded {
			live++
		}
	}

	tbl := L.NewTable()
	tbl.RawSetString("seatId", lua.LString(view.SeatID))
	tbl.RawSetString("street", lua.LString(string(street)))
	tbl.RawSetString("pot", lua.LNumber(pot))
	tbl.RawSetString("currentBet", lua.LNumber(view.CurrentBet))
	tbl.RawSetString("minRaise", lua.LNumber(view.MinRaise))
	tbl.RawSetString("minRaiseTo", lua.LNumber(view.MinRaiseTo))
	tbl.RawSetString("toCall", lua.LNumber(view.ToCall))
	tbl.RawSetString("chips", lua.LNumber(seat.Chips))
	tbl.RawSetString("streetBet", lua.LNumber(seat.CurrentBet))
	tbl.RawSetString("players", lua.LNumber(live))
	tbl.RawSetString("hand", cardsTable(L, seat.Hand))
	tbl.RawSetString("board", cardsTable(L, view.Board))

	return tbl
}

func cardsTable(L *lua.LState, cards []deck.Card) *lua.LTable {
	tbl := L.CreateTable(len(cards), 0)
	for _, c := range cards {
		tbl.Append(lua.LString(c.Code()))
	}

	return tbl
}
