package holdem

import "fmt"

// Action is something a seat does on its turn
type Action string

// action constants
const (
	Bet   Action = "bet"
	Raise Action = "raise"
	Call  Action = "call"
	Check Action = "check"
	Fold  Action = "fold"
)

var allowedActions = map[Action]bool{
	Bet:   true,
	Raise: true,
	Call:  true,
	Check: true,
	Fold:  true,
}

// ActionFromString returns an action for the given string
func ActionFromString(s string) (Action, error) {
	if _, ok := allowedActions[Action(s)]; ok {
		return Action(s), nil
	}

	return "", ValidationError(fmt.Sprintf("unknown action: %q", s))
}

// RequiresAmount returns true if the action needs an amount
func (a Action) RequiresAmount() bool {
	return a == Bet || a == Raise
}

// LogMessage returns a message formatted for the log
func (a Action) LogMessage(amount int) string {
	switch a {
	case Fold:
		return "folded"
	case Check:
		return "checked"
	case Call:
		return "called"
	case Bet:
		return fmt.Sprintf("bet %d", amount)
	case Raise:
		return fmt.Sprintf("raised to %d", amount)
	}

	return string(a)
}
