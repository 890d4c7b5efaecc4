package holdem

import "fmt"

// Street is a betting round
type Street int

// Street constants
const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	}

	return ""
}

// boardSize is how many community cards are showing on the street
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	}

	return 0
}

// MarshalText encodes the street name
func (s Street) MarshalText() ([]byte, error) {
	name := s.String()
	if name == "" {
		return nil, fmt.Errorf("unknown street: %d", int(s))
	}

	return []byte(name), nil
}

// UnmarshalText decodes a street name
func (s *Street) UnmarshalText(b []byte) error {
	for street := Preflop; street <= Showdown; street++ {
		if street.String() == string(b) {
			*s = street
			return nil
		}
	}

	return fmt.Errorf("unknown street: %q", string(b))
}

// Status is where the table is in its hand lifecycle
type Status string

// Status constants
const (
	// StatusWaiting is a table that has not dealt a hand yet
	StatusWaiting Status = "waiting"
	// StatusPlaying is a table with a hand in progress
	StatusPlaying Status = "playing"
	// StatusComplete is a table whose last hand reached showdown
	StatusComplete Status = "complete"
)

// IsValid returns true for a known status
func (s Status) IsValid() bool {
	return s == StatusWaiting || s == StatusPlaying || s == StatusComplete
}
