package holdem

import "fmt"

// maxSeatsLimit keeps 2 hole cards per seat plus a full board within one deck
const maxSeatsLimit = 23

// Options configures the stakes of a table
type Options struct {
	SmallBlind    int `json:"smallBlind" yaml:"smallBlind"`
	BigBlind      int `json:"bigBlind" yaml:"bigBlind"`
	StartingChips int `json:"startingChips" yaml:"startingChips"`
	MaxSeats      int `json:"maxSeats" yaml:"maxSeats"`
}

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		SmallBlind:    5,
		BigBlind:      10,
		StartingChips: 1000,
		MaxSeats:      10,
	}
}

// Validate returns an error if the options cannot be played
func (o Options) Validate() error {
	if o.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be > 0")
	}

	if o.BigBlind < o.SmallBlind {
		return fmt.Errorf("big blind must be >= the small blind")
	}

	if o.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be > 0")
	}

	if o.MaxSeats < 2 || o.MaxSeats > maxSeatsLimit {
		return fmt.Errorf("max seats must be between 2 and %d", maxSeatsLimit)
	}

	return nil
}
