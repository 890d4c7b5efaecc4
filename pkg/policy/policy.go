// Package policy makes decisions for seats that are not controlled by a person
package policy

import (
	"context"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"holdem-server/internal/rng"
	"holdem-server/pkg/holdem"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownPolicy is returned when a policy name is not registered
var ErrUnknownPolicy = errors.New("unknown policy")

// Decision is what a policy wants its seat to do
type Decision struct {
	Action holdem.Action `json:"action"`
	Amount int           `json:"amount,omitempty"`
}

// Policy picks an action from the seat's own view of the table
// A policy never mutates the table
type Policy interface {
	Name() string
	Decide(ctx context.Context, view holdem.View) (Decision, error)
}

// Registry holds the policies bots can be created with
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry returns a registry holding the rule policy
func NewRegistry(gen rng.Generator) *Registry {
	r := &Registry{
		policies: make(map[string]Policy),
	}

	r.Register(NewRule(gen))
	return r
}

// Register adds or replaces a policy
func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.policies[p.Name()].(*Lua); ok && old != p {
		old.Close()
	}

	r.policies[p.Name()] = p
}

// Get returns the policy with the given name
func (r *Registry) Get(name string) (Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}

	return p, nil
}

// Names returns every registered policy name in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// LoadDir registers every *.lua file in dir, named after the file
func (r *Registry) LoadDir(dir string, gen rng.Generator) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return err
	}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(file), ".lua")
		p, err := NewLua(name, string(src), gen)
		if err != nil {
			return err
		}

		r.Register(p)
		logrus.WithFields(logrus.Fields{
			"policy": name,
			"file":   file,
		}).Info("loaded policy script")
	}

	return nil
}

// Close releases every scripted policy
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.policies {
		if l, ok := p.(*Lua); ok {
			l.Close()
		}
	}
}

// ownSeat returns the recipient's seat in the view
func ownSeat(view holdem.View) (holdem.SeatView, bool) {
	for _, seat := range view.Seats {
		if seat.ID == view.SeatID {
			return seat, true
		}
	}

	return holdem.SeatView{}, false
}

// Apply performs the decision for the seat
// An illegal decision falls back to call/check and then to fold. Returns what was actually done.
func Apply(t *holdem.Table, seatID string, d Decision) (Decision, error) {
	if err := t.Act(seatID, d.Action, d.Amount); err == nil {
		return d, nil
	}

	if d.Action != holdem.Call {
		if err := t.Call(seatID); err == nil {
			return Decision{Action: holdem.Call}, nil
		}
	}

	if err := t.Fold(seatID); err != nil {
		return Decision{}, err
	}

	return Decision{Action: holdem.Fold}, nil
}
