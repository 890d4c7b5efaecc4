package room

import (
	"context"
	"errors"
	"fmt"
	"holdem-server/internal/rng"
	"holdem-server/internal/util"
	"holdem-server/pkg/evaluator"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/policy"
	"holdem-server/pkg/store"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestTimeout        = 10 * time.Second
	defaultPersistTimeout = 5 * time.Second
	maxClosedRetries      = 3
)

// Config holds the collaborators of a PitBoss
type Config struct {
	// Store is the persistence gateway, defaults to an in-memory store
	Store store.Gateway

	// Policies are the decision policies available to bots
	Policies *policy.Registry

	// Evaluator ranks hands at showdown
	Evaluator evaluator.Evaluator

	// RNG shuffles decks and picks display names
	RNG rng.Generator

	// TableOptions are the options every new table is created with
	TableOptions holdem.Options

	// PersistTimeout bounds a single snapshot write
	PersistTimeout time.Duration

	Logger logrus.FieldLogger
}

// PitBoss owns every live table and routes requests to its dealer
type PitBoss struct {
	mu       sync.RWMutex
	dealers  map[string]*Dealer
	draining map[string]chan struct{}

	store          store.Gateway
	policies       *policy.Registry
	evaluator      evaluator.Evaluator
	rng            rng.Generator
	options        holdem.Options
	persistTimeout time.Duration
	log            logrus.FieldLogger
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(cfg Config) (*PitBoss, error) {
	if cfg.TableOptions == (holdem.Options{}) {
		cfg.TableOptions = holdem.DefaultOptions()
	}

	if err := cfg.TableOptions.Validate(); err != nil {
		return nil, err
	}

	if cfg.RNG == nil {
		cfg.RNG = rng.Crypto{}
	}

	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}

	if cfg.Policies == nil {
		cfg.Policies = policy.NewRegistry(cfg.RNG)
	}

	if cfg.Evaluator == nil {
		cfg.Evaluator = evaluator.New()
	}

	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &PitBoss{
		dealers:        make(map[string]*Dealer),
		draining:       make(map[string]chan struct{}),
		store:          cfg.Store,
		policies:       cfg.Policies,
		evaluator:      cfg.Evaluator,
		rng:            cfg.RNG,
		options:        cfg.TableOptions,
		persistTimeout: cfg.PersistTimeout,
		log:            cfg.Logger,
	}, nil
}

// TableCount returns the number of tables resident in memory
func (p *PitBoss) TableCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.dealers)
}

// CreateTable creates a table and seats its owner
// If client is not nil, it is bound to the owner's seat.
func (p *PitBoss) CreateTable(ctx context.Context, client *Client, identity, displayName string) (SeatAssignment, error) {
	return p.createTable(ctx, client, identity, displayName, nil)
}

// seatedFunc is called on the table's run loop once a client holds its seat,
// before the first state is published to it
type seatedFunc func(a SeatAssignment)

func (p *PitBoss) createTable(ctx context.Context, client *Client, identity, displayName string, seated seatedFunc) (SeatAssignment, error) {
	if identity == "" {
		return SeatAssignment{}, holdem.ValidationError("identity is required")
	}

	table, err := holdem.NewTable(uuid.New().String(), p.options, p.evaluator, p.rng)
	if err != nil {
		return SeatAssignment{}, err
	}

	seat, err := table.AddSeat(uuid.New().String(), identity, p.displayName(displayName), "")
	if err != nil {
		return SeatAssignment{}, err
	}

	d := NewDealer(p, table)
	p.mu.Lock()
	p.dealers[table.ID()] = d
	p.mu.Unlock()
	d.StartShift()

	a := SeatAssignment{TableID: table.ID(), SeatID: seat.ID}
	err = d.exec(ctx, func(t *holdem.Table) error {
		if client != nil {
			d.AddClient(client, seat.ID)
		}

		if seated != nil {
			seated(a)
		}

		d.publish()
		return nil
	})

	if err != nil {
		return SeatAssignment{}, err
	}

	d.log.WithField("seatId", seat.ID).Info("table created")
	return a, nil
}

// JoinTable seats identity at the table, rehydrating the table if it is not in memory
// A known identity resumes its existing seat.
func (p *PitBoss) JoinTable(ctx context.Context, client *Client, tableID, identity, displayName string) (SeatAssignment, error) {
	return p.joinTable(ctx, client, tableID, identity, displayName, nil)
}

func (p *PitBoss) joinTable(ctx context.Context, client *Client, tableID, identity, displayName string, seated seatedFunc) (SeatAssignment, error) {
	if tableID == "" {
		return SeatAssignment{}, holdem.ValidationError("tableId is required")
	}

	if identity == "" {
		return SeatAssignment{}, holdem.ValidationError("identity is required")
	}

	a := SeatAssignment{TableID: tableID}
	err := p.withDealer(ctx, tableID, func(d *Dealer) error {
		return d.exec(ctx, func(t *holdem.Table) error {
			if seat, ok := t.SeatByIdentity(identity); ok {
				a.SeatID = seat.ID
				a.Reconnected = true
				if client != nil {
					d.AddClient(client, seat.ID)
				}

				if seated != nil {
					seated(a)
				}

				d.log.WithField("seatId", seat.ID).Info("player reconnected")
				d.broadcast(&Response{
					Key:   KeyPlayerReconnected,
					Value: seat.ID,
					Data:  map[string]string{"seatId": seat.ID},
				}, client)
				d.sendState()
				return nil
			}

			seat, err := t.AddSeat(uuid.New().String(), identity, p.displayName(displayName), "")
			if err != nil {
				return err
			}

			a.SeatID = seat.ID
			if client != nil {
				d.AddClient(client, seat.ID)
			}

			if seated != nil {
				seated(a)
			}

			d.log.WithField("seatId", seat.ID).Info("player joined")
			d.publish()
			return nil
		})
	})

	if err != nil {
		return SeatAssignment{}, err
	}

	return a, nil
}

// AddBot appends a seat whose decisions are made by the named policy
func (p *PitBoss) AddBot(ctx context.Context, tableID, displayName, policyName string) (SeatAssignment, error) {
	if tableID == "" {
		return SeatAssignment{}, holdem.ValidationError("tableId is required")
	}

	if policyName == "" {
		policyName = policy.RuleName
	}

	if _, err := p.policies.Get(policyName); err != nil {
		return SeatAssignment{}, holdem.ValidationError(err.Error())
	}

	a := SeatAssignment{TableID: tableID}
	err := p.withDealer(ctx, tableID, func(d *Dealer) error {
		return d.exec(ctx, func(t *holdem.Table) error {
			id := uuid.New().String()
			seat, err := t.AddSeat(id, "bot-"+id, p.displayName(displayName), policyName)
			if err != nil {
				return err
			}

			a.SeatID = seat.ID
			d.log.WithField("seatId", seat.ID).WithField("policy", policyName).Info("bot joined")
			d.publish()
			return nil
		})
	})

	if err != nil {
		return SeatAssignment{}, err
	}

	return a, nil
}

// SubmitAction applies an action for the seat to act
// Out of turn actions fail immediately and are never queued.
func (p *PitBoss) SubmitAction(ctx context.Context, tableID, seatID, action string, amount int) error {
	if tableID == "" {
		return holdem.ValidationError("tableId is required")
	}

	if seatID == "" {
		return holdem.ValidationError("seatId is required")
	}

	act, err := holdem.ActionFromString(action)
	if err != nil {
		return err
	}

	if act.RequiresAmount() && amount <= 0 {
		return holdem.ValidationError(fmt.Sprintf("an amount is required to %s", act))
	}

	return p.withDealer(ctx, tableID, func(d *Dealer) error {
		return d.exec(ctx, func(t *holdem.Table) error {
			if _, ok := t.Seat(seatID); !ok {
				return holdem.NotFoundError(fmt.Sprintf("seat %s not found", seatID))
			}

			if t.Status() != holdem.StatusPlaying {
				return holdem.ErrNoHandInProgress
			}

			if t.CurrentToAct() != seatID {
				return holdem.ErrNotYourTurn
			}

			if err := t.Act(seatID, act, amount); err != nil {
				return err
			}

			d.logAction(seatID, act, amount)
			d.settle()
			return nil
		})
	})
}

// StartNewHand deals the first hand of a waiting table or the next hand of a completed one
func (p *PitBoss) StartNewHand(ctx context.Context, tableID string) error {
	if tableID == "" {
		return holdem.ValidationError("tableId is required")
	}

	return p.withDealer(ctx, tableID, func(d *Dealer) error {
		return d.exec(ctx, func(t *holdem.Table) error {
			var err error
			switch t.Status() {
			case holdem.StatusWaiting:
				err = t.StartHand()
			case holdem.StatusComplete:
				err = t.ResetForNextHand()
			default:
				err = holdem.ErrHandInProgress
			}

			if err != nil {
				return err
			}

			d.log.WithField("hand", t.HandNumber()).Info("hand started")
			d.settle()
			return nil
		})
	})
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.log.WithField("client", client.String()).Debug("client connected")
}

// ClientDisconnected is called when a client disconnects from the server
// The seat is kept, so the identity can reconnect to it.
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.log.WithField("client", client.String()).Debug("client disconnected")
	if d := client.boundDealer(); d != nil {
		d.RemoveClient(client)
	}
}

// Reap tears down tables without connected clients that sat idle for the duration
// Pending snapshots are written before a table is forgotten. Returns the number of tables removed.
func (p *PitBoss) Reap(idle time.Duration) int {
	p.mu.RLock()
	candidates := make([]*Dealer, 0)
	for _, d := range p.dealers {
		if d.ClientCount() == 0 && d.idleFor() >= idle {
			candidates = append(candidates, d)
		}
	}
	p.mu.RUnlock()

	reaped := 0
	for _, d := range candidates {
		wait := make(chan struct{})

		p.mu.Lock()
		if p.dealers[d.tableID] != d {
			p.mu.Unlock()
			continue
		}

		delete(p.dealers, d.tableID)
		p.draining[d.tableID] = wait
		p.mu.Unlock()

		err := d.retire(idle)
		if err == nil {
			<-d.persisted
			reaped++
			d.log.Info("table torn down")
		}

		p.mu.Lock()
		if err != nil && !errors.Is(err, ErrTableClosed) {
			p.dealers[d.tableID] = d
		}

		delete(p.draining, d.tableID)
		close(wait)
		p.mu.Unlock()
	}

	return reaped
}

// EndShift tears down every table, waiting for their snapshots to be written
func (p *PitBoss) EndShift() {
	p.mu.Lock()
	dealers := p.dealers
	p.dealers = make(map[string]*Dealer)
	p.mu.Unlock()

	for _, d := range dealers {
		d.EndShift()
	}
}

// withDealer calls fn with the table's dealer, retrying when the dealer closes underneath it
func (p *PitBoss) withDealer(ctx context.Context, tableID string, fn func(d *Dealer) error) error {
	var err error
	for i := 0; i < maxClosedRetries; i++ {
		var d *Dealer
		if d, err = p.dealerFor(ctx, tableID); err != nil {
			return err
		}

		if err = fn(d); !errors.Is(err, ErrTableClosed) {
			return err
		}
	}

	return err
}

// dealerFor returns the resident dealer or rehydrates the table from the store
func (p *PitBoss) dealerFor(ctx context.Context, tableID string) (*Dealer, error) {
	for {
		p.mu.RLock()
		d, ok := p.dealers[tableID]
		wait, draining := p.draining[tableID]
		p.mu.RUnlock()

		if ok {
			return d, nil
		}

		if !draining {
			break
		}

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	snapshot, err := p.store.LoadSnapshot(ctx, tableID)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, holdem.NotFoundError(fmt.Sprintf("table %s not found", tableID))
	} else if err != nil {
		return nil, err
	}

	table, err := holdem.Rehydrate(snapshot, p.evaluator, p.rng)
	if err != nil {
		p.log.WithError(err).WithField("tableId", tableID).Error("could not rehydrate table")
		return nil, err
	}

	p.mu.Lock()
	if d, ok := p.dealers[tableID]; ok {
		p.mu.Unlock()
		return d, nil
	}

	d := NewDealer(p, table)
	p.dealers[tableID] = d
	p.mu.Unlock()

	d.StartShift()
	d.log.WithField("hand", table.HandNumber()).Info("table rehydrated")
	return d, nil
}

func (p *PitBoss) displayName(name string) string {
	if name == "" {
		return util.RandomSeatName(p.rng)
	}

	return name
}

// ReceivedMessage is called when the server receives a message from a connected client
func (p *PitBoss) ReceivedMessage(client *Client, msg *MessageIn) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	boundTable, boundSeat := client.Seat()
	if msg.TableID == "" {
		msg.TableID = boundTable
	}

	var err error
	switch msg.Type {
	case TypeCreateTable:
		_, err = p.createTable(ctx, client, msg.Identity, msg.DisplayName, func(a SeatAssignment) {
			client.Send(newSeatResponse(KeyTableCreated, msg.Context, a))
		})
	case TypeJoinTable:
		_, err = p.joinTable(ctx, client, msg.TableID, msg.Identity, msg.DisplayName, func(a SeatAssignment) {
			client.Send(newSeatResponse(KeyJoinedTable, msg.Context, a))
		})
	case TypeAddBot:
		var a SeatAssignment
		if a, err = p.AddBot(ctx, msg.TableID, msg.DisplayName, msg.Policy); err == nil {
			client.Send(newSeatResponse(KeyBotAdded, msg.Context, a))
		}
	case TypeSubmitAction:
		if msg.SeatID == "" {
			msg.SeatID = boundSeat
		}

		if msg.TableID != boundTable || msg.SeatID != boundSeat {
			err = holdem.ValidationError("you can only act for your own seat")
		} else if err = p.SubmitAction(ctx, msg.TableID, msg.SeatID, msg.Action, msg.Amount); err == nil {
			client.Send(OK(msg.Context))
		}
	case TypeStartNewHand:
		if err = p.StartNewHand(ctx, msg.TableID); err == nil {
			client.Send(OK(msg.Context))
		}
	default:
		err = holdem.ValidationError(fmt.Sprintf("unknown message type: %q", msg.Type))
	}

	if err != nil {
		entry := p.log.WithError(err).WithField("client", client.String()).WithField("type", msg.Type)
		if holdem.Kind(err) == holdem.KindInternal {
			entry.Error("request failed")
		} else {
			entry.Warn("request rejected")
		}

		client.Send(NewErrorResponse(msg.Context, err))
	}
}
