package room

import (
	"context"
	"errors"
	"fmt"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/policy"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxBotActions      = 500
	botDecisionTimeout = time.Second
)

// ErrTableClosed is returned when a table is torn down while a request waits on it
var ErrTableClosed = errors.New("the table is closed")

var errTableBusy = errors.New("the table is busy")

// Dealer owns a single table. Every read and write of the table happens in its run loop.
type Dealer struct {
	pitBoss *PitBoss
	tableID string
	table   *holdem.Table
	log     logrus.FieldLogger

	clients map[*Client]string
	lock    sync.RWMutex

	lastActive   atomic.Int64
	lastShowdown int
	retired      bool

	execInRunLoop chan func()
	snapshots     chan *holdem.Snapshot
	done          chan struct{}
	persisted     chan struct{}
}

// NewDealer returns a new dealer for the table
func NewDealer(pitBoss *PitBoss, table *holdem.Table) *Dealer {
	d := &Dealer{
		pitBoss:       pitBoss,
		tableID:       table.ID(),
		table:         table,
		log:           pitBoss.log.WithField("tableId", table.ID()),
		clients:       make(map[*Client]string),
		execInRunLoop: make(chan func()),
		snapshots:     make(chan *holdem.Snapshot, 1),
		done:          make(chan struct{}),
		persisted:     make(chan struct{}),
	}

	if table.Status() == holdem.StatusComplete {
		d.lastShowdown = table.HandNumber()
	}

	d.lastActive.Store(time.Now().UnixNano())
	return d
}

// StartShift starts the run loop and the persister
func (d *Dealer) StartShift() {
	go d.persistLoop()
	go d.runLoop()
}

// EndShift stops the run loop and waits until every pending snapshot is written
// Connected clients are asked to close their connection.
func (d *Dealer) EndShift() {
	d.eachClient(func(c *Client, _ string) {
		select {
		case c.Close <- "the table has closed":
		default:
		}
	})

	_ = d.exec(context.Background(), func(*holdem.Table) error {
		d.retired = true
		return nil
	})

	<-d.persisted
}

func (d *Dealer) runLoop() {
	defer func() {
		close(d.done)
		close(d.snapshots)
	}()

	for {
		fn := <-d.execInRunLoop
		fn()

		if d.retired {
			d.log.Debug("dealer ended shift")
			return
		}
	}
}

// exec runs fn in the run loop and returns its error
// A panic in fn is recovered and only fails this request
func (d *Dealer) exec(ctx context.Context, fn func(t *holdem.Table) error) error {
	errCh := make(chan error, 1)
	job := func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.WithField("type", "exception").WithField("panic", r).Error("recovered from panic in the run loop")
				errCh <- fmt.Errorf("table %s: %v", d.tableID, r)
			}
		}()

		d.lastActive.Store(time.Now().UnixNano())
		errCh <- fn(d.table)
	}

	select {
	case d.execInRunLoop <- job:
	case <-d.done:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-errCh
}

// retire ends the shift only if nobody is connected and the table sat idle for the duration
func (d *Dealer) retire(idle time.Duration) error {
	return d.exec(context.Background(), func(*holdem.Table) error {
		if d.ClientCount() > 0 || d.idleFor() < idle {
			return errTableBusy
		}

		d.retired = true
		return nil
	})
}

func (d *Dealer) idleFor() time.Duration {
	return time.Since(time.Unix(0, d.lastActive.Load()))
}

// AddClient binds a client to a seat at this table
func (d *Dealer) AddClient(client *Client, seatID string) {
	d.lock.Lock()
	d.clients[client] = seatID
	d.lock.Unlock()

	if previous := client.bind(d, seatID); previous != nil && previous != d {
		previous.RemoveClient(client)
	}
}

// RemoveClient removes a client, returns true if it was the last client
func (d *Dealer) RemoveClient(client *Client) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	delete(d.clients, client)
	client.unbind(d)
	d.lastActive.Store(time.Now().UnixNano())

	return len(d.clients) == 0
}

// ClientCount returns the number of connected clients
func (d *Dealer) ClientCount() int {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return len(d.clients)
}

func (d *Dealer) eachClient(fn func(c *Client, seatID string)) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	for c, seatID := range d.clients {
		fn(c, seatID)
	}
}

func (d *Dealer) broadcast(msg interface{}, except *Client) {
	d.eachClient(func(c *Client, _ string) {
		if c == except {
			return
		}

		if !c.Send(msg) {
			d.log.WithField("client", c.String()).Warn("client send buffer is full, dropping message")
		}
	})
}

// sendState sends each connected client the view of its own seat
func (d *Dealer) sendState() {
	d.eachClient(func(c *Client, seatID string) {
		msg := &Response{
			Key:   KeyTableState,
			Value: string(d.table.Status()),
			Data:  d.table.View(seatID),
		}

		if !c.Send(msg) {
			d.log.WithField("client", c.String()).Warn("client send buffer is full, dropping table state")
		}
	})
}

// publish snapshots and broadcasts the table after a mutation
// Must be called from the run loop
func (d *Dealer) publish() {
	d.persist(d.table.Snapshot())
	d.sendState()

	if ev := d.table.ShowdownEvent(); ev != nil && ev.HandNumber != d.lastShowdown {
		d.lastShowdown = ev.HandNumber
		d.log.WithFields(logrus.Fields{
			"hand":    ev.HandNumber,
			"winners": ev.Winners,
			"pot":     ev.Pot,
		}).Info("hand complete")

		d.broadcast(&Response{
			Key:   KeyShowdown,
			Value: fmt.Sprintf("%d", ev.HandNumber),
			Data:  ev,
		}, nil)
	}
}

// settle lets bots act and publishes every resulting state
func (d *Dealer) settle() {
	d.publish()
	d.runBots()
}

// persist queues a snapshot for the persister. Only the newest pending snapshot is kept.
func (d *Dealer) persist(snapshot *holdem.Snapshot) {
	select {
	case d.snapshots <- snapshot:
		return
	default:
	}

	select {
	case <-d.snapshots:
	default:
	}

	d.snapshots <- snapshot
}

func (d *Dealer) persistLoop() {
	defer close(d.persisted)

	for snapshot := range d.snapshots {
		ctx, cancel := context.WithTimeout(context.Background(), d.pitBoss.persistTimeout)
		err := d.pitBoss.store.SaveSnapshot(ctx, snapshot)
		cancel()

		if err != nil {
			d.log.WithError(err).WithField("type", "persistence").Warn("could not save table snapshot")
			d.broadcast(newWarningResponse("the table could not be saved, play continues"), nil)
			continue
		}

		d.log.WithField("hand", snapshot.HandNumber).Trace("saved table snapshot")
	}
}

// runBots applies decisions for as long as a bot is the seat to act
func (d *Dealer) runBots() {
	for i := 0; i < maxBotActions; i++ {
		if d.table.Status() != holdem.StatusPlaying {
			return
		}

		seat, ok := d.table.Seat(d.table.CurrentToAct())
		if !ok || !seat.HasPolicy() {
			return
		}

		decision := d.decide(seat)
		if err := d.applyDecision(seat, decision); err != nil {
			d.log.WithError(err).WithField("seatId", seat.ID).Error("bot could not act")
			return
		}

		d.publish()
	}

	d.log.WithField("type", "exception").Error("bots exceeded the action limit")
}

func (d *Dealer) decide(seat holdem.Seat) policy.Decision {
	fallback := policy.Decision{Action: holdem.Call}

	p, err := d.pitBoss.policies.Get(seat.Policy)
	if err != nil {
		d.log.WithError(err).WithField("seatId", seat.ID).Warn("bot policy is missing")
		return fallback
	}

	ctx, cancel := context.WithTimeout(context.Background(), botDecisionTimeout)
	defer cancel()

	decision, err := p.Decide(ctx, d.table.View(seat.ID))
	if err != nil {
		d.log.WithError(err).WithField("seatId", seat.ID).WithField("policy", p.Name()).Warn("bot policy failed")
		return fallback
	}

	return decision
}

func (d *Dealer) applyDecision(seat holdem.Seat, decision policy.Decision) error {
	applied, err := policy.Apply(d.table, seat.ID, decision)
	if err != nil {
		return err
	}

	if applied != decision {
		d.log.WithField("seatId", seat.ID).WithField("decision", decision).Debug("bot decision was illegal")
	}

	d.logAction(seat.ID, applied.Action, applied.Amount)
	return nil
}

func (d *Dealer) logAction(seatID string, action holdem.Action, amount int) {
	d.log.WithFields(logrus.Fields{
		"seatId": seatID,
		"hand":   d.table.HandNumber(),
		"street": d.table.Street().String(),
	}).Debug(action.LogMessage(amount))
}
