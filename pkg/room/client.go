package room

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	id string

	mu      sync.RWMutex
	dealer  *Dealer
	tableID string
	seatID  string
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		send:  make(chan interface{}, 256),
		Close: make(chan string),
		Conn:  conn,
		id:    uuid.New().String(),
	}
}

// Send send a message to the web client
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// Seat returns the table and seat the client is bound to
func (c *Client) Seat() (tableID, seatID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tableID, c.seatID
}

// String returns a traceable identifier for the connection and its seat
func (c *Client) String() string {
	tableID, seatID := c.Seat()
	if tableID == "" {
		return c.id
	}

	return fmt.Sprintf("%s:%s:%s", c.id, tableID, seatID)
}

func (c *Client) bind(d *Dealer, seatID string) (previous *Dealer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous = c.dealer
	c.dealer = d
	c.tableID = d.tableID
	c.seatID = seatID
	return previous
}

func (c *Client) unbind(d *Dealer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dealer != d {
		return false
	}

	c.dealer = nil
	c.tableID = ""
	c.seatID = ""
	return true
}

func (c *Client) boundDealer() *Dealer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.dealer
}
