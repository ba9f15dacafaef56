package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 4096
)

var errConnClosed = errors.New("connection closed")

// Conn is one live websocket bound to a player.
type Conn struct {
	id       string
	playerID string
	name     string
	tier     string

	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(ws *websocket.Conn, id identity) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		playerID: id.playerID,
		name:     id.name,
		tier:     id.tier,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writeLoop drains the send queue and keeps the connection alive with
// pings until the connection is closed or ctx ends.
func (c *Conn) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				return err
			}
		case <-c.done:
			c.flush(ctx)
			return errConnClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flush writes whatever is still queued, such as a final room.closed.
func (c *Conn) flush(ctx context.Context) {
	for {
		select {
		case data := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, time.Second)
			err := c.ws.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		default:
			return
		}
	}
}
