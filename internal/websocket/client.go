package websocket

import (
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is one dashboard connection. The hub owns send and closes it when
// the client is removed.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	pongWait       time.Duration
	pingPeriod     time.Duration
	writeWait      time.Duration
	maxMessageSize int64

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, cfg *config.Config, logger zerolog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:             id,
		hub:            hub,
		conn:           conn,
		send:           make(chan []byte, 16),
		pongWait:       cfg.PongWait,
		pingPeriod:     cfg.PingPeriod,
		writeWait:      cfg.WriteWait,
		maxMessageSize: cfg.MaxMessageSize,
		logger:         logger.With().Str("client_id", id).Logger(),
	}
}

// Start launches the connection's reader and writer. Each runs on its own
// goroutine so the connection never sees concurrent reads or writes.
func (c *Client) Start() {
	go c.writeLoop()
	go c.readLoop()
}

// readLoop keeps the read deadline alive through pongs. Dashboards do not
// send anything meaningful; any read error ends the connection.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}
	}
}

// writeLoop writes one snapshot per text frame and pings on idle
func (c *Client) writeLoop() {
	ping := time.NewTicker(c.pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteMessage(messageType, data)
}
