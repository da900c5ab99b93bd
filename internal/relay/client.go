// FilePath: internal/relay/client.go
package relay

import (
	"context"
	"net/http"
	"time"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/gorilla/websocket"
	nuts "github.com/vaudience/go-nuts"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size. Clients only send small command frames.
	maxMessageSize = 512
)

// Frame is the wire envelope on the live channel.
//
//	server -> client:  {"type":"update","data":{...}}
//	client -> server:  {"type":"bulb-command","state":"on"}
//	server -> sender:  {"type":"error","error":"Invalid bulb state"}
type Frame struct {
	Type  string                    `json:"type"`
	Data  *models.TelemetrySnapshot `json:"data,omitempty"`
	State string                    `json:"state,omitempty"`
	Error string                    `json:"error,omitempty"`
}

// Frame types on the live channel.
const (
	FrameUpdate      = "update"
	FrameBulbCommand = "bulb-command"
	FrameError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from arbitrary origins, as the original
	// deployment allowed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live dashboard connection: a hub subscriber plus the
// websocket pumps that drain it.
type Client struct {
	svc  *Service
	conn *websocket.Conn
	sub  *Subscriber

	// errs carries command rejections back to this sender only.
	errs chan string
}

// ServeWS upgrades the request and runs the connection until the peer goes
// away. The new subscriber receives the current snapshot immediately, before
// any mutation-triggered push.
func ServeWS(svc *Service, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		nuts.L.Errorf("[WS] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		svc:  svc,
		conn: conn,
		sub:  svc.Subscribe(),
		errs: make(chan string, 4),
	}

	go client.writePump()
	client.readPump()
}

// readPump decodes inbound frames until the connection drops. Only
// bulb-command frames are meaningful; anything else is logged and skipped.
func (c *Client) readPump() {
	defer func() {
		c.svc.Unsubscribe(c.sub)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				nuts.L.Warnf("[WS] Subscriber %s read error: %v", c.sub.ID(), err)
			}
			return
		}

		switch frame.Type {
		case FrameBulbCommand:
			if _, err := c.svc.Command(context.Background(), frame.State); err != nil {
				msg := err.Error()
				if apiErr, ok := err.(*errors.APIError); ok {
					msg = apiErr.Message
				}
				select {
				case c.errs <- msg:
				default:
				}
			}
		default:
			nuts.L.Debugf("[WS] Subscriber %s sent unknown frame type %q", c.sub.ID(), frame.Type)
		}
	}
}

// writePump forwards hub pushes and command rejections to the peer and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case snap, ok := <-c.sub.Updates():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(Frame{Type: FrameUpdate, Data: &snap}); err != nil {
				return
			}

		case msg := <-c.errs:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Frame{Type: FrameError, Error: msg}); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
