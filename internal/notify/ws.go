package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxFrame   = 4096
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientFrame is what a browser sends: {"type":"join","group":"42"}.
type clientFrame struct {
	Type  string `json:"type"`
	Group string `json:"group"`
}

// Handler upgrades an authenticated request and serves join/leave frames.
// A caller may only join its own group unless it is an admin.
func Handler(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("handler", "order_hub")

		p, ok := authmw.PrincipalFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			l.Warn("upgrade_failed", "error", err)
			return nil
		}

		sub := NewSubscriber(sendBuffer)
		done := make(chan struct{})
		defer func() {
			hub.LeaveAll(sub)
			close(done)
			conn.Close()
		}()

		go writePump(conn, sub, done)

		conn.SetReadLimit(maxFrame)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			var f clientFrame
			if err := conn.ReadJSON(&f); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					l.Debug("connection_closed", "user_id", p.UserID, "error", err)
				}
				return nil
			}

			switch f.Type {
			case TypeJoin:
				if !p.IsAdmin() && f.Group != GroupFor(p.UserID) {
					reply(sub, Message{Type: TypeError, Group: f.Group, Error: "forbidden"})
					continue
				}
				hub.Join(f.Group, sub)
				reply(sub, Message{Type: TypeJoined, Group: f.Group})
			case TypeLeave:
				hub.Leave(f.Group, sub)
				reply(sub, Message{Type: TypeLeft, Group: f.Group})
			default:
				reply(sub, Message{Type: TypeError, Error: "unknown frame type"})
			}
		}
	}
}

func reply(s *Subscriber, msg Message) {
	select {
	case s.C <- msg:
	default:
	}
}

func writePump(conn *websocket.Conn, sub *Subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
