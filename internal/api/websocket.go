package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/photo-cycler/backend/internal/models"
)

const writeWait = 10 * time.Second

// WebSocketHandler serves the thing over a websocket: clients send
// setProperty messages and receive a propertyStatus for every accepted write.
type WebSocketHandler struct {
	thing    PropertyStore
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewWebSocketHandler creates a new websocket handler for t
func NewWebSocketHandler(t PropertyStore, logger *logrus.Logger) *WebSocketHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WebSocketHandler{
		thing: t,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The companion page may be served from another origin
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		logger: logger,
	}
}

// wsConn serialises writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(messageType models.MessageType, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s message: %w", messageType, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(models.ThingMessage{MessageType: messageType, Data: raw})
}

func (c *wsConn) sendError(apiErr *APIError) error {
	message := apiErr.Message
	if apiErr.Details != "" {
		message += ": " + apiErr.Details
	}
	return c.send(models.MessageTypeError, models.ErrorData{
		Status:  fmt.Sprintf("%d %s", apiErr.Status, http.StatusText(apiErr.Status)),
		Message: message,
	})
}

// HandleWebSocket upgrades the HTTP connection and runs the message loop
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	conn := &wsConn{ws: ws}
	log := wsh.logger.WithField("remote", c.RealIP())
	log.Debug("websocket client connected")

	updates, unsubscribe := wsh.thing.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for status := range updates {
			if err := conn.send(models.MessageTypePropertyStatus, status); err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	ctx := c.Request().Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket connection error")
			}
			break
		}

		var msg models.ThingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.sendError(NewBadRequestError("invalid message", err))
			continue
		}
		wsh.handleMessage(ctx, conn, msg)
	}

	log.Debug("websocket client disconnected")
	return nil
}

func (wsh *WebSocketHandler) handleMessage(ctx context.Context, conn *wsConn, msg models.ThingMessage) {
	switch msg.MessageType {
	case models.MessageTypeSetProperty:
		var values map[string]interface{}
		if err := json.Unmarshal(msg.Data, &values); err != nil || len(values) == 0 {
			conn.sendError(NewBadRequestError("setProperty requires a data object", err))
			return
		}

		for name, value := range values {
			if _, err := wsh.thing.SetProperty(ctx, name, value); err != nil {
				wsh.logger.WithError(err).WithField("property", name).Debug("websocket property write rejected")
				conn.sendError(propertyError(name, err))
			}
		}
	default:
		conn.sendError(NewBadRequestError(fmt.Sprintf("unknown messageType: %q", msg.MessageType), nil))
	}
}
