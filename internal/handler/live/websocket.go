package live

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/metrics"
	"github.com/zhouzirui/z-notes/web/internal/middleware"
	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Handler 实时页面通道：客户端发送动作，服务端推送页面状态
type Handler struct {
	api      page.API
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// New 创建实时页面处理器
func New(client page.API, log logrus.FieldLogger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		api:     client,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/live", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type selectMessage struct {
	ID note.ID `json:"id"`
}

type outgoingMessage struct {
	Type         string      `json:"type"`
	ConnectionID string      `json:"connectionId"`
	Data         interface{} `json:"data,omitempty"`
	Timestamp    int64       `json:"timestamp"`
}

type connection struct {
	id   string
	conn *websocket.Conn
	page *page.Page
	log  *logrus.Entry
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFrom(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("live upgrade failed")
		return
	}
	defer conn.Close()

	h.metrics.LiveOpened()
	defer h.metrics.LiveClosed()

	c := &connection{
		id:   uuid.NewString(),
		conn: conn,
	}
	c.log = h.log.WithField("connection_id", c.id)
	c.page = page.New(h.api, token,
		page.WithObserver(func(s page.State) { h.send(c, "state", s) }),
		page.WithLogger(c.log),
	)
	c.log.Info("live connection opened")
	defer c.log.Info("live connection closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(c, "state", c.page.Snapshot())
	if err := c.page.Mount(ctx); err != nil {
		c.log.WithError(err).Debug("mount finished with error")
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("live read failed")
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		h.handleMessage(ctx, c, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, c *connection, msg *inboundMessage) {
	switch msg.Type {
	case "refresh":
		h.logResult(c, msg.Type, c.page.Load(ctx))
	case "draft":
		var draft note.Draft
		if err := json.Unmarshal(msg.Data, &draft); err != nil {
			h.sendError(c, "invalid draft payload")
			return
		}
		c.page.SetDraft(draft)
	case "create":
		if hasPayload(msg.Data) {
			var draft note.Draft
			if err := json.Unmarshal(msg.Data, &draft); err != nil {
				h.sendError(c, "invalid draft payload")
				return
			}
			c.page.SetDraft(draft)
		}
		h.logResult(c, msg.Type, c.page.Submit(ctx))
	case "select":
		var sel selectMessage
		if err := json.Unmarshal(msg.Data, &sel); err != nil || sel.ID == "" {
			h.sendError(c, "invalid select payload")
			return
		}
		if !c.page.Select(sel.ID) {
			h.sendError(c, "note not found: "+string(sel.ID))
		}
	case "close":
		c.page.Close()
	default:
		h.sendError(c, "unsupported message type: "+msg.Type)
	}
}

// hasPayload treats a missing data field and an explicit null alike.
func hasPayload(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && !bytes.Equal(data, []byte("null"))
}

func (h *Handler) logResult(c *connection, action string, err error) {
	if err != nil {
		c.log.WithError(err).WithField("action", action).Debug("live action failed")
	}
}

func (h *Handler) send(c *connection, kind string, data interface{}) {
	msg := outgoingMessage{
		Type:         kind,
		ConnectionID: c.id,
		Data:         data,
		Timestamp:    time.Now().Unix(),
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.log.WithError(err).Debug("live write failed")
	}
}

func (h *Handler) sendError(c *connection, message string) {
	h.send(c, "error", map[string]string{"message": message})
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
