package stream

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/middleware"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
	"github.com/zhouzirui/z-notes/web/pkg/utils"
)

const (
	defaultRefresh   = 30 * time.Second
	defaultKeepAlive = 15 * time.Second
)

// Handler streams page state as Server-Sent Events. It is read only: the
// page is mounted once and then reloaded on a fixed interval.
type Handler struct {
	api       page.API
	log       logrus.FieldLogger
	refresh   time.Duration
	keepAlive time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithRefresh sets how often the note list is reloaded.
func WithRefresh(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.refresh = d
		}
	}
}

// WithKeepAlive sets the heartbeat interval.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// New creates a stream handler
func New(client page.API, log logrus.FieldLogger, opts ...Option) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Handler{
		api:       client,
		log:       log,
		refresh:   defaultRefresh,
		keepAlive: defaultKeepAlive,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册SSE路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	streamID := uuid.NewString()
	log := h.log.WithField("stream_id", streamID)

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var seq int
	send := func(event string, data any) {
		seq++
		if err := utils.SendSSEEvent(w, flusher, event, strconv.Itoa(seq), data); err != nil {
			log.WithError(err).Debug("sse write failed")
			cancel()
		}
	}

	p := page.New(h.api, middleware.TokenFrom(r.Context()),
		page.WithObserver(func(s page.State) { send("state", s) }),
		page.WithLogger(log),
	)

	send("state", p.Snapshot())
	if err := p.Mount(ctx); err != nil {
		log.WithError(err).Debug("mount finished with error")
	}
	if p.Snapshot().Phase != page.PhaseReady {
		send("end", map[string]string{"reason": "not signed in"})
		return
	}

	log.Info("event stream opened")
	defer log.Info("event stream closed")

	refresh := time.NewTicker(h.refresh)
	defer refresh.Stop()
	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			if err := p.Load(ctx); err != nil {
				log.WithError(err).Debug("refresh failed")
			}
		case <-keepAlive.C:
			if err := utils.SendSSEComment(w, flusher, "ping"); err != nil {
				return
			}
		}
	}
}
