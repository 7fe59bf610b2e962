// Package liveview streams screen snapshots over a websocket and relays the
// client's filter changes, refreshes, actions and confirmation answers.
package liveview

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"job-tracker/internal/export"
	"job-tracker/internal/screens"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/server/middleware"
	"job-tracker/internal/shared/server/respond"
	"job-tracker/internal/shared/telemetry"
	"job-tracker/internal/users"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 45 * time.Second
	maxMessage   = 8 << 10
)

// Handler upgrades /live/:screen requests.
type Handler struct {
	Deps     screens.Deps
	upgrader websocket.Upgrader
}

// NewHandler builds a Handler. allowedOrigins limits cross-origin upgrades;
// empty allows any origin.
func NewHandler(deps screens.Deps, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		Deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// RegisterRoutes attaches the live route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/live/:screen", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	perms := middleware.PermissionsFromContext(c)
	scr, err := screens.Build(c.Param("screen"), h.Deps, perms)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown screen", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		telemetry.Warn("liveview.upgrade_failed", map[string]any{"error": err})
		return
	}
	metrics.LiveSessionOpened()
	defer metrics.LiveSessionClosed()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &liveSession{
		conn:    conn,
		screen:  scr,
		pending: make(map[string]chan bool),
	}
	s.actions = &screens.Actions{
		Deps:    h.Deps,
		Perms:   perms,
		Confirm: s,
		Notify:  s,
		Refresh: scr.Refresh,
	}

	telemetry.Info("liveview.opened", map[string]any{
		"screen":  scr.Name(),
		"user_id": middleware.UserIDFromContext(c),
	})
	s.run(ctx, cancel)
	telemetry.Info("liveview.closed", map[string]any{"screen": scr.Name()})
}

type clientMessage struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
	Action string `json:"action,omitempty"`
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok,omitempty"`
	Format string `json:"format,omitempty"`
}

type toast struct {
	Message    string `json:"message"`
	DurationMs int64  `json:"durationMs"`
	Error      bool   `json:"error"`
}

type download struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type serverMessage struct {
	Type     string          `json:"type"`
	Snapshot *screens.Frame  `json:"snapshot,omitempty"`
	Toast    *toast          `json:"toast,omitempty"`
	ID       string          `json:"id,omitempty"`
	Dialog   *screens.Dialog `json:"dialog,omitempty"`
	Download *download       `json:"download,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type liveSession struct {
	conn    *websocket.Conn
	screen  screens.Screen
	actions *screens.Actions

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan bool
	filters map[string]string
}

func (s *liveSession) run(ctx context.Context, cancel context.CancelFunc) {
	frames := s.screen.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx, frames)
	}()

	s.readLoop(ctx)
	cancel()
	wg.Wait()
	_ = s.conn.Close()
}

func (s *liveSession) writeLoop(ctx context.Context, frames <-chan screens.Frame) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case fr, ok := <-frames:
			if !ok {
				return
			}
			s.mu.Lock()
			s.filters = fr.Filters
			s.mu.Unlock()
			if err := s.send(serverMessage{Type: "snapshot", Snapshot: &fr}); err != nil {
				return
			}
		case <-ping.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-ctx.Done():
			// Drain so the final snapshot is not left in the pipe.
			for range frames {
			}
			return
		}
	}
}

func (s *liveSession) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxMessage)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				telemetry.Debug("liveview.read_failed", map[string]any{"error": err})
			}
			return
		}
		switch msg.Type {
		case "filter":
			s.screen.SetFilter(msg.Name, msg.Value)
		case "refresh":
			s.screen.Refresh()
		case "action":
			go s.runAction(ctx, msg)
		case "confirm":
			s.resolve(msg.ID, msg.OK)
		default:
			_ = s.send(serverMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

func (s *liveSession) runAction(ctx context.Context, msg clientMessage) {
	var err error
	switch {
	case msg.Action == "delete" && s.screen.Name() == screens.NameResumes:
		err = s.actions.DeleteResume(ctx, msg.ID)
	case msg.Action == "delete":
		err = s.actions.DeleteApplication(ctx, msg.ID)
	case msg.Action == "setDefault":
		err = s.actions.SetDefaultResume(ctx, msg.ID)
	case msg.Action == "toggleActive":
		err = s.actions.ToggleUserActive(ctx, msg.ID)
	case msg.Action == "toggleAdmin":
		err = s.actions.ToggleUserAdmin(ctx, msg.ID)
	case msg.Action == "export":
		err = s.export(ctx, msg.Format)
	default:
		_ = s.send(serverMessage{Type: "error", Error: "unknown action"})
		return
	}
	if err != nil && !errors.Is(err, screens.ErrCancelled) && !errors.Is(err, screens.ErrForbidden) {
		telemetry.Debug("liveview.action_failed", map[string]any{"action": msg.Action, "error": err})
	}
}

func (s *liveSession) export(ctx context.Context, rawFormat string) error {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		_ = s.send(serverMessage{Type: "error", Error: err.Error()})
		return err
	}
	s.mu.Lock()
	search, status := s.filters["search"], s.filters["status"]
	s.mu.Unlock()

	dl, err := s.actions.Export(ctx, format, s.screen.Name() == screens.NameAdmin, search, status)
	if err != nil {
		return err
	}
	return s.send(serverMessage{Type: "download", Download: &download{
		Filename:    dl.Filename,
		ContentType: dl.ContentType,
		Data:        dl.Data,
	}})
}

// Confirm implements screens.Confirmer by asking the client and waiting for
// its answer. A closed connection counts as a no.
func (s *liveSession) Confirm(ctx context.Context, d screens.Dialog) (bool, error) {
	id := uuid.NewString()
	answer := make(chan bool, 1)
	s.mu.Lock()
	s.pending[id] = answer
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	if err := s.send(serverMessage{Type: "confirm", ID: id, Dialog: &d}); err != nil {
		return false, err
	}
	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		return false, nil
	}
}

func (s *liveSession) resolve(id string, ok bool) {
	s.mu.Lock()
	ch, found := s.pending[id]
	s.mu.Unlock()
	if found {
		select {
		case ch <- ok:
		default:
		}
	}
}

// Notify implements screens.Notifier.
func (s *liveSession) Notify(_ context.Context, n users.Notice) {
	_ = s.send(serverMessage{Type: "toast", Toast: &toast{
		Message:    n.Message,
		DurationMs: n.Duration.Milliseconds(),
		Error:      n.Error,
	}})
}

func (s *liveSession) send(msg serverMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}
