package hub

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/session"
)

var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// CreateSession starts a new session under a fresh id.
type CreateSession struct {
	Reply chan *session.Session
}

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

type RemoveSession struct {
	ID string
}

type CountSessions struct {
	Reply chan int
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (CountSessions) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns every live session. Session configs are built from a template;
// the hub fills in the id.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	template session.Config
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, template session.Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	logger := template.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		template: template,
		logger:   logger.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Create is a blocking helper around CreateSession.
func (h *Hub) Create(ctx context.Context) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, CreateSession{Reply: reply}, reply)
}

// Get returns the session with id, or nil.
func (h *Hub) Get(ctx context.Context, id string) (*session.Session, error) {
	reply := make(chan *session.Session, 1)
	return h.ask(ctx, GetSession{ID: id, Reply: reply}, reply)
}

func (h *Hub) ask(ctx context.Context, m HubMsg, reply chan *session.Session) (*session.Session, error) {
	select {
	case h.inbox <- m:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				cfg := h.template
				cfg.ID = uuid.NewString()
				s := session.New(h.ctx, cfg)
				h.sessions[cfg.ID] = s
				go h.reap(s)
				h.logger.Info("session created", zap.String("session_id", cfg.ID))
				msg.Reply <- s

			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case RemoveSession:
				if s, ok := h.sessions[msg.ID]; ok {
					stop(s)
					delete(h.sessions, msg.ID)
					h.logger.Info("session removed", zap.String("session_id", msg.ID))
				}

			case CountSessions:
				msg.Reply <- len(h.sessions)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// reap unregisters s once it ends on its own, e.g. after going idle.
func (h *Hub) reap(s *session.Session) {
	select {
	case <-s.Done():
	case <-h.ctx.Done():
		return
	}
	select {
	case h.inbox <- RemoveSession{ID: s.ID()}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) shutdown() {
	for id, s := range h.sessions {
		stop(s)
		delete(h.sessions, id)
	}
	h.cancel()
}

func stop(s *session.Session) {
	select {
	case s.Inbox() <- session.Shutdown{}:
	case <-s.Done():
	}
}
