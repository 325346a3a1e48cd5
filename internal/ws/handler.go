package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/hub"
	"github.com/DoyleJ11/rink-sequences/internal/session"
	"github.com/DoyleJ11/rink-sequences/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
	outboxSize   = 16
)

var errBadJSON = errors.New("bad json")

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*".
	OriginPatterns []string
	Logger         *zap.Logger
}

// Handler serves GET /ws?session={id}. It pushes a StateSnapshot on every
// state change and accepts viewer actions as ClientMessage frames.
func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ws")

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		if id == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		s, err := h.Get(r.Context(), id)
		if err != nil {
			logger.Warn("session lookup failed", zap.String("session_id", id), zap.Error(err))
			http.Error(w, "session lookup failed", http.StatusServiceUnavailable)
			return
		}
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, outboxSize)
		clientID := uuid.NewString()
		log := logger.With(zap.String("session_id", id), zap.String("client_id", clientID))

		select {
		case s.Inbox() <- session.Join{ClientID: clientID, Outbox: out}:
		case <-s.Done():
			return
		}
		defer func() {
			select {
			case s.Inbox() <- session.Leave{ClientID: clientID}:
			case <-s.Done():
			}
		}()
		log.Debug("client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				if err := writeJSON(writeCtx, conn, types.Snapshot(snap.Version, snap.View)); err != nil {
					log.Debug("write failed", zap.Error(err))
				}
			}
			// Outbox closed: dropped as slow or the session ended.
			conn.Close(websocket.StatusGoingAway, "session closed")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeJSON(r.Context(), conn, types.Error(errBadJSON))
				continue
			}

			msg, err := types.ToMsg(cm)
			if err != nil {
				writeJSON(r.Context(), conn, types.Error(err))
				continue
			}

			// Success is reported through the broadcast snapshot.
			if _, err := s.Do(r.Context(), msg); err != nil {
				if errors.Is(err, session.ErrClosed) {
					return
				}
				writeJSON(r.Context(), conn, types.Error(err))
			}
		}
	}
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
