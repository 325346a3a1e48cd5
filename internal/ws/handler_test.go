package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/DoyleJ11/rink-sequences/internal/hub"
	"github.com/DoyleJ11/rink-sequences/internal/session"
	"github.com/DoyleJ11/rink-sequences/internal/types"
	pkgtypes "github.com/DoyleJ11/rink-sequences/pkg/types"
)

type oneGame struct{}

func (oneGame) GetGames(context.Context) ([]pkgtypes.Game, error) {
	return []pkgtypes.Game{{Date: "2023-01-10", HomeTeam: "BOS", AwayTeam: "TOR"}}, nil
}
func (oneGame) GetSequences(context.Context, string) ([]pkgtypes.Sequence, error) {
	return []pkgtypes.Sequence{}, nil
}
func (oneGame) GetPlays(context.Context, string) ([]pkgtypes.Play, error) {
	return []pkgtypes.Play{}, nil
}

func setup(t *testing.T) (*hub.Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, session.Config{Fetcher: oneGame{}})
	srv := httptest.NewServer(Handler(h, Options{}))
	t.Cleanup(srv.Close)
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + sessionID
	conn, _, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil reads frames until one has the wanted type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg types.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad frame %s: %v", data, err)
		}
		if msg.Type == want {
			return msg
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.Write(context.Background(), websocket.MessageText, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHandler_MissingSession(t *testing.T) {
	_, srv := setup(t)
	resp, err := srv.Client().Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}

func TestHandler_UnknownSession(t *testing.T) {
	_, srv := setup(t)
	resp, err := srv.Client().Get(srv.URL + "/ws?session=nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestHandler_HubClosed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, session.Config{Fetcher: oneGame{}})
	srv := httptest.NewServer(Handler(h, Options{}))
	t.Cleanup(srv.Close)
	cancel()

	// the hub may answer one last lookup before it sees the cancel
	deadline := time.Now().Add(time.Second)
	for {
		resp, err := srv.Client().Get(srv.URL + "/ws?session=nope")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == 503 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("want 503 once the hub is closed, got %d", resp.StatusCode)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandler_SnapshotOnJoin(t *testing.T) {
	h, srv := setup(t)
	s, err := h.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	conn := dial(t, srv, s.ID())
	msg := readUntil(t, conn, types.ServerSnapshot)
	if msg.View == nil {
		t.Fatalf("snapshot without view")
	}
}

func TestHandler_ActionsAndErrors(t *testing.T) {
	h, srv := setup(t)
	s, _ := h.Create(context.Background())
	conn := dial(t, srv, s.ID())
	readUntil(t, conn, types.ServerSnapshot)

	write(t, conn, `{not json`)
	if msg := readUntil(t, conn, types.ServerError); msg.Error != "bad json" {
		t.Fatalf("want bad json error, got %q", msg.Error)
	}

	write(t, conn, `{"type":"PlaysLoaded"}`)
	if msg := readUntil(t, conn, types.ServerError); !strings.Contains(msg.Error, "unknown message type") {
		t.Fatalf("want unknown type error, got %q", msg.Error)
	}

	write(t, conn, `{"type":"SelectPeriod","period":9}`)
	if msg := readUntil(t, conn, types.ServerError); msg.Error != "invalid period" {
		t.Fatalf("want invalid period, got %q", msg.Error)
	}

	write(t, conn, `{"type":"SelectPeriod","period":2}`)
	for {
		msg := readUntil(t, conn, types.ServerSnapshot)
		if msg.View.Period == 2 {
			return
		}
	}
}
