package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
	"github.com/DoyleJ11/rink-sequences/internal/engine"
)

const DefaultFetchTimeout = 20 * time.Second

type Msg interface{ isSessionMsg() }

// Dispatch applies a user message. Reply, when set, must be buffered.
type Dispatch struct {
	Msg   engine.Msg
	Reply chan Result
}

func (Dispatch) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan Status
}

func (GetState) isSessionMsg() {}

// loaded carries a fetch result back into the loop.
type loaded struct {
	Msg engine.Msg
}

func (loaded) isSessionMsg() {}

type Snapshot struct {
	Version int         `json:"version"`
	View    engine.View `json:"view"`
}

type Result struct {
	Snapshot Snapshot
	Err      error
}

type Status struct {
	ID         string
	Version    int
	NumClients int
	Stale      int // load results dropped for a newer generation
	State      engine.State
}

// Recorder persists every applied message in order.
type Recorder interface {
	Record(ctx context.Context, sessionID string, seq uint64, msg engine.Msg) error
}

type Config struct {
	ID           string
	Rules        engine.Rules
	Fetcher      dataapi.Fetcher
	Recorder     Recorder
	Logger       *zap.Logger
	FetchTimeout time.Duration
	// IdleTimeout ends a session that has had no clients and no requests
	// for this long. Zero keeps it until Shutdown.
	IdleTimeout  time.Duration
}

// Session owns the view state of one viewer. All mutation happens on the
// loop goroutine; loads run on their own goroutines and report back through
// the inbox.
type Session struct {
	id       string
	inbox    chan Msg
	state    engine.State
	version  int
	seq      uint64
	stale    int
	clients  map[string]chan Snapshot
	fetcher  dataapi.Fetcher
	recorder Recorder
	timeout  time.Duration
	idle     time.Duration
	logger   *zap.Logger
	idleT    *time.Timer
	ctx      context.Context
	cancel   context.CancelFunc
}

// New starts the session loop and kicks off the games load.
func New(parent context.Context, cfg Config) *Session {
	ctx, cancel := context.WithCancel(parent)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	s := &Session{
		id:       cfg.ID,
		inbox:    make(chan Msg, 64),
		state:    engine.NewState(cfg.Rules),
		clients:  make(map[string]chan Snapshot),
		fetcher:  cfg.Fetcher,
		recorder: cfg.Recorder,
		timeout:  timeout,
		idle:     cfg.IdleTimeout,
		logger:   logger.Named("session").With(zap.String("session_id", cfg.ID)),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.inbox <- Dispatch{Msg: engine.Msg{Type: engine.MsgLoadGames}}
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Expose the inbox so the transport layers can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Do dispatches msg and waits for the outcome.
func (s *Session) Do(ctx context.Context, msg engine.Msg) (Snapshot, error) {
	reply := make(chan Result, 1)
	if err := s.send(ctx, Dispatch{Msg: msg, Reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case res := <-reply:
		return res.Snapshot, res.Err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-s.ctx.Done():
		return Snapshot{}, ErrClosed
	}
}

// Status returns a consistent copy of the session internals.
func (s *Session) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := s.send(ctx, GetState{Reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-s.ctx.Done():
		return Status{}, ErrClosed
	}
}

var ErrClosed = errors.New("session closed")

func (s *Session) send(ctx context.Context, m Msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}
}

func (s *Session) loop() {
	var idleC <-chan time.Time
	if s.idle > 0 {
		s.idleT = time.NewTimer(s.idle)
		defer s.idleT.Stop()
		idleC = s.idleT.C
	}

	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-idleC:
			if len(s.clients) > 0 {
				s.touch()
				continue
			}
			s.logger.Info("session idle, shutting down", zap.Duration("idle", s.idle))
			s.shutdown()
			return

		case m := <-s.inbox:
			if _, ok := m.(loaded); !ok {
				s.touch()
			}
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.snapshot()

			case Leave:
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case Dispatch:
				err := s.apply(msg.Msg)
				if msg.Reply != nil {
					msg.Reply <- Result{Snapshot: s.snapshot(), Err: err}
				}

			case loaded:
				if err := s.apply(msg.Msg); errors.Is(err, engine.ErrStaleResult) {
					s.stale++
					s.logger.Debug("dropped stale result", zap.String("type", string(msg.Msg.Type)), zap.Uint64("gen", msg.Msg.Gen))
				}

			case GetState:
				msg.Reply <- Status{
					ID:         s.id,
					Version:    s.version,
					NumClients: len(s.clients),
					Stale:      s.stale,
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs msg through the reducer. On success the state is replaced,
// the message recorded, subscribers notified and loads started.
func (s *Session) apply(msg engine.Msg) error {
	effects, next, err := engine.Apply(s.state, msg)
	if err != nil {
		return err
	}

	s.state = next
	s.seq++
	if s.recorder != nil {
		if err := s.recorder.Record(s.ctx, s.id, s.seq, msg); err != nil {
			s.logger.Warn("record failed", zap.Uint64("seq", s.seq), zap.Error(err))
		}
	}

	s.version++
	s.broadcast(s.snapshot())

	for _, eff := range effects {
		go s.run(eff)
	}
	return nil
}

// run performs one load and posts the tagged result back to the loop.
func (s *Session) run(eff engine.Effect) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var out engine.Msg
	switch eff.Type {
	case engine.EffFetchGames:
		games, err := s.fetcher.GetGames(ctx)
		out = engine.Msg{Type: engine.MsgGamesLoaded, Gen: eff.Gen, Games: games}
		if err != nil {
			out = engine.Msg{Type: engine.MsgGamesFailed, Gen: eff.Gen, Err: err.Error()}
		}

	case engine.EffFetchSequences:
		seqs, err := s.fetcher.GetSequences(ctx, eff.GameDate)
		out = engine.Msg{Type: engine.MsgSequencesLoaded, Gen: eff.Gen, Sequences: seqs}
		if err != nil {
			out = engine.Msg{Type: engine.MsgSequencesFailed, Gen: eff.Gen, Err: err.Error()}
		}

	case engine.EffFetchPlays:
		plays, err := s.fetcher.GetPlays(ctx, eff.SequenceID)
		out = engine.Msg{Type: engine.MsgPlaysLoaded, Gen: eff.Gen, Plays: plays}
		if err != nil {
			out = engine.Msg{Type: engine.MsgPlaysFailed, Gen: eff.Gen, Err: err.Error()}
		}

	default:
		return
	}

	if out.Err != "" {
		s.logger.Warn("load failed", zap.String("effect", string(eff.Type)), zap.String("error", out.Err))
	}

	select {
	case s.inbox <- loaded{Msg: out}:
	case <-s.ctx.Done():
	}
}

// touch pushes back the idle deadline.
func (s *Session) touch() {
	if s.idleT != nil {
		s.idleT.Reset(s.idle)
	}
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{Version: s.version, View: engine.Derive(s.state)}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}
