package session

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"treasurehunt/game"
	"treasurehunt/protocol"
	"treasurehunt/storage"
	"treasurehunt/telemetry"
)

const (
	recordTimeout      = 5 * time.Second
	defaultIdleTimeout = 2 * time.Minute
)

var ErrStopped = errors.New("session stopped")

// Recorder receives finished hunts. storage.ResultStore satisfies it.
type Recorder interface {
	RecordResult(ctx context.Context, r storage.Result) (int64, error)
}

type Options struct {
	Tuning      game.Tuning
	TickHz      int
	BroadcastHz int
	Seed        int64     // 0 picks a random seed per session
	Rand        game.Rand // overrides Seed; not safe to share across running sessions
	NewRand     func() game.Rand // per-session source, used when Rand is nil
	Recorder    Recorder
	Tracer      *telemetry.SessionTracer
	Logger      telemetry.Logger
	Now         func() time.Time
	IdleTimeout time.Duration // how long a session may sit with no players
}

func (o Options) withDefaults() Options {
	if o.Tuning == (game.Tuning{}) {
		o.Tuning = game.DefaultTuning()
	}
	if o.TickHz <= 0 {
		o.TickHz = protocol.SimTickHz
	}
	if o.BroadcastHz <= 0 {
		o.BroadcastHz = protocol.BroadcastHz
	}
	if o.Tracer == nil {
		o.Tracer = telemetry.NewSessionTracer(nil)
	}
	o.Logger = telemetry.OrDefault(o.Logger)
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = defaultIdleTimeout
	}
	return o
}

// Info is a point-in-time summary readable from any goroutine.
type Info struct {
	Code    string `json:"code"`
	Players int    `json:"players"`
	Phase   string `json:"phase"`
	Score   int    `json:"score"`
}

// Session owns one treasure hunt. Every command is handled on the Run
// goroutine, so the game state needs no locking.
type Session struct {
	Inbox chan any

	Code    string            // join code (e.g. "ABC234")
	OnEmpty func(code string) // called when last player leaves

	opts           Options
	broadcastEvery int
	rng            game.Rand
	state          *game.State
	clients        map[string]Conn
	names          map[string]string
	owner          string
	nextID         int
	tick           int
	taps           int
	startedAt      time.Time
	despawnAt      map[int]time.Time
	emptySince     time.Time

	ctx  context.Context
	span trace.Span

	players atomic.Int32
	phase   atomic.Uint32
	score   atomic.Int32

	quit     chan struct{}
	stopOnce sync.Once
	exited   chan struct{}
	records  *sync.WaitGroup // in-flight result writes
}

func New(opts Options) *Session {
	opts = opts.withDefaults()
	broadcastEvery := opts.TickHz / opts.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	rng := opts.Rand
	if rng == nil && opts.NewRand != nil {
		rng = opts.NewRand()
	}
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = newSeed()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Session{
		Inbox:          make(chan any, 256),
		opts:           opts,
		broadcastEvery: broadcastEvery,
		rng:            rng,
		state:          game.NewState(opts.Tuning),
		clients:        make(map[string]Conn),
		names:          make(map[string]string),
		nextID:         1,
		despawnAt:      make(map[int]time.Time),
		ctx:            context.Background(),
		quit:           make(chan struct{}),
		exited:         make(chan struct{}),
		records:        new(sync.WaitGroup),
	}
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// Done is closed once Stop has been called.
func (s *Session) Done() <-chan struct{} {
	return s.quit
}

// Exited is closed once Run has returned. No result write starts after it.
func (s *Session) Exited() <-chan struct{} {
	return s.exited
}

// WaitRecords blocks until every result write started by this session
// has finished.
func (s *Session) WaitRecords() {
	s.records.Wait()
}

// Submit queues a command. It reports false once the session has stopped.
func (s *Session) Submit(cmd any) bool {
	select {
	case <-s.quit:
		return false
	case s.Inbox <- cmd:
		return true
	}
}

// Join registers conn and waits for the assigned player id.
func (s *Session) Join(conn Conn, name string) (JoinResult, error) {
	reply := make(chan JoinResult, 1)
	if !s.Submit(Join{Conn: conn, Name: name, Reply: reply}) {
		return JoinResult{}, ErrStopped
	}
	select {
	case res := <-reply:
		return res, nil
	case <-s.quit:
		return JoinResult{}, ErrStopped
	}
}

// NumPlayers returns the current number of connected clients.
func (s *Session) NumPlayers() int {
	return int(s.players.Load())
}

func (s *Session) Info() Info {
	return Info{
		Code:    s.Code,
		Players: s.NumPlayers(),
		Phase:   game.Phase(s.phase.Load()).String(),
		Score:   int(s.score.Load()),
	}
}

func (s *Session) Run() {
	defer close(s.exited)
	ticker := time.NewTicker(time.Second / time.Duration(s.opts.TickHz))
	defer ticker.Stop()

	s.beginGame()
	defer s.shutdown()

	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.Inbox:
			s.handleCommand(cmd)
		case <-ticker.C:
			s.step()
		}
	}
}

func (s *Session) beginGame() {
	s.ctx, s.span = s.opts.Tracer.Start(context.Background(), s.Code)
	if s.emptySince.IsZero() && len(s.clients) == 0 {
		s.emptySince = s.opts.Now()
	}
}

func (s *Session) shutdown() {
	if s.span != nil {
		s.span.End()
	}
	for id, c := range s.clients {
		_ = c.Close()
		delete(s.clients, id)
	}
	s.players.Store(0)
}

func (s *Session) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		s.handleJoin(c)
	case Anchor:
		if !s.known(c.PlayerID) {
			return
		}
		if !s.state.AnchorEstablished {
			s.startedAt = s.opts.Now()
			s.opts.Logger.Printf("session %s: anchor placed by %s", s.Code, c.PlayerID)
		}
		game.EstablishAnchor(s.state)
		s.broadcastState()
	case Tracking:
		if !s.known(c.PlayerID) {
			return
		}
		game.SetTracking(s.state, c.Active)
	case Tap:
		if !s.known(c.PlayerID) {
			return
		}
		s.taps++
		s.apply(game.Tap(s.state, s.rng))
	case Pose:
		if !s.known(c.PlayerID) {
			return
		}
		s.apply(game.UpdatePositions(s.state, c.Player, c.Positions))
	case Restart:
		if !s.known(c.PlayerID) {
			return
		}
		s.restart()
	case Leave:
		s.handleLeave(c.PlayerID)
	default:
		s.opts.Logger.Printf("session %s: unknown command %T", s.Code, cmd)
	}
}

func (s *Session) known(playerID string) bool {
	_, ok := s.clients[playerID]
	return ok
}

func (s *Session) handleJoin(c Join) {
	idNum := s.nextID
	playerID := fmt.Sprintf("p%d", idNum)
	s.nextID++
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Player %d", idNum)
	}
	s.clients[playerID] = c.Conn
	s.names[playerID] = name
	if s.owner == "" {
		s.owner = playerID
	}
	s.emptySince = time.Time{}
	s.players.Store(int32(len(s.clients)))

	s.sendTo(playerID, protocol.MsgWelcome, protocol.Welcome{
		PlayerID:      playerID,
		Code:          s.Code,
		MaxTreasures:  game.MaxTreasures,
		CollectRadius: s.state.Tuning.CollectRadius,
		TickHz:        s.opts.TickHz,
	})
	s.sendTo(playerID, protocol.MsgState, protocol.BuildState(s.state))
	c.Reply <- JoinResult{PlayerID: playerID, Code: s.Code}
}

func (s *Session) handleLeave(playerID string) {
	c, ok := s.clients[playerID]
	if !ok {
		return
	}
	_ = c.Close()
	s.removePlayer(playerID)
}

func (s *Session) removePlayer(playerID string) {
	delete(s.clients, playerID)
	delete(s.names, playerID)
	if s.owner == playerID {
		s.owner = ""
		for id := range s.clients {
			s.owner = id
			break
		}
	}
	s.players.Store(int32(len(s.clients)))
	if len(s.clients) > 0 {
		return
	}
	s.emptySince = s.opts.Now()
	if s.OnEmpty != nil && s.Code != "" {
		s.OnEmpty(s.Code)
	}
}

// apply turns game events into wire messages and side effects.
func (s *Session) apply(events []game.Event) {
	s.phase.Store(uint32(s.state.Phase))
	s.score.Store(int32(s.state.Score))
	for _, ev := range events {
		telemetry.RecordGameEvent(s.span, ev)
		switch ev.Kind {
		case game.TreasureSpawned:
			s.broadcast(protocol.MsgSpawned, protocol.Spawned{Treasure: protocol.SnapshotTreasure(ev.Treasure)})
		case game.PhaseChanged:
			s.opts.Logger.Printf("session %s: phase %s", s.Code, ev.Phase)
			s.broadcast(protocol.MsgPhase, protocol.Phase{
				Phase:           ev.Phase.String(),
				Status:          game.StatusText(s.state),
				TreasuresPlaced: s.state.TreasuresPlaced,
				Score:           ev.Score,
			})
		case game.TreasureCollected:
			s.despawnAt[ev.Treasure.Index] = s.opts.Now().Add(game.CollectAnimation)
			s.broadcast(protocol.MsgCollected, protocol.Collected{
				Treasure: protocol.SnapshotTreasure(ev.Treasure),
				Score:    ev.Score,
				Status:   game.StatusText(s.state),
			})
		case game.SessionComplete:
			s.complete(ev)
		}
	}
}

func (s *Session) complete(ev game.Event) {
	now := s.opts.Now()
	started := s.startedAt
	if started.IsZero() {
		started = now
	}
	elapsed := now.Sub(started)
	s.opts.Logger.Printf("session %s: all %d treasures found in %s", s.Code, ev.Score, elapsed.Round(time.Millisecond))
	s.broadcast(protocol.MsgComplete, protocol.Complete{Score: ev.Score, ElapsedMs: elapsed.Milliseconds()})

	if s.opts.Recorder == nil {
		return
	}
	result := storage.Result{
		SessionCode: s.Code,
		PlayerName:  s.names[s.owner],
		Treasures:   ev.Score,
		Taps:        s.taps,
		StartedAt:   started,
		CompletedAt: now,
	}
	s.records.Add(1)
	go func(ctx context.Context) {
		defer s.records.Done()
		s.record(ctx, result)
	}(s.ctx)
}

func (s *Session) record(ctx context.Context, result storage.Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if _, err := s.opts.Recorder.RecordResult(ctx, result); err != nil {
		s.opts.Logger.Printf("session %s: record result: %v", s.Code, err)
		telemetry.RecordError(trace.SpanFromContext(ctx), err)
	}
}

func (s *Session) restart() {
	s.opts.Logger.Printf("session %s: restart", s.Code)
	if s.span != nil {
		s.span.End()
	}
	s.state = game.NewState(s.opts.Tuning)
	s.taps = 0
	s.startedAt = time.Time{}
	clear(s.despawnAt)
	s.beginGame()
	s.phase.Store(uint32(s.state.Phase))
	s.score.Store(0)
	s.broadcast(protocol.MsgPhase, protocol.Phase{
		Phase:  s.state.Phase.String(),
		Status: game.StatusText(s.state),
	})
	s.broadcastState()
}

func (s *Session) step() {
	s.tick++
	now := s.opts.Now()
	for idx, at := range s.despawnAt {
		if now.Before(at) {
			continue
		}
		delete(s.despawnAt, idx)
		if game.Release(s.state, idx) {
			s.broadcast(protocol.MsgDespawned, protocol.Despawned{Index: idx})
		}
	}
	if s.tick%s.broadcastEvery == 0 {
		s.broadcastState()
	}
	if len(s.clients) == 0 && !s.emptySince.IsZero() && now.Sub(s.emptySince) >= s.opts.IdleTimeout {
		s.opts.Logger.Printf("session %s: idle for %s, closing", s.Code, s.opts.IdleTimeout)
		s.emptySince = time.Time{}
		if s.OnEmpty != nil && s.Code != "" {
			s.OnEmpty(s.Code)
		} else {
			s.Stop()
		}
	}
}

func (s *Session) broadcastState() {
	s.broadcast(protocol.MsgState, protocol.BuildState(s.state))
}

func (s *Session) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		s.opts.Logger.Printf("session %s: encode %s: %v", s.Code, t, err)
		return
	}

	var failed []string
	for id, c := range s.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		s.opts.Logger.Printf("session %s: dropping %s after failed send", s.Code, id)
		if c, ok := s.clients[id]; ok {
			_ = c.Close()
		}
		s.removePlayer(id)
	}
}

func (s *Session) sendTo(playerID, t string, payload any) {
	c, ok := s.clients[playerID]
	if !ok {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		s.opts.Logger.Printf("session %s: encode %s: %v", s.Code, t, err)
		return
	}
	if err := c.Send(b); err != nil {
		_ = c.Close()
		s.removePlayer(playerID)
	}
}
