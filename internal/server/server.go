// Package server exposes resolved rounds over HTTP and websockets. It holds no
// authoritative state: every response is recomputed from the configured
// constants and the clock.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/syncbingo/internal/config"
	"github.com/lox/syncbingo/internal/randutil"
	"github.com/lox/syncbingo/internal/round"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Server serves round views to spectators.
type Server struct {
	cfg      *config.Config
	resolver *round.Resolver
	logger   *log.Logger
	clock    quartz.Clock
	metrics  *Metrics
	seed     int64
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	connections map[*Connection]struct{}
	nextID      atomic.Int64

	hubMu     sync.Mutex
	hubRound  int64
	hubPrimed bool
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithMetrics uses m instead of a fresh collector set.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSeed seeds the generators behind random card assignment.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// NewServer validates cfg and builds a server for it.
func NewServer(cfg *config.Config, logger *log.Logger, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolver, err := round.NewResolver(cfg.Params())
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		logger:   logger.WithPrefix("server"),
		clock:    quartz.NewReal(),
		seed:     time.Now().UnixNano(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		connections: make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves HTTP on the configured address and drives the hub until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting spectator server", "addr", httpServer.Addr, "poll", s.cfg.PollInterval())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.RunHub(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeAll()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// RunHub pushes a fresh view to every watcher once per poll interval until
// ctx is cancelled.
func (s *Server) RunHub(ctx context.Context) error {
	s.Tick()
	w := s.clock.TickerFunc(ctx, s.cfg.PollInterval(), func() error {
		s.Tick()
		return nil
	}, "hub")
	if err := w.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Tick resolves the shared round, records rollovers, and refreshes every
// connected watcher.
func (s *Server) Tick() {
	now := s.clock.Now().Unix()
	v := s.resolve(now, round.Selection{})
	s.metrics.roundID.Set(float64(v.ID))

	s.hubMu.Lock()
	if s.hubPrimed && s.hubRound != v.ID {
		s.metrics.rollovers.Inc()
		s.logger.Info("Round rollover", "from", s.hubRound, "to", v.ID, "start", v.Window.Start, "advanced", v.Advanced)
	}
	s.hubRound, s.hubPrimed = v.ID, true
	s.hubMu.Unlock()

	for _, c := range s.snapshot() {
		c.refresh(now)
	}
}

func (s *Server) resolve(now int64, sel round.Selection) round.View {
	v := s.resolver.Resolve(now, sel)
	s.metrics.observeResolve(v.Advanced)
	return v
}

func (s *Server) resolveCards(now int64, cards []int) (round.View, []int) {
	v, played := s.resolver.ResolveCards(now, cards)
	s.metrics.observeResolve(v.Advanced)
	return v, played
}

func (s *Server) snapshot() []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	return conns
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.metrics.watchers.Set(float64(total))
	s.logger.Info("Watcher connected", "watcher", c.id, "name", c.name, "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	_, ok := s.connections[c]
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	if ok {
		s.metrics.watchers.Set(float64(total))
		s.logger.Info("Watcher disconnected", "watcher", c.id, "total", total)
	}
}

// WatcherCount returns the number of connected watchers.
func (s *Server) WatcherCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) closeAll() {
	for _, c := range s.snapshot() {
		_ = c.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	n := s.nextID.Add(1)
	id := fmt.Sprintf("W-%d", n)
	name := r.URL.Query().Get("name")
	if name == "" {
		name = s.cfg.Player.Name
	}

	c := newConnection(conn, s, name, id, randutil.New(s.seed+n))
	s.register(c)
	c.Start()
	c.refresh(s.clock.Now().Unix())

	go func() {
		<-c.Done()
		s.unregister(c)
	}()
}
