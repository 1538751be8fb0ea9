package subscriber

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/logger"
)

// State of a Subscriber.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	// DefaultMaxAttempts is how many consecutive reconnects are tried
	// before the subscriber gives up.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay is doubled on every reconnect attempt.
	DefaultBaseDelay = time.Second
)

// Stream yields one event payload per call to Next.
type Stream interface {
	Next() ([]byte, error)
	Close() error
}

// Transport opens a Stream. Open must honor ctx cancellation.
type Transport interface {
	Open(ctx context.Context) (Stream, error)
}

// Timer is the part of *time.Timer the subscriber needs.
type Timer interface {
	Stop() bool
}

// Options tune reconnect behavior. Zero values take the defaults.
type Options struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	OnStateChange func(State)
	Logger        logger.Logger

	// AfterFunc schedules reconnects, time.AfterFunc when nil.
	AfterFunc func(d time.Duration, f func()) Timer
}

// Subscriber keeps one stream open and feeds every payload to onMessage.
// After a transport error it retries with exponential backoff, giving up
// after MaxAttempts consecutive failed reconnects.
type Subscriber struct {
	transport Transport
	onMessage func([]byte)
	opts      Options
	log       logger.Logger

	mu       sync.Mutex
	state    State
	attempts int
	gen      uint64 // bumped on every connect, stale goroutines compare it
	timer    Timer
	cancel   context.CancelFunc
	stream   Stream
	closed   bool
}

// New builds a Subscriber without connecting.
func New(t Transport, onMessage func([]byte), opts Options) *Subscriber {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Subscriber{
		transport: t,
		onMessage: onMessage,
		opts:      opts,
		log:       log,
	}
}

// Subscribe builds a Subscriber and starts connecting.
func Subscribe(t Transport, onMessage func([]byte), opts Options) *Subscriber {
	s := New(t, onMessage, opts)
	s.Connect()
	return s
}

// State returns the current state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts returns the number of consecutive reconnects scheduled.
func (s *Subscriber) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Connect (re)starts the connection and resets the attempt counter. It is
// a no-op after Close.
func (s *Subscriber) Connect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.teardownLocked()
	s.attempts = 0
	notify := s.connectLocked()
	s.mu.Unlock()
	notify()
}

// Close stops reconnecting and closes the transport. Safe to call more
// than once and from inside a handler.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.teardownLocked()
	s.gen++
	notify := s.setStateLocked(Disconnected)
	s.mu.Unlock()
	notify()
}

func (s *Subscriber) connectLocked() func() {
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	notify := s.setStateLocked(Connecting)
	go s.run(ctx, gen)
	return notify
}

// teardownLocked cancels the current connection, if any.
func (s *Subscriber) teardownLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
}

func (s *Subscriber) run(ctx context.Context, gen uint64) {
	stream, err := s.transport.Open(ctx)
	if err != nil {
		s.fail(gen, err)
		return
	}
	if !s.opened(gen, stream) {
		_ = stream.Close()
		return
	}

	for {
		data, err := stream.Next()
		if err != nil {
			s.fail(gen, err)
			return
		}
		if !s.current(gen) {
			return
		}
		s.onMessage(data)
	}
}

func (s *Subscriber) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.gen == gen
}

func (s *Subscriber) opened(gen uint64, stream Stream) bool {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.stream = stream
	s.attempts = 0
	notify := s.setStateLocked(Connected)
	s.mu.Unlock()

	s.log.Info("stream connected")
	notify()
	return true
}

func (s *Subscriber) fail(gen uint64, err error) {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.teardownLocked()

	if s.attempts >= s.opts.MaxAttempts {
		notify := s.setStateLocked(Disconnected)
		attempts := s.attempts
		s.mu.Unlock()
		s.log.Warn("giving up on stream",
			logger.Int("attempts", attempts),
			logger.Error(err))
		notify()
		return
	}

	s.attempts++
	delay := s.opts.BaseDelay << s.attempts
	attempts := s.attempts
	s.timer = s.opts.AfterFunc(delay, func() { s.reconnect(gen) })
	notify := s.setStateLocked(Reconnecting)
	s.mu.Unlock()

	s.log.Warn("stream lost, reconnecting",
		logger.Int("attempt", attempts),
		logger.Duration("delay", delay),
		logger.Error(err))
	notify()
}

func (s *Subscriber) reconnect(gen uint64) {
	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	notify := s.connectLocked()
	s.mu.Unlock()
	notify()
}

// setStateLocked records st and returns the hook call to run after unlock.
func (s *Subscriber) setStateLocked(st State) func() {
	if s.state == st {
		return func() {}
	}
	s.state = st
	hook := s.opts.OnStateChange
	if hook == nil {
		return func() {}
	}
	return func() { hook(st) }
}
