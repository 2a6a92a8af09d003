package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	DefaultInterval = 12 * time.Second
)

type Option func(*Engine)

func WithInterval(interval time.Duration) Option {
	return func(engine *Engine) {
		engine.schedule = cron.Every(interval)
		engine.interval = interval
	}
}

// WithSchedule replaces the fixed interval with any cron schedule.
func WithSchedule(schedule cron.Schedule) Option {
	return func(engine *Engine) {
		engine.schedule = schedule
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

func WithObserver(observers ...Observer) Option {
	return func(engine *Engine) {
		engine.observers = append(engine.observers, observers...)
	}
}

func WithPayload(payload PayloadFunc) Option {
	return func(engine *Engine) {
		engine.payload = payload
	}
}

func WithGreeting(payload Payload) Option {
	return func(engine *Engine) {
		engine.greeting = payload
	}
}

type counters struct {
	ticks          uint64
	emissions      uint64
	fetchErrors    uint64
	deliveryErrors uint64
	discarded      uint64
}

// Engine is the change-triggered notifier: on every tick it fetches the
// current value and emits at most one notification per novel value.
type Engine struct {
	source    ValueSource
	sink      Sink
	gate      *DedupeGate
	state     *State
	machine   *fsm.FSM
	observers []Observer
	payload   PayloadFunc
	greeting  Payload
	interval  time.Duration
	schedule  cron.Schedule
	logger    zerolog.Logger
	stats     counters

	ticking sync.Mutex
	// commit orders recipient switches against the gate commit of a tick.
	commit sync.Mutex

	mux    sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewEngine(source ValueSource, sink Sink, opts ...Option) *Engine {
	engine := &Engine{
		source:   source,
		sink:     sink,
		gate:     NewDedupeGate(),
		state:    NewState(),
		payload:  BlockPayload(""),
		greeting: GreetingPayload(""),
		interval: DefaultInterval,
		schedule: cron.Every(DefaultInterval),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.logger = engine.logger.With().Str("component", "notifier").Logger()
	engine.machine = newMachine(engine.logger)
	return engine
}

func (engine *Engine) State() *State {
	return engine.state
}

func (engine *Engine) Gate() *DedupeGate {
	return engine.gate
}

func (engine *Engine) Current() string {
	return engine.machine.Current()
}

// SetRecipient switches the notified account. A different recipient starts
// from an empty gate.
func (engine *Engine) SetRecipient(recipient Recipient) {
	engine.commit.Lock()
	changed := engine.state.SetRecipient(recipient)
	if changed {
		engine.gate.Reset()
	}
	engine.commit.Unlock()
	if changed {
		engine.logger.Info().Str("recipient", recipient.String()).Msg("Recipient set")
	}
}

func (engine *Engine) ClearRecipient() {
	engine.commit.Lock()
	changed := engine.state.SetRecipient("")
	engine.commit.Unlock()
	if changed {
		engine.logger.Info().Msg("Recipient cleared")
	}
}

// Start triggers a tick on every schedule activation until Stop is called or
// ctx is done. Calling Start on a running engine does nothing.
func (engine *Engine) Start(ctx context.Context) {
	engine.mux.Lock()
	defer engine.mux.Unlock()
	if engine.cron != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	logger := cronLogger{engine.logger}
	engine.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	engine.cron.Schedule(engine.schedule, cron.FuncJob(func() {
		engine.Tick(runCtx)
	}))
	engine.cancel = cancel
	engine.cron.Start()
	engine.logger.Info().Dur("interval", engine.interval).Msg("Notifier started")
}

// Stop cancels the trigger, discards the in-flight tick and waits for it.
func (engine *Engine) Stop() {
	engine.mux.Lock()
	c, cancel := engine.cron, engine.cancel
	engine.cron, engine.cancel = nil, nil
	engine.mux.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	engine.logger.Info().Msg("Notifier stopped")
}

func (engine *Engine) Running() bool {
	engine.mux.Lock()
	defer engine.mux.Unlock()
	return engine.cron != nil
}

// Tick runs one check/emit cycle. Ticks never overlap: a call made while
// another tick is in flight returns OutcomeOverlap without doing anything.
func (engine *Engine) Tick(ctx context.Context) Outcome {
	if !engine.ticking.TryLock() {
		engine.observe(Event{Type: EventOverlap})
		return OutcomeOverlap
	}
	defer engine.ticking.Unlock()

	recipient, generation, ready := engine.state.Ready()
	if !ready {
		engine.observe(Event{Type: EventSkipped})
		return OutcomeIdle
	}
	atomic.AddUint64(&engine.stats.ticks, 1)
	engine.transition(eventCheck)
	defer engine.transition(eventSettle)

	candidate, err := engine.source.Fetch(ctx)
	if engine.stale(ctx, generation) {
		return engine.discard(candidate, recipient)
	}
	if err != nil {
		err = &FetchError{Err: err}
		atomic.AddUint64(&engine.stats.fetchErrors, 1)
		engine.logger.Warn().Err(err).Msg("Fetch failed")
		engine.observe(Event{Type: EventFetchFailed, Recipient: recipient, Err: err})
		return OutcomeFetchFailed
	}
	if !engine.gate.IsNovel(candidate) {
		engine.observe(Event{Type: EventUnchanged, Value: candidate, Recipient: recipient})
		return OutcomeUnchanged
	}

	engine.transition(eventEmit)
	payload := engine.payload(candidate)
	engine.observe(Event{Type: EventEmitting, Value: candidate, Recipient: recipient})
	err = AsDelivery(engine.sink.Send(ctx, []Recipient{recipient}, payload))
	engine.commit.Lock()
	if engine.stale(ctx, generation) {
		engine.commit.Unlock()
		return engine.discard(candidate, recipient)
	}
	if err != nil {
		engine.commit.Unlock()
		atomic.AddUint64(&engine.stats.deliveryErrors, 1)
		engine.logger.Warn().Err(err).Str("value", candidate.String()).Msg("Failed to send new block notification")
		engine.observe(Event{Type: EventDeliveryFailed, Value: candidate, Recipient: recipient, Err: err})
		return OutcomeDeliveryFailed
	}
	engine.gate.Commit(candidate)
	engine.commit.Unlock()
	atomic.AddUint64(&engine.stats.emissions, 1)
	engine.logger.Info().Str("value", candidate.String()).Str("recipient", recipient.String()).Msg("Notification sent")
	engine.observe(Event{Type: EventEmitted, Value: candidate, Recipient: recipient})
	return OutcomeEmitted
}

// SendTest sends the greeting payload to the current recipient. It bypasses
// the gate and the enabled flag but still requires a subscription.
func (engine *Engine) SendTest(ctx context.Context) error {
	recipient := engine.state.Recipient()
	if recipient == "" {
		return ErrNoRecipient
	}
	if !engine.state.Subscribed() {
		return ErrNotSubscribed
	}
	return AsDelivery(engine.sink.Send(ctx, []Recipient{recipient}, engine.greeting))
}

type Status struct {
	State          string `json:"state"`
	Recipient      string `json:"recipient"`
	Subscribed     bool   `json:"subscribed"`
	Enabled        bool   `json:"enabled"`
	Running        bool   `json:"running"`
	LastValue      string `json:"lastValue"`
	Ticks          uint64 `json:"ticks"`
	Emissions      uint64 `json:"emissions"`
	FetchErrors    uint64 `json:"fetchErrors"`
	DeliveryErrors uint64 `json:"deliveryErrors"`
	Discarded      uint64 `json:"discarded"`
}

func (engine *Engine) Snapshot() Status {
	last, _ := engine.gate.Last()
	return Status{
		State:          engine.machine.Current(),
		Recipient:      engine.state.Recipient().String(),
		Subscribed:     engine.state.Subscribed(),
		Enabled:        engine.state.Enabled(),
		Running:        engine.Running(),
		LastValue:      last.String(),
		Ticks:          atomic.LoadUint64(&engine.stats.ticks),
		Emissions:      atomic.LoadUint64(&engine.stats.emissions),
		FetchErrors:    atomic.LoadUint64(&engine.stats.fetchErrors),
		DeliveryErrors: atomic.LoadUint64(&engine.stats.deliveryErrors),
		Discarded:      atomic.LoadUint64(&engine.stats.discarded),
	}
}

// stale reports a tick whose result must be dropped: the hosting context is
// gone or the recipient changed while it was running.
func (engine *Engine) stale(ctx context.Context, generation uint64) bool {
	return ctx.Err() != nil || engine.state.Generation() != generation
}

func (engine *Engine) discard(candidate Value, recipient Recipient) Outcome {
	atomic.AddUint64(&engine.stats.discarded, 1)
	engine.logger.Debug().Str("value", candidate.String()).Msg("Tick discarded")
	engine.observe(Event{Type: EventDiscarded, Value: candidate, Recipient: recipient})
	return OutcomeDiscarded
}

func (engine *Engine) transition(event string) {
	if err := engine.machine.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			engine.logger.Error().Err(err).Str("event", event).Msg("Invalid notifier transition")
		}
	}
}

func (engine *Engine) observe(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, observer := range engine.observers {
		observer.Observe(event)
	}
}

type cronLogger struct {
	zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
