// Package session wires the interruption classifier into a live transcript
// stream. It consumes speech events from an STT provider, snapshots the
// agent's speaking state per event, and emits interruption decisions for the
// hosting runtime to act on.
package session

import (
	"context"
	"expvar"
	"fmt"
	"log/slog"
	"time"

	"github.com/chriscow/backchannel-go/pkg/stt"
	"github.com/chriscow/backchannel-go/pkg/voice"
)

// InterruptEvent is emitted for every transcript the session evaluates.
type InterruptEvent struct {
	// Decision is the classifier verdict for this transcript.
	Decision voice.Decision

	// Text is the transcript that was evaluated.
	Text string

	// IsFinal reports whether the transcript was a final STT result.
	IsFinal bool

	// AgentWasSpeaking is the speaking snapshot used for the decision.
	AgentWasSpeaking bool

	// Timestamp is when the decision was made.
	Timestamp time.Time
}

// Metrics holds decision counters for the session.
type Metrics struct {
	Evaluated  *expvar.Int
	Interrupts *expvar.Int
	Suppressed *expvar.Int
	ByReason   *expvar.Map
}

// newMetrics creates session metrics without global registration so multiple
// sessions can coexist in one process.
func newMetrics() *Metrics {
	byReason := &expvar.Map{}
	byReason.Init()

	return &Metrics{
		Evaluated:  &expvar.Int{},
		Interrupts: &expvar.Int{},
		Suppressed: &expvar.Int{},
		ByReason:   byReason,
	}
}

// Config holds configuration for creating a Session.
type Config struct {
	// Transcripts is the STT event stream to evaluate. Required.
	Transcripts <-chan stt.SpeechEvent

	// Classifier defaults to voice.NewClassifier() when nil.
	Classifier *voice.Classifier

	// Gate defaults to a fresh voice.NewSpeakingGate() when nil. Supply a
	// shared gate when the TTS playback path lives elsewhere.
	Gate voice.SpeakingGate

	// InterimResults evaluates interim transcripts as well as final ones.
	// Off by default: interim text churns and the runtime usually debounces
	// on finals.
	InterimResults bool

	Logger *slog.Logger
}

// Session evaluates transcripts against the classifier and emits decisions.
// The session owns only plumbing state; classification itself stays a pure
// function of each transcript and the speaking snapshot.
type Session struct {
	classifier  *voice.Classifier
	gate        voice.SpeakingGate
	transcripts <-chan stt.SpeechEvent
	interim     bool
	decisions   chan InterruptEvent
	logger      *slog.Logger
	metrics     *Metrics
}

// New creates a Session from the given configuration.
func New(cfg Config) (*Session, error) {
	if cfg.Transcripts == nil {
		return nil, fmt.Errorf("Transcripts channel is required")
	}

	classifier := cfg.Classifier
	if classifier == nil {
		classifier = voice.NewClassifier()
	}

	gate := cfg.Gate
	if gate == nil {
		gate = voice.NewSpeakingGate()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		classifier:  classifier,
		gate:        gate,
		transcripts: cfg.Transcripts,
		interim:     cfg.InterimResults,
		decisions:   make(chan InterruptEvent, 16),
		logger:      logger,
		metrics:     newMetrics(),
	}, nil
}

// Decisions returns the channel of evaluated interruption decisions. It is
// closed when Run returns.
func (s *Session) Decisions() <-chan InterruptEvent {
	return s.decisions
}

// Metrics returns the session's decision counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// NotifySpeechStarted records that agent TTS playback began.
func (s *Session) NotifySpeechStarted() {
	s.gate.SetSpeaking(true)
	s.logger.Debug("agent speech started")
}

// NotifySpeechEnded records that agent TTS playback stopped.
func (s *Session) NotifySpeechEnded() {
	s.gate.SetSpeaking(false)
	s.logger.Debug("agent speech ended")
}

// Run consumes the transcript stream until it closes or the context is
// cancelled. It closes the decisions channel on return.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.decisions)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-s.transcripts:
			if !ok {
				return nil
			}
			s.handle(ctx, event)
		}
	}
}

func (s *Session) handle(ctx context.Context, event stt.SpeechEvent) {
	switch event.Type {
	case stt.SpeechEventError:
		errMsg := "unknown"
		if event.Error != nil {
			errMsg = event.Error.Error()
		}
		s.logger.Warn("transcript stream error", slog.String("error", errMsg))
		return
	case stt.SpeechEventInterim:
		if !s.interim {
			return
		}
	}

	speaking := s.gate.IsSpeaking()
	decision := s.classifier.Decide(event.Text, speaking)

	s.metrics.Evaluated.Add(1)
	s.metrics.ByReason.Add(decision.Reason.String(), 1)
	if decision.Interrupt {
		s.metrics.Interrupts.Add(1)
	} else {
		s.metrics.Suppressed.Add(1)
	}

	s.logger.Info("interruption decision",
		slog.String("text", event.Text),
		slog.Bool("agent_speaking", speaking),
		slog.Bool("interrupt", decision.Interrupt),
		slog.String("reason", decision.Reason.String()))

	out := InterruptEvent{
		Decision:         decision,
		Text:             event.Text,
		IsFinal:          event.IsFinal,
		AgentWasSpeaking: speaking,
		Timestamp:        time.Now(),
	}

	select {
	case s.decisions <- out:
	case <-ctx.Done():
	}
}
