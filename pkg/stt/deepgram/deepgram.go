// Package deepgram implements live streaming speech-to-text over Deepgram's
// websocket API. It sends raw audio and decodes interim/final transcript
// messages into speech events.
package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chriscow/backchannel-go/pkg/stt"
)

const defaultBaseURL = "wss://api.deepgram.com/v1/listen"

// Config holds configuration for the Deepgram STT provider.
type Config struct {
	APIKey         string
	Model          string // Default: nova-2
	Encoding       string // Default: linear16
	EndpointingMs  int    // Default: 1000
	InterimResults bool
	BaseURL        string // Overridable for tests
	Logger         *slog.Logger
}

// STT implements stt.STT backed by Deepgram's live transcription endpoint.
type STT struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Deepgram STT provider.
func New(cfg Config) (*STT, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Deepgram API key is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &STT{cfg: cfg, logger: logger}, nil
}

// Capabilities returns the provider's capabilities.
func (d *STT) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		Streaming:          true,
		InterimResults:     true,
		SupportedLanguages: []string{"en", "en-US", "es", "fr", "de", "pt", "ja", "ko", "zh"},
		SampleRates:        []int{8000, 16000, 24000, 48000},
	}
}

// NewStream dials the live transcription websocket and starts the read loop.
func (d *STT) NewStream(ctx context.Context, cfg stt.StreamConfig) (stt.Stream, error) {
	endpoint, err := d.streamURL(cfg)
	if err != nil {
		return nil, err
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	header := http.Header{}
	header.Set("Authorization", "Token "+d.cfg.APIKey)

	conn, _, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram: %w", err)
	}

	d.logger.Info("Deepgram stream connected",
		slog.String("model", orDefault(d.cfg.Model, "nova-2")),
		slog.Int("sample_rate", cfg.SampleRate))

	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		lang:   cfg.Lang,
		events: make(chan stt.SpeechEvent, 32),
		logger: d.logger,
	}

	go s.readLoop()
	return s, nil
}

// streamURL builds the websocket endpoint with query parameters.
func (d *STT) streamURL(cfg stt.StreamConfig) (string, error) {
	base := d.cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram URL: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}
	channels := cfg.NumChannels
	if channels == 0 {
		channels = 1
	}

	q := u.Query()
	q.Set("model", orDefault(d.cfg.Model, "nova-2"))
	q.Set("language", orDefault(cfg.Lang, "en-US"))
	q.Set("encoding", orDefault(d.cfg.Encoding, "linear16"))
	q.Set("sample_rate", strconv.Itoa(sampleRate))
	q.Set("channels", strconv.Itoa(channels))
	q.Set("endpointing", strconv.Itoa(nonZero(d.cfg.EndpointingMs, 1000)))
	q.Set("interim_results", strconv.FormatBool(d.cfg.InterimResults))
	q.Set("smart_format", "true")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// stream is one live transcription session.
type stream struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	lang   string
	events chan stt.SpeechEvent
	logger *slog.Logger

	writeMu sync.Mutex
	closed  bool
}

func (s *stream) Push(audio []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return fmt.Errorf("stream is closed")
	}

	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

func (s *stream) Events() <-chan stt.SpeechEvent {
	return s.events
}

// CloseSend tells Deepgram to flush and finalize any pending transcript.
func (s *stream) CloseSend() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return fmt.Errorf("stream already closed")
	}

	if err := s.conn.WriteJSON(map[string]string{"type": "CloseStream"}); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

func (s *stream) Close() error {
	s.writeMu.Lock()
	s.closed = true
	s.writeMu.Unlock()

	s.cancel()
	return s.conn.Close()
}

// transcriptResponse mirrors the subset of Deepgram's live API response the
// filter needs.
type transcriptResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (s *stream) readLoop() {
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.ctx.Done():
			default:
				s.logger.Debug("Deepgram read ended", slog.String("error", err.Error()))
				s.send(stt.SpeechEvent{
					Type:      stt.SpeechEventError,
					Timestamp: time.Now().UnixMilli(),
					Error:     err,
				})
			}
			return
		}

		event, ok := decodeTranscript(data, s.lang)
		if !ok {
			continue
		}
		s.send(event)
	}
}

// decodeTranscript converts one websocket message into a speech event.
// Messages that are not transcripts, or carry an empty transcript, are
// skipped.
func decodeTranscript(data []byte, lang string) (stt.SpeechEvent, bool) {
	var resp transcriptResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return stt.SpeechEvent{}, false
	}

	if resp.Type != "Results" || len(resp.Channel.Alternatives) == 0 {
		return stt.SpeechEvent{}, false
	}

	text := resp.Channel.Alternatives[0].Transcript
	if text == "" {
		return stt.SpeechEvent{}, false
	}

	eventType := stt.SpeechEventInterim
	if resp.IsFinal {
		eventType = stt.SpeechEventFinal
	}

	return stt.SpeechEvent{
		Type:      eventType,
		Text:      text,
		IsFinal:   resp.IsFinal,
		Language:  lang,
		Timestamp: time.Now().UnixMilli(),
	}, true
}

func (s *stream) send(event stt.SpeechEvent) {
	select {
	case s.events <- event:
	case <-s.ctx.Done():
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonZero(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
