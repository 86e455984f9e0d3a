// Package whisper implements batched speech-to-text using OpenAI's Whisper
// API. Whisper has no streaming endpoint, so audio is buffered and
// transcribed in chunks; only final transcript events are emitted.
package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chriscow/backchannel-go/pkg/stt"
)

// Config holds configuration for the Whisper STT provider.
type Config struct {
	APIKey   string
	Model    string // Default: whisper-1
	Language string // Default: auto-detect (empty)

	// FlushInterval controls how often buffered audio is sent for
	// transcription. Default: 3s.
	FlushInterval time.Duration
}

// STT implements stt.STT using OpenAI's Whisper API.
type STT struct {
	client   *openai.Client
	model    string
	language string
	interval time.Duration
}

// New creates a Whisper STT provider.
func New(cfg Config) (*STT, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	return &STT{
		client:   openai.NewClient(cfg.APIKey),
		model:    model,
		language: cfg.Language,
		interval: interval,
	}, nil
}

// NewStream creates a new pseudo-streaming session backed by batched
// transcription requests.
func (w *STT) NewStream(ctx context.Context, cfg stt.StreamConfig) (stt.Stream, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.NumChannels == 0 {
		cfg.NumChannels = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &stream{
		stt:    w,
		ctx:    ctx,
		cancel: cancel,
		config: cfg,
		events: make(chan stt.SpeechEvent, 10),
	}

	go s.processLoop()
	return s, nil
}

// Capabilities returns the provider's capabilities.
func (w *STT) Capabilities() stt.Capabilities {
	return stt.Capabilities{
		Streaming:          true, // Pseudo-streaming via batching
		InterimResults:     false,
		SupportedLanguages: []string{"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt"},
		SampleRates:        []int{16000, 22050, 44100, 48000},
	}
}

// stream buffers PCM16 audio and transcribes it on a timer and on close.
type stream struct {
	stt    *STT
	ctx    context.Context
	cancel context.CancelFunc
	config stt.StreamConfig
	events chan stt.SpeechEvent

	mu     sync.Mutex
	buffer []byte
	closed bool
}

func (s *stream) Push(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream is closed")
	}

	s.buffer = append(s.buffer, audio...)
	return nil
}

func (s *stream) Events() <-chan stt.SpeechEvent {
	return s.events
}

func (s *stream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream already closed")
	}

	s.closed = true
	return nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
	}
	s.mu.Unlock()

	s.cancel()
	return nil
}

func (s *stream) processLoop() {
	defer close(s.events)

	ticker := time.NewTicker(s.stt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.flush()
		}

		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			s.flush()
			return
		}
	}
}

// flush transcribes whatever audio has accumulated since the last flush.
func (s *stream) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	pcm := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	// OpenAI rejects audio shorter than 0.1s.
	bytesPerSecond := s.config.SampleRate * s.config.NumChannels * 2
	if len(pcm)*10 < bytesPerSecond {
		return
	}

	text, language, err := s.transcribe(wavFromPCM(pcm, s.config.SampleRate, s.config.NumChannels))
	if err != nil {
		slog.Error("Whisper transcription failed", slog.String("error", err.Error()))
		s.send(stt.SpeechEvent{
			Type:      stt.SpeechEventError,
			Timestamp: time.Now().UnixMilli(),
			Error:     err,
		})
		return
	}

	if text == "" {
		return
	}

	s.send(stt.SpeechEvent{
		Type:      stt.SpeechEventFinal,
		Text:      text,
		IsFinal:   true,
		Language:  language,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *stream) send(event stt.SpeechEvent) {
	select {
	case s.events <- event:
	case <-s.ctx.Done():
	}
}

// transcribe calls the OpenAI Whisper API with WAV-encoded audio.
func (s *stream) transcribe(wavData []byte) (string, string, error) {
	req := openai.AudioRequest{
		Model:    s.stt.model,
		Language: s.stt.language,
		Format:   openai.AudioResponseFormatJSON,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
	}

	resp, err := s.stt.client.CreateTranscription(s.ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("transcription failed: %w", err)
	}

	slog.Debug("Whisper transcription result", slog.String("text", resp.Text))
	return resp.Text, resp.Language, nil
}

// wavFromPCM wraps raw PCM16 samples in a minimal RIFF/WAV header.
func wavFromPCM(pcm []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))

	bitsPerSample := uint16(16)
	byteRate := uint32(sampleRate * channels * int(bitsPerSample) / 8)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, uint16(channels)*bitsPerSample/8)
	binary.Write(&buf, binary.LittleEndian, bitsPerSample)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
