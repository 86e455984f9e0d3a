// Package stt defines the speech-to-text surface consumed by the
// interruption filter: transcript events and a streaming session interface
// that providers implement.
package stt

import "context"

// SpeechEventType represents the type of speech recognition event.
type SpeechEventType int

const (
	// SpeechEventInterim represents partial transcription results that may change
	SpeechEventInterim SpeechEventType = iota
	// SpeechEventFinal represents final transcription results that won't change
	SpeechEventFinal
	// SpeechEventError represents transcription errors
	SpeechEventError
)

// SpeechEvent represents a speech recognition event containing transcription
// results or errors.
type SpeechEvent struct {
	Type      SpeechEventType // Type of event (interim, final, or error)
	Text      string          // Transcribed text (empty for error events)
	IsFinal   bool            // True if this is a final result that won't change
	Language  string          // Detected or configured language code
	Timestamp int64           // Event timestamp in milliseconds since epoch
	Error     error           // Error details (only set for error events)
}

// StreamConfig contains configuration for STT streams.
type StreamConfig struct {
	SampleRate  int
	NumChannels int
	Lang        string
}

// Capabilities describes what an STT provider supports.
type Capabilities struct {
	Streaming          bool
	InterimResults     bool
	SupportedLanguages []string
	SampleRates        []int
}

// STT is the main interface for speech-to-text providers.
type STT interface {
	// NewStream creates a new streaming STT session.
	NewStream(ctx context.Context, cfg StreamConfig) (Stream, error)

	// Capabilities returns the provider's capabilities.
	Capabilities() Capabilities
}

// Stream represents an active STT streaming session.
type Stream interface {
	// Push sends raw audio for processing.
	Push(audio []byte) error

	// Events returns a channel of speech recognition events.
	Events() <-chan SpeechEvent

	// CloseSend signals that no more audio will be sent and flushes any
	// pending data.
	CloseSend() error

	// Close terminates the stream and releases resources.
	Close() error
}
