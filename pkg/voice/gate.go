package voice

import "sync/atomic"

// SpeakingGate tracks whether agent TTS audio is currently playing. The
// hosting runtime flips it from playback start/stop callbacks and reads it to
// take the speaking snapshot passed to each interruption decision. The
// Classifier itself never consults the gate; it stays a pure function of its
// inputs.
type SpeakingGate interface {
	// SetSpeaking records whether TTS is currently playing.
	SetSpeaking(speaking bool)

	// IsSpeaking returns the current speaking state.
	IsSpeaking() bool
}

// NewSpeakingGate creates a SpeakingGate that starts in the not-speaking
// state.
func NewSpeakingGate() SpeakingGate {
	return &defaultGate{}
}

// defaultGate is the default SpeakingGate implementation using an atomic flag.
type defaultGate struct {
	speaking atomic.Bool
}

func (g *defaultGate) SetSpeaking(speaking bool) {
	g.speaking.Store(speaking)
}

func (g *defaultGate) IsSpeaking() bool {
	return g.speaking.Load()
}
