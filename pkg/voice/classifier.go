// Package voice implements the interruption decision engine for conversational
// voice agents. It classifies transcribed user speech as either passive
// acknowledgment (backchanneling) the agent should speak through, or a real
// interruption the agent must yield to.
package voice

import "strings"

// Classifier decides whether transcribed user speech should interrupt the
// agent. It holds two word sets: ignore words (backchannel acknowledgments
// like "yeah" or "uh-huh") and command keywords (words like "stop" or "wait"
// that always force an interruption).
//
// A Classifier is immutable after construction and safe for concurrent use
// from any number of goroutines.
type Classifier struct {
	ignoreWords  map[string]struct{}
	commandWords map[string]struct{}
}

// Option configures a Classifier during construction.
type Option func(*Classifier)

// WithIgnoreWords replaces the default backchannel word set. Words may be
// given in any letter case. Overriding the ignore set leaves the command set
// at its default.
func WithIgnoreWords(words ...string) Option {
	return func(c *Classifier) {
		c.ignoreWords = lowerSet(words)
	}
}

// WithCommandWords replaces the default command keyword set. Words may be
// given in any letter case. Overriding the command set leaves the ignore set
// at its default.
func WithCommandWords(words ...string) Option {
	return func(c *Classifier) {
		c.commandWords = lowerSet(words)
	}
}

// NewClassifier creates a Classifier. With no options both word sets use the
// built-in defaults. The supplied words are copied; the classifier never
// retains or mutates caller slices.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		ignoreWords:  lowerSet(DefaultIgnoreWords()),
		commandWords: lowerSet(DefaultCommandWords()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsBackchannel reports whether text is a pure passive acknowledgment: every
// cleaned word must be in the ignore set. Empty or whitespace-only text is
// not backchanneling.
//
// Matching is per-token. Multi-word entries in the ignore set (such as
// "uh huh") never match as phrases here; "uh huh" passes only because "uh"
// and "huh" normalize to tokens that are themselves covered.
func (c *Classifier) IsBackchannel(text string) bool {
	if text == "" {
		return false
	}

	words := cleanWords(text)
	if len(words) == 0 {
		return false
	}

	for _, w := range words {
		if _, ok := c.ignoreWords[w]; !ok {
			return false
		}
	}
	return true
}

// ContainsCommand reports whether any cleaned word of text is a command
// keyword. Empty text contains no command.
func (c *Classifier) ContainsCommand(text string) bool {
	if text == "" {
		return false
	}

	for _, w := range cleanWords(text) {
		if _, ok := c.commandWords[w]; ok {
			return true
		}
	}
	return false
}

// trailingPunct is the set of punctuation characters stripped (one at most)
// from the end of each token during normalization.
const trailingPunct = `.,!?;:'"-`

// cleanWords normalizes raw transcript text into lowercase tokens: whitespace
// runs collapse into separators, and a single trailing punctuation character
// is stripped from each token. Tokens that become empty are dropped.
func cleanWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if strings.ContainsRune(trailingPunct, rune(w[len(w)-1])) {
			w = w[:len(w)-1]
		}
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func lowerSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
