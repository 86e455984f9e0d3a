package voice

import (
	"strings"
	"sync"
	"testing"
)

func TestIsBackchannel_SimpleWords(t *testing.T) {
	c := NewClassifier()

	words := []string{
		"yeah", "ok", "okay", "hmm", "uh-huh", "right", "yep", "yup", "mm", "aha",
	}

	for _, word := range words {
		if !c.IsBackchannel(word) {
			t.Errorf("IsBackchannel(%q) = false, want true", word)
		}
	}
}

func TestIsBackchannel_TrailingPunctuation(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text string
		want bool
	}{
		{"yeah.", true},
		{"ok!", true},
		{"hmm?", true},
		{"uh-huh,", true},
		{"sure;", true},
		{`cool"`, true},
		{"yeah-", true},
	}

	for _, tt := range tests {
		if got := c.IsBackchannel(tt.text); got != tt.want {
			t.Errorf("IsBackchannel(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestIsBackchannel_MultipleWords(t *testing.T) {
	c := NewClassifier()

	if !c.IsBackchannel("yeah okay") {
		t.Error(`IsBackchannel("yeah okay") = false, want true`)
	}
	if !c.IsBackchannel("yeah uh-huh right") {
		t.Error(`IsBackchannel("yeah uh-huh right") = false, want true`)
	}
	if !c.IsBackchannel("mm hmm aha") {
		t.Error(`IsBackchannel("mm hmm aha") = false, want true`)
	}
}

func TestIsBackchannel_CommandWords(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{"stop", "wait", "no", "don't"} {
		if c.IsBackchannel(text) {
			t.Errorf("IsBackchannel(%q) = true, want false", text)
		}
	}
}

func TestIsBackchannel_MixedInput(t *testing.T) {
	c := NewClassifier()

	// One token outside the ignore set fails the whole utterance.
	for _, text := range []string{"yeah but wait", "ok no", "hmm hold on", "yeah totally"} {
		if c.IsBackchannel(text) {
			t.Errorf("IsBackchannel(%q) = true, want false", text)
		}
	}
}

// Phrase-shaped ignore entries like "uh huh" are configuration-compatible but
// never match as phrases: each token is tested on its own. "uh" is not an
// ignore word, so the spaced form is not backchanneling even though the
// hyphenated form is.
func TestIsBackchannel_TokenLevelOnly(t *testing.T) {
	c := NewClassifier()

	if !c.IsBackchannel("uh-huh") {
		t.Error(`IsBackchannel("uh-huh") = false, want true`)
	}
	if c.IsBackchannel("uh huh") {
		t.Error(`IsBackchannel("uh huh") = true, want false (token-level matching)`)
	}
}

func TestIsBackchannel_EmptyAndWhitespace(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{"", " ", "   ", "\t\n", "... ,,,"} {
		if c.IsBackchannel(text) {
			t.Errorf("IsBackchannel(%q) = true, want false", text)
		}
	}
}

func TestIsBackchannel_WhitespaceRuns(t *testing.T) {
	c := NewClassifier()

	if !c.IsBackchannel("  yeah   okay \t sure ") {
		t.Error("whitespace runs should collapse before matching")
	}
}

func TestContainsCommand(t *testing.T) {
	c := NewClassifier()

	commands := []string{
		"stop", "wait", "hold", "pause", "no", "nope", "don't", "repeat", "but",
	}

	for _, word := range commands {
		if !c.ContainsCommand(word) {
			t.Errorf("ContainsCommand(%q) = false, want true", word)
		}
	}
}

func TestContainsCommand_InSentence(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text string
		want bool
	}{
		{"yeah but wait", true},
		{"ok hold on", true},
		{"no stop please", true},
		{"stop.", true},
		{"yeah", false},
		{"mm hmm", false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		if got := c.ContainsCommand(tt.text); got != tt.want {
			t.Errorf("ContainsCommand(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCaseInsensitive(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{"YEAH", "Yeah", "YeAh"} {
		if !c.IsBackchannel(text) {
			t.Errorf("IsBackchannel(%q) = false, want true", text)
		}
		if c.IsBackchannel(text) != c.IsBackchannel(strings.ToLower(text)) {
			t.Errorf("IsBackchannel(%q) differs from lowercase form", text)
		}
	}
	for _, text := range []string{"STOP", "Stop"} {
		if !c.ContainsCommand(text) {
			t.Errorf("ContainsCommand(%q) = false, want true", text)
		}
	}
}

func TestCustomIgnoreWords(t *testing.T) {
	c := NewClassifier(WithIgnoreWords("hello", "world"))

	if !c.IsBackchannel("hello") {
		t.Error("custom ignore word should match")
	}
	if !c.IsBackchannel("World") {
		t.Error("custom ignore words should be case-insensitive")
	}
	if c.IsBackchannel("yeah") {
		t.Error("default ignore words should not apply after override")
	}

	// The command set keeps its default when only the ignore set is overridden.
	if !c.ContainsCommand("stop") {
		t.Error("command set should stay at default")
	}
}

func TestCustomCommandWords(t *testing.T) {
	c := NewClassifier(WithCommandWords("abort", "cancel"))

	if !c.ContainsCommand("abort") {
		t.Error("custom command word should match")
	}
	if !c.ContainsCommand("Cancel") {
		t.Error("custom command words should be case-insensitive")
	}
	if c.ContainsCommand("stop") {
		t.Error("default command words should not apply after override")
	}

	// The ignore set keeps its default when only the command set is overridden.
	if !c.IsBackchannel("yeah") {
		t.Error("ignore set should stay at default")
	}
}

func TestEmptyOverrideSets(t *testing.T) {
	// A degenerate configuration, not an error: the set simply never matches.
	c := NewClassifier(WithIgnoreWords(), WithCommandWords())

	if c.IsBackchannel("yeah") {
		t.Error("empty ignore set should never match")
	}
	if c.ContainsCommand("stop") {
		t.Error("empty command set should never match")
	}
	if !c.ShouldInterrupt("yeah", true) {
		t.Error("with empty sets every non-empty utterance interrupts")
	}
}

func TestCallerSliceNotRetained(t *testing.T) {
	words := []string{"Foo", "Bar"}
	c := NewClassifier(WithIgnoreWords(words...))

	if words[0] != "Foo" {
		t.Error("caller slice should not be mutated")
	}

	words[0] = "baz"
	if c.IsBackchannel("baz") {
		t.Error("classifier should hold a copy, not the caller slice")
	}
	if !c.IsBackchannel("foo") {
		t.Error("originally supplied word should still match")
	}
}

func TestDefaultWordListsAreCopies(t *testing.T) {
	ignore := DefaultIgnoreWords()
	ignore[0] = "mutated"

	if DefaultIgnoreWords()[0] == "mutated" {
		t.Error("DefaultIgnoreWords should return a fresh copy")
	}

	cmds := DefaultCommandWords()
	cmds[0] = "mutated"

	if DefaultCommandWords()[0] == "mutated" {
		t.Error("DefaultCommandWords should return a fresh copy")
	}
}

func TestCleanWords(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Yeah, okay!", []string{"yeah", "okay"}},
		{"  UH-HUH  ", []string{"uh-huh"}},
		{"stop...", []string{"stop.."}}, // only one trailing char stripped
		{"", nil},
		{"  \t ", nil},
		{". , !", nil},
	}

	for _, tt := range tests {
		got := cleanWords(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("cleanWords(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("cleanWords(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestClassifierConcurrency(t *testing.T) {
	c := NewClassifier()

	var wg sync.WaitGroup
	inputs := []string{"yeah", "no stop", "yeah but wait", "", "tell me more"}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(speaking bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, text := range inputs {
					_ = c.IsBackchannel(text)
					_ = c.ContainsCommand(text)
					_ = c.ShouldInterrupt(text, speaking)
				}
			}
		}(i%2 == 0)
	}

	wg.Wait()
}
