package voice

// defaultIgnoreWords are common backchannel acknowledgments. Some entries are
// multi-word phrases; they are kept for configuration compatibility even
// though classification tests tokens individually (see IsBackchannel).
var defaultIgnoreWords = []string{
	"yeah",
	"yup",
	"yep",
	"yes",
	"ok",
	"okay",
	"alright",
	"right",
	"uh-huh",
	"uh huh",
	"uhuh",
	"hmm",
	"hm",
	"mm",
	"mmhm",
	"mhm",
	"aha",
	"ah",
	"ooh",
	"oh",
	"cool",
	"sure",
	"i see",
	"i understand",
	"got it",
	"understood",
}

// defaultCommandWords are words and phrases that signal the user intends to
// redirect, stop, or correct the agent.
var defaultCommandWords = []string{
	"stop",
	"wait",
	"hold",
	"pause",
	"hang on",
	"hold on",
	"no",
	"nope",
	"not",
	"don't",
	"cant",
	"can't",
	"repeat",
	"again",
	"back",
	"slower",
	"faster",
	"louder",
	"quieter",
	"but",
	"however",
	"actually",
	"well",
	"look",
	"listen",
	"excuse me",
	"pardon me",
	"sorry",
	"what",
	"huh",
	"pardon",
}

// DefaultIgnoreWords returns a copy of the built-in backchannel word set.
func DefaultIgnoreWords() []string {
	words := make([]string, len(defaultIgnoreWords))
	copy(words, defaultIgnoreWords)
	return words
}

// DefaultCommandWords returns a copy of the built-in command keyword set.
func DefaultCommandWords() []string {
	words := make([]string, len(defaultCommandWords))
	copy(words, defaultCommandWords)
	return words
}
