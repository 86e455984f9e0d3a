package voice

// Reason identifies the rule that produced an interruption decision.
type Reason int

const (
	// ReasonEmpty means the utterance was empty; there is nothing to act on.
	ReasonEmpty Reason = iota

	// ReasonCommand means a command keyword was present. Commands always
	// interrupt, regardless of speaking state.
	ReasonCommand

	// ReasonAgentSilent means the agent was not speaking, so the utterance is
	// a normal conversational turn and must be processed.
	ReasonAgentSilent

	// ReasonBackchannel means the utterance was pure acknowledgment spoken
	// over active agent speech and is suppressed.
	ReasonBackchannel

	// ReasonInterruption means the user said something substantive while the
	// agent was speaking.
	ReasonInterruption
)

// String returns the string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonCommand:
		return "command"
	case ReasonAgentSilent:
		return "agent_silent"
	case ReasonBackchannel:
		return "backchannel"
	case ReasonInterruption:
		return "interruption"
	default:
		return "unknown"
	}
}

// Decision is the verdict for a single utterance.
type Decision struct {
	// Interrupt is true when the agent should stop speaking and process the
	// utterance, false when the utterance should be ignored.
	Interrupt bool

	// Reason is the rule that decided.
	Reason Reason
}

// decisionRule pairs a predicate with the verdict returned when it matches.
type decisionRule struct {
	matches   func(c *Classifier, text string, agentIsSpeaking bool) bool
	interrupt bool
	reason    Reason
}

// decisionRules are evaluated top to bottom; the first match wins. Command
// detection must precede the backchannel check because one utterance can
// carry both kinds of token ("yeah but wait") and the intent to redirect
// always wins. Speaking state only matters once command-ness is ruled out.
var decisionRules = []decisionRule{
	{
		matches: func(_ *Classifier, text string, _ bool) bool {
			return text == ""
		},
		interrupt: false,
		reason:    ReasonEmpty,
	},
	{
		matches: func(c *Classifier, text string, _ bool) bool {
			return c.ContainsCommand(text)
		},
		interrupt: true,
		reason:    ReasonCommand,
	},
	{
		matches: func(_ *Classifier, _ string, agentIsSpeaking bool) bool {
			return !agentIsSpeaking
		},
		interrupt: true,
		reason:    ReasonAgentSilent,
	},
	{
		matches: func(c *Classifier, text string, _ bool) bool {
			return c.IsBackchannel(text)
		},
		interrupt: false,
		reason:    ReasonBackchannel,
	},
}

// Decide evaluates the interruption rules for one utterance and returns the
// verdict along with the rule that produced it. agentIsSpeaking is the
// caller's snapshot of whether agent audio is currently playing.
func (c *Classifier) Decide(text string, agentIsSpeaking bool) Decision {
	for _, rule := range decisionRules {
		if rule.matches(c, text, agentIsSpeaking) {
			return Decision{Interrupt: rule.interrupt, Reason: rule.reason}
		}
	}
	return Decision{Interrupt: true, Reason: ReasonInterruption}
}

// ShouldInterrupt reports whether the utterance should interrupt the agent.
// It is Decide without the reason.
func (c *Classifier) ShouldInterrupt(text string, agentIsSpeaking bool) bool {
	return c.Decide(text, agentIsSpeaking).Interrupt
}
