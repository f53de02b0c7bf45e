package conversation

// Exchange pairs one user message with its reply. BotText is nil while the
// reply is in flight; once set, the exchange is never mutated again.
type Exchange struct {
	UserText string  `json:"user_text"`
	BotText  *string `json:"bot_text"`
}

// Completed reports whether the exchange has received its reply.
func (e Exchange) Completed() bool { return e.BotText != nil }

// History is the ordered record of one session's exchanges. Insertion order
// is chronological order is display order. It is owned by a single session
// and never shared.
type History []Exchange

// Clone returns a copy so a turn can be built without mutating the
// caller's slice.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}

// NewExchange starts a pending exchange for a fresh user message.
func NewExchange(userText string) Exchange {
	return Exchange{UserText: userText}
}

// CompleteExchange returns the exchange with its reply filled in.
func CompleteExchange(e Exchange, botText string) Exchange {
	e.BotText = &botText
	return e
}
