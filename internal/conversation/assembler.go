package conversation

// Assembler combines system prompt, history, and user message into a final
// message list.
type Assembler interface {
	Assemble(system string, history History, userMsg string) []Message
}

// StandardAssembler emits system + history pairs + user. The full history is
// always included; windowing and token budgets are out of scope here.
type StandardAssembler struct{}

// Assemble builds the final message list. History must contain only
// completed exchanges; the in-flight turn is the caller's to exclude.
func (a *StandardAssembler) Assemble(system string, history History, userMsg string) []Message {
	messages := make([]Message, 0, 2*len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	for _, e := range history {
		if !e.Completed() {
			continue
		}
		messages = append(messages, Format(e.UserText, true))
		messages = append(messages, Format(*e.BotText, false))
	}
	messages = append(messages, Format(userMsg, true))
	return messages
}
