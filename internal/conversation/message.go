package conversation

// Roles used in provider-bound message lists.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a provider-agnostic chat message. It exists only for the
// duration of an inference call and is never stored.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Format maps one side of an exchange to its wire message.
// isUser=true yields a user message, otherwise an assistant message.
func Format(text string, isUser bool) Message {
	role := RoleAssistant
	if isUser {
		role = RoleUser
	}
	return Message{Role: role, Content: text}
}
