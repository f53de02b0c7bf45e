package conversation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func completed(user, bot string) Exchange {
	return CompleteExchange(NewExchange(user), bot)
}

func TestStandardAssembler_EmptyHistory(t *testing.T) {
	a := &StandardAssembler{}
	result := a.Assemble("preamble", nil, "Hi")

	require.Equal(t, []Message{
		{Role: RoleSystem, Content: "preamble"},
		{Role: RoleUser, Content: "Hi"},
	}, result)
}

func TestStandardAssembler_PriorExchange(t *testing.T) {
	a := &StandardAssembler{}
	history := History{completed("Hi", "Hello")}

	result := a.Assemble("preamble", history, "How are you?")

	require.Equal(t, []Message{
		{Role: RoleSystem, Content: "preamble"},
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleAssistant, Content: "Hello"},
		{Role: RoleUser, Content: "How are you?"},
	}, result)
}

func TestStandardAssembler_LengthInvariant(t *testing.T) {
	a := &StandardAssembler{}
	history := History{}
	for i := 0; i < 20; i++ {
		result := a.Assemble("sys", history, "next")
		require.Len(t, result, 2*len(history)+2)
		require.Equal(t, RoleSystem, result[0].Role)
		require.Equal(t, RoleUser, result[len(result)-1].Role)
		history = append(history, completed("q", "a"))
	}
}

func TestStandardAssembler_SkipsPendingExchange(t *testing.T) {
	a := &StandardAssembler{}
	history := History{completed("Hi", "Hello"), NewExchange("in flight")}

	result := a.Assemble("sys", history, "new")

	require.Len(t, result, 4)
	require.Equal(t, "new", result[3].Content)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		isUser bool
		want   Message
	}{
		{"user", "hello", true, Message{Role: RoleUser, Content: "hello"}},
		{"assistant", "hi there", false, Message{Role: RoleAssistant, Content: "hi there"}},
		{"empty", "", true, Message{Role: RoleUser, Content: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Format(tt.text, tt.isUser))
			// Pure function: a second call is identical.
			require.Equal(t, Format(tt.text, tt.isUser), Format(tt.text, tt.isUser))
		})
	}
}

func TestHistoryClone(t *testing.T) {
	h := History{completed("a", "b")}
	c := h.Clone()
	c[0].UserText = "changed"
	require.Equal(t, "a", h[0].UserText)
}
