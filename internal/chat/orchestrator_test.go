package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/model"
	"github.com/stupiduntilnot/sponsor/internal/store"
)

type fakeProvider struct {
	reply string
	err   error
	got   [][]conversation.Message
}

func (f *fakeProvider) ChatCompletion(_ context.Context, messages []conversation.Message) (model.CompletionResponse, error) {
	f.got = append(f.got, messages)
	if f.err != nil {
		return model.CompletionResponse{}, f.err
	}
	return model.CompletionResponse{Content: f.reply}, nil
}

type recordingStore struct {
	store.Nop
	appended []store.Record
	err      error
}

func (r *recordingStore) Append(_ context.Context, userID, message, response string, ts time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.appended = append(r.appended, store.Record{UserID: userID, Message: message, Response: response, Timestamp: ts})
	return nil
}

func newTestOrchestrator(p model.Provider, st store.Store) *Orchestrator {
	return NewOrchestrator("preamble", &conversation.StandardAssembler{}, NewGateway(p, "fake", 0), st)
}

func TestHandleTurn_Success(t *testing.T) {
	provider := &fakeProvider{reply: "Hello"}
	st := &recordingStore{}
	o := newTestOrchestrator(provider, st)

	history, cleared := o.HandleTurn(context.Background(), "u1", "Hi", nil)

	require.Equal(t, ClearedInput, cleared)
	require.Len(t, history, 1)
	require.Equal(t, "Hi", history[0].UserText)
	require.True(t, history[0].Completed())
	require.Equal(t, "Hello", *history[0].BotText)

	// The provider saw system + new user message only.
	require.Len(t, provider.got, 1)
	require.Equal(t, []conversation.Message{
		{Role: conversation.RoleSystem, Content: "preamble"},
		{Role: conversation.RoleUser, Content: "Hi"},
	}, provider.got[0])

	// Successful turns persist exactly one record.
	require.Len(t, st.appended, 1)
	require.Equal(t, "u1", st.appended[0].UserID)
	require.Equal(t, "Hi", st.appended[0].Message)
	require.Equal(t, "Hello", st.appended[0].Response)
}

func TestHandleTurn_SecondTurnIncludesHistory(t *testing.T) {
	provider := &fakeProvider{reply: "Well."}
	o := newTestOrchestrator(provider, nil)

	first := conversation.History{
		conversation.CompleteExchange(conversation.NewExchange("Hi"), "Hello"),
	}
	history, _ := o.HandleTurn(context.Background(), "u1", "How are you?", first)

	require.Len(t, history, 2)
	require.Equal(t, []conversation.Message{
		{Role: conversation.RoleSystem, Content: "preamble"},
		{Role: conversation.RoleUser, Content: "Hi"},
		{Role: conversation.RoleAssistant, Content: "Hello"},
		{Role: conversation.RoleUser, Content: "How are you?"},
	}, provider.got[0])

	// Caller's history is untouched.
	require.Len(t, first, 1)
}

func TestHandleTurn_InferenceFailureBecomesReply(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	st := &recordingStore{}
	o := newTestOrchestrator(provider, st)

	history, cleared := o.HandleTurn(context.Background(), "u1", "test", nil)

	require.Equal(t, ClearedInput, cleared)
	require.Len(t, history, 1)
	require.True(t, history[0].Completed(), "a turn must never stay pending")
	require.Equal(t, "test", history[0].UserText)
	require.Equal(t, "quota exceeded", *history[0].BotText)

	// Failed turns are never persisted.
	require.Empty(t, st.appended)
}

func TestHandleTurn_StoreFailureDoesNotBlockTurn(t *testing.T) {
	provider := &fakeProvider{reply: "fine"}
	st := &recordingStore{err: &store.PersistenceError{Op: "append", Err: errors.New("connection refused")}}
	o := newTestOrchestrator(provider, st)

	history, cleared := o.HandleTurn(context.Background(), "u1", "Hi", nil)

	require.Equal(t, ClearedInput, cleared)
	require.Len(t, history, 1)
	require.Equal(t, "fine", *history[0].BotText)
}

func TestHandleTurn_NilStore(t *testing.T) {
	o := newTestOrchestrator(&fakeProvider{reply: "ok"}, nil)
	history, _ := o.HandleTurn(context.Background(), "u1", "Hi", nil)
	require.Len(t, history, 1)
}

func TestHandleTurn_SessionKeepsAcceptingAfterFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	o := newTestOrchestrator(provider, nil)

	history, _ := o.HandleTurn(context.Background(), "u1", "one", nil)
	provider.err = nil
	provider.reply = "recovered"
	history, _ = o.HandleTurn(context.Background(), "u1", "two", history)

	require.Len(t, history, 2)
	require.Equal(t, "boom", *history[0].BotText)
	require.Equal(t, "recovered", *history[1].BotText)
}

func TestGateway_TypedError(t *testing.T) {
	g := NewGateway(&fakeProvider{err: errors.New("rate limited")}, "fake", 0)

	_, err := g.Invoke(context.Background(), nil)
	require.Error(t, err)
	var infErr *InferenceError
	require.ErrorAs(t, err, &infErr)
	require.Equal(t, "fake", infErr.Provider)
	require.Equal(t, "rate limited", err.Error())
}

type blockingProvider struct{}

func (blockingProvider) ChatCompletion(ctx context.Context, _ []conversation.Message) (model.CompletionResponse, error) {
	<-ctx.Done()
	return model.CompletionResponse{}, ctx.Err()
}

func TestGateway_Timeout(t *testing.T) {
	g := NewGateway(blockingProvider{}, "slow", 20*time.Millisecond)

	start := time.Now()
	_, err := g.Invoke(context.Background(), nil)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
