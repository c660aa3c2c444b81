package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		text string
		cmd  Command
	}{
		{
			name: "plain answer",
			in:   "Your next session is on Monday.",
			text: "Your next session is on Monday.",
			cmd:  None{},
		},
		{
			name: "create post",
			in:   "Done!\nACTION: CREATE_POST|Study group tonight| maths, revision |Terminale S",
			text: "Done!",
			cmd:  CreatePost{Content: "Study group tonight", Tags: []string{"maths", "revision"}, Group: "Terminale S"},
		},
		{
			name: "send message",
			in:   "ACTION: SEND_MESSAGE|Claire Martin|Can we move Monday's class?\nI'll pass it on.",
			text: "I'll pass it on.",
			cmd:  SendMessage{Recipient: "Claire Martin", Content: "Can we move Monday's class?"},
		},
		{
			name: "message without recipient",
			in:   "ACTION: SEND_MESSAGE||See you tomorrow",
			cmd:  AskRecipient{Content: "See you tomorrow"},
		},
		{
			name: "ask recipient",
			in:   "Who is it for?\nACTION: ASK_RECIPIENT|See you tomorrow",
			text: "Who is it for?",
			cmd:  AskRecipient{Content: "See you tomorrow"},
		},
		{
			name: "unknown action stays as text",
			in:   "ACTION: DELETE_ACCOUNT|now",
			text: "ACTION: DELETE_ACCOUNT|now",
			cmd:  None{},
		},
		{
			name: "second action ignored",
			in:   "ACTION: CREATE_POST|first\nACTION: CREATE_POST|second",
			text: "ACTION: CREATE_POST|second",
			cmd:  CreatePost{Content: "first"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cmd := ParseReply(tt.in)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.cmd, cmd)
		})
	}
}

type scriptedCompleter struct {
	replies []string
	calls   [][]Message
}

func (s *scriptedCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	s.calls = append(s.calls, messages)
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestChatResolvesPendingRecipient(t *testing.T) {
	ctx := context.Background()
	completer := &scriptedCompleter{replies: []string{"ACTION: ASK_RECIPIENT|Running late"}}
	svc := NewService(completer, NewConversationStore(10), nil)
	user := uuid.New()

	first, err := svc.Chat(ctx, user, "Tell them I'm running late")
	require.NoError(t, err)
	assert.Equal(t, "ask_recipient", first.ActionType)
	assert.Equal(t, "Who should receive this message?", first.Text)

	second, err := svc.Chat(ctx, user, "Claire Martin")
	require.NoError(t, err)
	assert.Equal(t, SendMessage{Recipient: "Claire Martin", Content: "Running late"}, second.Action)
	assert.Len(t, completer.calls, 1)

	// another user's conversation is independent
	other, err := NewService(&scriptedCompleter{replies: []string{"Hi"}}, NewConversationStore(10), nil).Chat(ctx, uuid.New(), "Claire Martin")
	require.NoError(t, err)
	assert.Nil(t, other.Action)
}

func TestChatKeepsBoundedHistory(t *testing.T) {
	ctx := context.Background()
	completer := &scriptedCompleter{replies: []string{"a", "b", "c"}}
	store := NewConversationStore(4)
	svc := NewService(completer, store, nil)
	user := uuid.New()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := svc.Chat(ctx, user, msg)
		require.NoError(t, err)
	}
	conv := store.Load(user)
	assert.Len(t, conv.History, 4)
	assert.Equal(t, "c", conv.History[3].Content)
	assert.Equal(t, "system", completer.calls[2][0].Role)

	_, err := svc.Chat(ctx, user, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Bonjour"}}]}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, "sk-test", "gpt-4o-mini").Complete(context.Background(), []Message{{Role: "user", Content: "Salut"}})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
}
