package assistant

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

const systemPrompt = `You are the EduConnect study assistant. Answer questions about courses, schedules and studying.
When the user wants to publish a post or message someone, end your answer with exactly one line:
ACTION: CREATE_POST|<content>|<comma separated tags>|<group name or empty>
ACTION: SEND_MESSAGE|<recipient name>|<content>
ACTION: ASK_RECIPIENT|<content>   (when the user did not say who should receive the message)
Never emit more than one ACTION line.`

// Reply is one assistant turn. Action is nil when the assistant only answered.
type Reply struct {
	Text       string  `json:"text"`
	ActionType string  `json:"action_type,omitempty"`
	Action     Command `json:"action,omitempty"`
}

type Service struct {
	completer Completer
	store     *ConversationStore
	log       *zap.Logger
}

func NewService(completer Completer, store *ConversationStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{completer: completer, store: store, log: log}
}

// Chat runs one turn of the user's conversation. When the previous turn asked who should get
// a message, this message is taken as the recipient and no model call is made.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conv := s.store.Load(userID)
	if conv.Pending != nil {
		cmd := SendMessage{Recipient: message, Content: conv.Pending.Content}
		conv.Pending = nil
		conv.append(Message{Role: "user", Content: message}, s.store.maxHistory)
		s.store.Save(conv)
		return reply("Sending your message to "+message+".", cmd), nil
	}

	conv.append(Message{Role: "user", Content: message}, s.store.maxHistory)
	messages := append([]Message{{Role: "system", Content: systemPrompt}}, conv.History...)

	raw, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.log.Error("🔥 assistant completion failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	text, cmd := ParseReply(raw)
	if ask, ok := cmd.(AskRecipient); ok {
		conv.Pending = &ask
		if text == "" {
			text = "Who should receive this message?"
		}
	}
	conv.append(Message{Role: "assistant", Content: raw}, s.store.maxHistory)
	s.store.Save(conv)
	return reply(text, cmd), nil
}

func reply(text string, cmd Command) *Reply {
	r := &Reply{Text: text}
	if _, none := cmd.(None); !none {
		r.ActionType = cmd.Kind()
		r.Action = cmd
	}
	return r
}
