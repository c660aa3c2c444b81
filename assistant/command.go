package assistant

import "strings"

// Command is an action the assistant asks the client to carry out. It is parsed once from the
// model's reply; everything downstream switches on the concrete type.
type Command interface {
	Kind() string
}

type CreatePost struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Group   string   `json:"group,omitempty"`
}

type SendMessage struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

// AskRecipient means the user wants to send Content but has not said to whom.
type AskRecipient struct {
	Content string `json:"content"`
}

type None struct{}

func (CreatePost) Kind() string   { return "create_post" }
func (SendMessage) Kind() string  { return "send_message" }
func (AskRecipient) Kind() string { return "ask_recipient" }
func (None) Kind() string         { return "none" }

const actionPrefix = "ACTION:"

// ParseReply splits the model output into the text shown to the user and at most one command.
// The command line has the form
//
//	ACTION: CREATE_POST|content|tag1,tag2|group
//	ACTION: SEND_MESSAGE|recipient|content
//	ACTION: ASK_RECIPIENT|content
//
// Malformed or unknown actions yield None and stay in the text.
func ParseReply(reply string) (string, Command) {
	var text []string
	var cmd Command = None{}

	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		if _, isNone := cmd.(None); !isNone || !strings.HasPrefix(trimmed, actionPrefix) {
			text = append(text, line)
			continue
		}
		parsed, ok := parseAction(strings.TrimSpace(strings.TrimPrefix(trimmed, actionPrefix)))
		if !ok {
			text = append(text, line)
			continue
		}
		cmd = parsed
	}
	return strings.TrimSpace(strings.Join(text, "\n")), cmd
}

func parseAction(s string) (Command, bool) {
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch parts[0] {
	case "CREATE_POST":
		if len(parts) < 2 || parts[1] == "" {
			return nil, false
		}
		post := CreatePost{Content: parts[1]}
		if len(parts) > 2 {
			for _, tag := range strings.Split(parts[2], ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					post.Tags = append(post.Tags, tag)
				}
			}
		}
		if len(parts) > 3 {
			post.Group = parts[3]
		}
		return post, true
	case "SEND_MESSAGE":
		if len(parts) < 3 || parts[2] == "" {
			return nil, false
		}
		if parts[1] == "" {
			return AskRecipient{Content: parts[2]}, true
		}
		return SendMessage{Recipient: parts[1], Content: parts[2]}, true
	case "ASK_RECIPIENT":
		if len(parts) < 2 || parts[1] == "" {
			return nil, false
		}
		return AskRecipient{Content: parts[1]}, true
	default:
		return nil, false
	}
}
