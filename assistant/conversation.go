package assistant

import (
	"sync"

	"github.com/google/uuid"
)

const defaultHistory = 20

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is one user's chat state, including a message waiting for its recipient.
type Conversation struct {
	UserID  uuid.UUID
	History []Message
	Pending *AskRecipient
}

func (c *Conversation) append(m Message, limit int) {
	c.History = append(c.History, m)
	if len(c.History) > limit {
		c.History = c.History[len(c.History)-limit:]
	}
}

// ConversationStore keeps conversations in memory, one per user.
type ConversationStore struct {
	mu         sync.Mutex
	convs      map[uuid.UUID]*Conversation
	maxHistory int
}

func NewConversationStore(maxHistory int) *ConversationStore {
	if maxHistory <= 0 {
		maxHistory = defaultHistory
	}
	return &ConversationStore{convs: make(map[uuid.UUID]*Conversation), maxHistory: maxHistory}
}

// Load returns a copy of the user's conversation; changes take effect through Save.
func (s *ConversationStore) Load(userID uuid.UUID) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[userID]
	if !ok {
		return Conversation{UserID: userID}
	}
	cp := *c
	cp.History = append([]Message(nil), c.History...)
	return cp
}

func (s *ConversationStore) Save(c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.UserID] = &c
}

func (s *ConversationStore) Reset(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, userID)
}
