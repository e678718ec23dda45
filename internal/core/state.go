package core

import (
	"sync"
	"time"

	"github.com/stagechat/stagechat/internal/models"
)

// ChatState holds the conversation for the event-driven core. Messages are
// the single source of truth for the UI; an id index guarantees that status
// updates mutate the existing entry instead of appending a duplicate.
type ChatState struct {
	mu           sync.RWMutex
	messages     []models.Message
	index        map[int64]int // message id -> position in messages
	generatingID int64         // 0 when idle
	notice       string
	lastError    error
}

func NewChatState() *ChatState {
	return &ChatState{
		messages: make([]models.Message, 0),
		index:    make(map[int64]int),
	}
}

// Messages returns a copy of the conversation snapshot.
func (cs *ChatState) Messages() []models.Message {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]models.Message, len(cs.messages))
	copy(result, cs.messages)
	return result
}

func (cs *ChatState) MessageCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.messages)
}

// Load replaces the conversation with a server-provided listing.
func (cs *ChatState) Load(messages []models.Message) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.messages = make([]models.Message, len(messages))
	copy(cs.messages, messages)
	cs.index = make(map[int64]int)
	for i, m := range cs.messages {
		if m.ID != 0 {
			cs.index[m.ID] = i
		}
	}
}

// StartGenerationWithUserMessage atomically appends the user message and the
// empty assistant placeholder, and marks the generation as active.
func (cs *ChatState) StartGenerationWithUserMessage(content string, assistantID int64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := time.Now()
	cs.messages = append(cs.messages, models.Message{
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: now,
	})
	cs.messages = append(cs.messages, models.Message{
		ID:           assistantID,
		Role:         models.RoleAssistant,
		CreatedAt:    now,
		IsGenerating: true,
		Stage:        models.StagePrimary,
	})
	cs.index[assistantID] = len(cs.messages) - 1
	cs.generatingID = assistantID
	cs.notice = ""
	cs.lastError = nil
}

// ApplyStatus updates the tracked message in place. Unknown ids are ignored
// and reported as false; the caller decides whether that is worth logging.
func (cs *ChatState) ApplyStatus(id int64, content string, stage int, statusText string, isGenerating bool) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	pos, ok := cs.index[id]
	if !ok {
		return false
	}
	msg := &cs.messages[pos]
	msg.Content = content
	msg.Stage = stage
	msg.StatusText = statusText
	msg.IsGenerating = isGenerating
	return true
}

// ResumeGeneration marks an already-loaded message as the active generation
// (reconnect after a restart mid-generation).
func (cs *ChatState) ResumeGeneration(id int64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.generatingID = id
}

func (cs *ChatState) FinishGeneration() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.generatingID = 0
}

func (cs *ChatState) GeneratingID() int64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.generatingID
}

func (cs *ChatState) IsGenerating() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.generatingID != 0
}

func (cs *ChatState) SetNotice(notice string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.notice = notice
}

func (cs *ChatState) Notice() string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.notice
}

func (cs *ChatState) SetError(err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.lastError = err
}

func (cs *ChatState) LastError() error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastError
}
