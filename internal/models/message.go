package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Generation stages as reported by the server.
const (
	StageDone    = 0
	StagePrimary = 1
	StageRefine  = 2
	StageVerify  = 3
	StageStopped = -1
)

// Message is one entry of the conversation. The assistant message created by
// a send starts as an empty placeholder and is mutated in place by poll
// ticks until the server reports generation finished.
type Message struct {
	ID        int64
	Role      Role
	Content   string
	CreatedAt time.Time

	IsGenerating bool
	Stage        int
	StatusText   string

	// IsContextBoundary marks the point where the server trimmed the
	// conversation context; rendered as a divider before this message.
	IsContextBoundary bool
}
