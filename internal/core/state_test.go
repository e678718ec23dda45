package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stagechat/stagechat/internal/models"
)

func TestLoadThenApplyStatus_UpdatesExistingEntry(t *testing.T) {
	state := NewChatState()
	state.Load([]models.Message{
		{ID: 1, Role: models.RoleUser, Content: "hi", CreatedAt: time.Now()},
		{ID: 5, Role: models.RoleAssistant, Content: "", IsGenerating: true, Stage: 1},
	})

	ok := state.ApplyStatus(5, "draft", 2, "Этап 2", true)
	require.True(t, ok)

	messages := state.Messages()
	require.Len(t, messages, 2, "re-applying a known id must never duplicate")
	require.Equal(t, "draft", messages[1].Content)
	require.Equal(t, 2, messages[1].Stage)
	require.Equal(t, "Этап 2", messages[1].StatusText)
}

func TestApplyStatus_UnknownID(t *testing.T) {
	state := NewChatState()
	require.False(t, state.ApplyStatus(99, "x", 1, "", true))
	require.Equal(t, 0, state.MessageCount())
}

func TestStartGeneration_AppendsUserAndPlaceholder(t *testing.T) {
	state := NewChatState()
	state.StartGenerationWithUserMessage("question", 7)

	messages := state.Messages()
	require.Len(t, messages, 2)
	require.Equal(t, models.RoleUser, messages[0].Role)
	require.Equal(t, models.RoleAssistant, messages[1].Role)
	require.True(t, messages[1].IsGenerating)
	require.Equal(t, models.StagePrimary, messages[1].Stage)
	require.Equal(t, int64(7), state.GeneratingID())
	require.True(t, state.IsGenerating())
}

func TestLoad_ReplacesConversationAndIndex(t *testing.T) {
	state := NewChatState()
	state.StartGenerationWithUserMessage("old", 7)

	state.Load([]models.Message{{ID: 10, Role: models.RoleAssistant, Content: "fresh"}})

	require.Equal(t, 1, state.MessageCount())
	require.False(t, state.ApplyStatus(7, "stale", 1, "", true), "old ids must vanish with the reload")
	require.True(t, state.ApplyStatus(10, "fresh update", 0, "", false))
}

func TestMessagesReturnsCopy(t *testing.T) {
	state := NewChatState()
	state.StartGenerationWithUserMessage("question", 7)

	snapshot := state.Messages()
	snapshot[0].Content = "mutated"

	require.Equal(t, "question", state.Messages()[0].Content)
}
