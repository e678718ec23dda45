package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stagechat/stagechat/internal/models"
)

func TestGenerationStatus_StageMapping(t *testing.T) {
	cases := []struct {
		stage int
		want  string
	}{
		{1, "Generating…"},
		{2, "Refining…"},
		{3, "Verifying…"},
		{7, "Processing…"},
		{0, "Processing…"}, // still generating, stage not yet reported
	}
	for _, tc := range cases {
		msg := models.Message{Role: models.RoleAssistant, IsGenerating: true, Stage: tc.stage}
		require.Equal(t, tc.want, GenerationStatus(msg), "stage %d", tc.stage)
	}
}

func TestGenerationStatus_ServerTextWins(t *testing.T) {
	msg := models.Message{
		Role:         models.RoleAssistant,
		IsGenerating: true,
		Stage:        2,
		StatusText:   "Этап 2: убираем воду",
	}
	require.Equal(t, "Этап 2: убираем воду", GenerationStatus(msg))
}

func TestGenerationStatus_RemovedOnNormalCompletion(t *testing.T) {
	msg := models.Message{Role: models.RoleAssistant, IsGenerating: false, Stage: models.StageDone}
	require.Empty(t, GenerationStatus(msg))
}

func TestGenerationStatus_StoppedPersists(t *testing.T) {
	msg := models.Message{Role: models.RoleAssistant, IsGenerating: false, Stage: models.StageStopped}
	require.Equal(t, "■ Generation stopped", GenerationStatus(msg))

	// A later non-generating update must not clear the stopped indicator
	msg.Content = "partial text"
	require.Equal(t, "■ Generation stopped", GenerationStatus(msg))
}

func TestRenderMessages_UserBubbleWithTimestamp(t *testing.T) {
	created := time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC)
	out := RenderMessages([]models.Message{
		{Role: models.RoleUser, Content: "Hello", CreatedAt: created},
	})
	require.Contains(t, out, "You [12:30]")
	require.Contains(t, out, "Hello")
}

func TestRenderMessages_ContextBoundaryMarker(t *testing.T) {
	out := RenderMessages([]models.Message{
		{Role: models.RoleUser, Content: "old"},
		{Role: models.RoleAssistant, Content: "fresh", IsContextBoundary: true},
	})
	require.Contains(t, out, "context boundary")
	require.Less(t, strings.Index(out, "old"), strings.Index(out, "context boundary"),
		"marker must sit between the messages")
}

func TestRenderMessages_StoppedIndicatorRendered(t *testing.T) {
	out := RenderMessages([]models.Message{
		{ID: 4, Role: models.RoleAssistant, Content: "cut short", Stage: models.StageStopped},
	})
	require.Contains(t, out, "Generation stopped")
}

func TestRenderMessages_NoIndicatorAfterCompletion(t *testing.T) {
	out := RenderMessages([]models.Message{
		{ID: 4, Role: models.RoleAssistant, Content: "done", Stage: models.StageDone},
	})
	require.NotContains(t, out, "Generating")
	require.NotContains(t, out, "stopped")
}

func TestVisibleTail(t *testing.T) {
	rendered := "a\nb\nc\nd\ne"
	require.Equal(t, "d\ne", VisibleTail(rendered, 2))
	require.Equal(t, rendered, VisibleTail(rendered, 10))
	require.Equal(t, rendered, VisibleTail(rendered, 0))
}
