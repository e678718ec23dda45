package components

import (
	"strings"

	"github.com/stagechat/stagechat/internal/models"
	"github.com/stagechat/stagechat/ui/styles"
)

func RenderMessages(messages []models.Message) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	boundaryStyle := styles.BoundaryStyle()
	statusStyle := styles.GenerationStatusStyle()
	stoppedStyle := styles.StoppedStyle()

	for _, msg := range messages {
		if msg.IsContextBoundary {
			b.WriteString(boundaryStyle.Render("── context boundary ──") + "\n\n")
		}

		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("You ["+msg.CreatedAt.Format("15:04")+"]: "+msg.Content) + "\n\n")
		case models.RoleAssistant:
			body := "Assistant: " + msg.Content
			if status := GenerationStatus(msg); status != "" {
				style := statusStyle
				if msg.Stage == models.StageStopped {
					style = stoppedStyle
				}
				body += "\n" + style.Render(status)
			}
			b.WriteString(assistantStyle.Render(body) + "\n\n")
		}
	}

	return b.String()
}

// GenerationStatus returns the indicator text for a message, or "" when no
// indicator should be shown. Server-provided status text wins; otherwise the
// stage number maps to a display phrase. A stopped generation (stage -1)
// keeps its indicator; a normal finish shows none.
func GenerationStatus(msg models.Message) string {
	if msg.Stage == models.StageStopped {
		return "■ Generation stopped"
	}
	if !msg.IsGenerating {
		return ""
	}
	if msg.StatusText != "" {
		return msg.StatusText
	}
	switch msg.Stage {
	case models.StagePrimary:
		return "Generating…"
	case models.StageRefine:
		return "Refining…"
	case models.StageVerify:
		return "Verifying…"
	default:
		return "Processing…"
	}
}

// VisibleTail trims rendered output to its last maxLines lines so the most
// recent message stays on screen.
func VisibleTail(rendered string, maxLines int) string {
	if maxLines <= 0 {
		return rendered
	}
	lines := strings.Split(rendered, "\n")
	if len(lines) <= maxLines {
		return rendered
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}
