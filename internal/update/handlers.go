package update

import (
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stagechat/stagechat/internal/dispatcher"
	"github.com/stagechat/stagechat/internal/eventbus"
	"github.com/stagechat/stagechat/internal/models"
)

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus, chatReady bool) tea.Cmd {
	// A pending confirmation captures the keyboard until answered
	if appModel.PendingConfirmation != nil {
		return handleConfirmationKey(appModel, keyMsg, eb)
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "enter":
		if strings.TrimSpace(appModel.Input) != "" && chatReady {
			// Send event to core via event bus with error handling
			if err := eb.SendToCore(eventbus.SendMessageEvent{Message: appModel.Input}); err != nil {
				appModel.Status = "Error sending message: " + err.Error()
				return nil
			}

			// Only manage local UI state - clear input
			appModel.Input = ""
			return nil
		} else if strings.TrimSpace(appModel.Input) != "" {
			appModel.Input = ""
			appModel.Status = "Chat service not available"
		}
	case "esc":
		if appModel.Loading {
			if err := eb.SendToCore(eventbus.StopGenerationEvent{}); err != nil {
				appModel.Status = "Error requesting stop: " + err.Error()
			}
		}
	case "ctrl+a":
		if err := eb.SendToCore(eventbus.ArchiveChatEvent{}); err != nil {
			appModel.Status = "Error requesting archive: " + err.Error()
		}
	case "backspace":
		// Trim a rune, not a byte; status texts and input may be non-ASCII
		if appModel.Input != "" {
			runes := []rune(appModel.Input)
			appModel.Input = string(runes[:len(runes)-1])
		}
	case " ", "space":
		appModel.Input += " "
	default:
		if utf8.RuneCountInString(keyMsg.String()) == 1 {
			appModel.Input += keyMsg.String()
		}
	}
	return nil
}

func handleConfirmationKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	pending := appModel.PendingConfirmation
	switch keyMsg.String() {
	case "y", "Y":
		eb.SendToCore(eventbus.ConfirmationResponseEvent{ID: pending.ID, Approved: true})
		appModel.PendingConfirmation = nil
	case "n", "N", "esc":
		eb.SendToCore(eventbus.ConfirmationResponseEvent{ID: pending.ID, Approved: false})
		appModel.PendingConfirmation = nil
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg dispatcher.CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = event.Messages
		appModel.Loading = event.IsGenerating

		// Update status based on core state
		switch {
		case event.Error != nil:
			appModel.Status = "Error: " + event.Error.Error()
		case event.Notice != "":
			appModel.Status = event.Notice
		case event.IsGenerating:
			appModel.Status = "Generating"
		default:
			appModel.Status = "Ready"
		}
	case eventbus.ConfirmationRequestEvent:
		appModel.PendingConfirmation = &models.ConfirmationRequest{
			ID:        event.ID,
			Operation: event.Operation,
		}
	}

	return nil
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Loading {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
