package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stagechat/stagechat/internal/dispatcher"
	"github.com/stagechat/stagechat/internal/update"
	"github.com/stagechat/stagechat/ui/components"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(dispatcher.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	// Handle other events through the event bus
	eventBus := m.dispatcher.GetEventBus()
	chatReady := m.appModel.ChatServiceReady
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus, chatReady)

	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	transcript := components.RenderMessages(m.appModel.Messages)
	// Keep the view pinned to the latest message: the input box and status
	// bar take the bottom rows, the transcript gets whatever is left.
	if m.appModel.Height > 0 {
		transcript = components.VisibleTail(transcript, m.appModel.Height-5)
	}
	b.WriteString(transcript)

	b.WriteString(components.RenderInput(m.appModel.Input, m.appModel.Width))
	b.WriteString("\n")

	status := m.appModel.Status
	if m.appModel.PendingConfirmation != nil {
		status = m.appModel.PendingConfirmation.Operation + " [y/n]"
	}
	b.WriteString(components.RenderStatus(status, m.appModel.Loading, m.appModel.LoadingDots, m.appModel.Width))

	return b.String()
}
