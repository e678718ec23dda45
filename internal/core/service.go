package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/stagechat/stagechat/internal/api"
	"github.com/stagechat/stagechat/internal/eventbus"
	"github.com/stagechat/stagechat/internal/logger"
	"github.com/stagechat/stagechat/internal/models"
)

// ChatService is the coordinator: it owns the Idle/Generating state machine,
// wires UI events to transport calls, and decides when polling starts and
// stops. All handling happens on the single event-loop goroutine; poll ticks
// are funneled into that loop through the ticks channel so ordering matches
// timer order.
type ChatService struct {
	client    *api.Client
	state     *ChatState
	eventBus  *eventbus.EventBus
	ticks     chan api.StatusResponse
	pollFails chan pollFailure
	ctx       context.Context
	cancel    context.CancelFunc
	loopDone  chan struct{}
	started   bool

	// pendingArchive is the id of the outstanding archive confirmation, if
	// any. Kept on the loop goroutine only.
	pendingArchive string
}

// pollFailure reports a poll session that died on a request error.
type pollFailure struct {
	messageID int64
	err       error
}

func NewChatService(client *api.Client, eb *eventbus.EventBus) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		client:    client,
		state:     NewChatState(),
		eventBus:  eb,
		ticks:     make(chan api.StatusResponse, 16),
		pollFails: make(chan pollFailure, 4),
		ctx:       ctx,
		cancel:    cancel,
		loopDone:  make(chan struct{}),
	}
}

// Start loads the existing conversation and runs the event loop.
func (cs *ChatService) Start() {
	cs.started = true
	go func() {
		defer close(cs.loopDone)
		cs.loadMessages()
		cs.eventLoop()
	}()
}

// Stop cancels the event loop and waits for it to exit, so no state push
// can race a later bus close.
func (cs *ChatService) Stop() {
	cs.client.StopPolling()
	cs.cancel()
	if cs.started {
		<-cs.loopDone
	}
}

func (cs *ChatService) eventLoop() {
	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		case tick := <-cs.ticks:
			cs.handleTick(tick)
		case fail := <-cs.pollFails:
			cs.handlePollFailure(fail)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		cs.handleSend(e.Message)
	case eventbus.StopGenerationEvent:
		cs.handleStop()
	case eventbus.ArchiveChatEvent:
		cs.handleArchiveRequest()
	case eventbus.ConfirmationResponseEvent:
		cs.handleConfirmationResponse(e)
	}
}

// enqueueTick is called from the poll goroutine; it hands the tick to the
// event loop without blocking the timer.
func (cs *ChatService) enqueueTick(status api.StatusResponse) {
	select {
	case cs.ticks <- status:
	case <-cs.ctx.Done():
	}
}

// startPolling begins a session for messageID and watches it so a fatal
// poll error reaches the event loop instead of dying inside the transport.
func (cs *ChatService) startPolling(messageID int64) {
	session := cs.client.StartPolling(messageID, cs.enqueueTick)
	go func() {
		select {
		case <-session.Done():
		case <-cs.ctx.Done():
			return
		}
		if err := session.Err(); err != nil {
			select {
			case cs.pollFails <- pollFailure{messageID: messageID, err: err}:
			case <-cs.ctx.Done():
			}
		}
	}()
}

func (cs *ChatService) handleSend(text string) {
	if cs.state.IsGenerating() {
		cs.state.SetNotice("Please wait until the current response is finished")
		cs.pushStateToUI()
		return
	}

	resp, err := cs.client.SendMessage(cs.ctx, text)
	if err != nil {
		cs.state.SetError(err)
		cs.pushStateToUI()
		return
	}
	if !resp.Success {
		notice := resp.Error
		if notice == "" {
			notice = "The server rejected the message"
		}
		cs.state.SetNotice(notice)
		cs.pushStateToUI()
		return
	}

	cs.state.StartGenerationWithUserMessage(text, resp.MessageID)
	cs.pushStateToUI()
	cs.startPolling(resp.MessageID)
}

func (cs *ChatService) handleTick(tick api.StatusResponse) {
	active := cs.state.GeneratingID()
	if active == 0 || tick.ID != active {
		// Stale tick from a session that was already replaced or stopped
		logger.Debugf("ignoring stale tick for message %d (active %d)", tick.ID, active)
		return
	}

	cs.state.ApplyStatus(tick.ID, tick.Content, tick.GenerationStage, tick.GenerationStatusText, tick.IsGenerating)

	if !tick.IsGenerating {
		cs.state.FinishGeneration()
		cs.client.StopPolling()
	}
	cs.pushStateToUI()
}

// handlePollFailure returns the coordinator to Idle when the active poll
// session dies, so later submits are not rejected forever. The message
// keeps its generating indicator; a reload clears it.
func (cs *ChatService) handlePollFailure(fail pollFailure) {
	if cs.state.GeneratingID() != fail.messageID {
		return
	}
	logger.Errorf("poll session for message %d died: %v", fail.messageID, fail.err)
	cs.state.FinishGeneration()
	cs.state.SetNotice("Lost connection while waiting for the response; please try again")
	cs.pushStateToUI()
}

func (cs *ChatService) handleStop() {
	if !cs.state.IsGenerating() {
		cs.state.SetNotice("Nothing is generating right now")
		cs.pushStateToUI()
		return
	}

	resp, err := cs.client.StopGeneration(cs.ctx)
	if err != nil {
		cs.state.SetError(err)
		cs.pushStateToUI()
		return
	}
	if !resp.Success {
		notice := resp.Error
		if notice == "" {
			notice = "The server could not stop the generation"
		}
		cs.state.SetNotice(notice)
		cs.pushStateToUI()
	}
	// The stopped state (stage -1) arrives via the next poll tick, which
	// also ends the session.
}

func (cs *ChatService) handleArchiveRequest() {
	if cs.state.IsGenerating() {
		cs.state.SetNotice("Cannot archive while a response is generating")
		cs.pushStateToUI()
		return
	}
	if cs.pendingArchive != "" {
		return
	}

	cs.pendingArchive = uuid.NewString()
	if err := cs.eventBus.SendToUI(eventbus.ConfirmationRequestEvent{
		ID:        cs.pendingArchive,
		Operation: "Archive the current chat? This starts a new conversation.",
	}); err != nil {
		logger.Errorf("failed to request archive confirmation: %v", err)
		cs.pendingArchive = ""
	}
}

func (cs *ChatService) handleConfirmationResponse(resp eventbus.ConfirmationResponseEvent) {
	if resp.ID != cs.pendingArchive {
		return
	}
	cs.pendingArchive = ""
	if !resp.Approved {
		return
	}
	cs.archiveChat()
}

func (cs *ChatService) archiveChat() {
	resp, err := cs.client.ArchiveChat(cs.ctx)
	if err != nil {
		cs.state.SetError(err)
		cs.pushStateToUI()
		return
	}
	if !resp.Success {
		notice := resp.Error
		if notice == "" {
			notice = "The server could not archive the chat"
		}
		cs.state.SetNotice(notice)
		cs.pushStateToUI()
		return
	}

	logger.Infof("chat archived, new chat id %d", resp.NewChatID)
	cs.loadMessages()
	cs.state.SetNotice("Chat archived")
	cs.pushStateToUI()
}

// loadMessages fetches the full conversation and resumes polling if the
// server reports a generation still in flight (page-reload semantics).
func (cs *ChatService) loadMessages() {
	resp, err := cs.client.ChatMessages(cs.ctx)
	if err != nil {
		cs.state.SetError(err)
		cs.pushStateToUI()
		return
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	var resumeID int64
	for _, data := range resp.Messages {
		msg := models.Message{
			ID:                data.ID,
			Role:              models.Role(data.Role),
			Content:           data.Content,
			IsGenerating:      data.IsGenerating,
			Stage:             data.GenerationStage,
			IsContextBoundary: data.IsContextBoundary,
		}
		if t, err := api.ParseTimestamp(data.CreatedAt); err == nil {
			msg.CreatedAt = t
		}
		if data.IsGenerating {
			resumeID = data.ID
		}
		messages = append(messages, msg)
	}

	cs.state.Load(messages)
	if resumeID != 0 {
		cs.state.ResumeGeneration(resumeID)
		cs.startPolling(resumeID)
	} else {
		cs.state.FinishGeneration()
	}
	cs.pushStateToUI()
}

func (cs *ChatService) pushStateToUI() {
	err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:     cs.state.Messages(),
		IsGenerating: cs.state.IsGenerating(),
		Notice:       cs.state.Notice(),
		Error:        cs.state.LastError(),
	})
	if err != nil {
		logger.Errorf("failed to push state to UI: %v", err)
	}
}
