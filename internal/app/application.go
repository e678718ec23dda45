package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stagechat/stagechat/internal/api"
	"github.com/stagechat/stagechat/internal/config"
	"github.com/stagechat/stagechat/internal/core"
	"github.com/stagechat/stagechat/internal/dispatcher"
	"github.com/stagechat/stagechat/internal/eventbus"
	"github.com/stagechat/stagechat/internal/logger"
	"github.com/stagechat/stagechat/internal/models"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	model      *AppModel
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// The TUI owns the terminal; logging goes to a file
	if err := logger.Init(cfg.GetLogFile(), cfg.GetLogLevel()); err != nil {
		return nil, err
	}

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)

	client := api.NewClient(api.ClientConfig{
		BaseURL:       cfg.GetServerURL(),
		SessionCookie: cfg.GetSessionCookie(),
		CSRFToken:     cfg.GetCSRFToken(),
		PollInterval:  cfg.GetPollInterval(),
	})
	chatService := core.NewChatService(client, eb)

	model := &AppModel{
		appModel:   createInitialAppModel(cfg),
		dispatcher: disp,
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model)
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	logger.Close()
}

func createInitialAppModel(cfg *config.Config) models.AppModel {
	// No initial messages in UI - they come from core as single source of truth
	status := "Connecting to " + cfg.GetServerURL()
	if !cfg.IsValid() {
		status = "No server configured - run: stagechat profile add"
	}
	return models.AppModel{
		Messages:         make([]models.Message, 0),
		Status:           status,
		Loading:          false,
		ChatServiceReady: cfg.IsValid(),
	}
}
