package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks"
	"github.com/Freeeeeet/driver_availability/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/driver_availability/internal/controller/handlers"
	"github.com/Freeeeeet/driver_availability/internal/controller/state"
)

// Deps are the services the bot talks to.
type Deps struct {
	Users     handlers.UserRegistrar
	Templates callbacktypes.Templates
	Days      handlers.DayLister
	Applier   callbacktypes.Applier
	Sessions  state.Store
	Logger    *zap.Logger
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(botInstance *bot.Bot, d Deps) *BotController {
	cmdHandlers := handlers.NewHandlers(d.Users, d.Templates, d.Days, d.Sessions, d.Logger)
	callbackHandler := callbacks.NewHandler(d.Users, d.Templates, d.Applier, d.Sessions, d.Logger)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          d.Logger,
	}
}

// RegisterHandlers wires commands, dialog text and inline buttons.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/templates", bot.MatchTypeExact, c.handlers.HandleTemplates)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/newtemplate", bot.MatchTypeExact, c.handlers.HandleNewTemplate)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/days", bot.MatchTypeExact, c.handlers.HandleDays)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Dialog steps
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Register"},
		{Command: "templates", Description: "📋 My week templates"},
		{Command: "newtemplate", Description: "➕ New template"},
		{Command: "days", Description: "🗓 Upcoming availability"},
		{Command: "cancel", Description: "✖️ Cancel the current dialog"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start polls for updates until ctx is done.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
