package bot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"luna-bot/internal/analysis"
	"luna-bot/internal/models"
	"luna-bot/internal/session"
	"luna-bot/pkg/logger"
)

const DefaultAnalysisTimeout = 60 * time.Second

// ProfileStore is the part of the persistence layer the controller needs.
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*models.Profile, error)
	Upsert(ctx context.Context, userID int64, update models.ProfileUpdate) error
}

type Options struct {
	// OperatorChatID receives forwarded support messages.
	OperatorChatID  int64
	AnalysisTimeout time.Duration
	Lexicon         *analysis.Lexicon
	Now             func() time.Time
	NewTicketID     func() string
}

// Controller runs the per-chat conversation: it routes each event to a
// transition, calls the analysis service when needed and records results.
// Events for different chats may be handled concurrently.
type Controller struct {
	messenger Messenger
	analyzer  analysis.Analyzer
	profiles  ProfileStore
	sessions  *session.Store
	logger    *logger.Logger

	operatorChatID int64
	timeout        time.Duration
	lexicon        *analysis.Lexicon
	now            func() time.Time
	newTicketID    func() string
}

func NewController(messenger Messenger, analyzer analysis.Analyzer, profiles ProfileStore, sessions *session.Store, logger *logger.Logger, opts Options) *Controller {
	c := &Controller{
		messenger:      messenger,
		analyzer:       analyzer,
		profiles:       profiles,
		sessions:       sessions,
		logger:         logger.With("component", "controller", "analyzer", analyzer.Name()),
		operatorChatID: opts.OperatorChatID,
		timeout:        opts.AnalysisTimeout,
		lexicon:        opts.Lexicon,
		now:            opts.Now,
		newTicketID:    opts.NewTicketID,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultAnalysisTimeout
	}
	if c.lexicon == nil {
		c.lexicon = analysis.Russian
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.newTicketID == nil {
		c.newTicketID = func() string { return strings.ToUpper(uuid.NewString()[:8]) }
	}
	return c
}

// HandleEvent processes one inbound event to completion. Failures are
// reported to the user as plain text and never propagate.
func (c *Controller) HandleEvent(ctx context.Context, ev Event) {
	c.logger.Info("Handling event",
		"kind", ev.Kind.String(),
		"chat_id", ev.ChatID,
		"user_id", ev.UserID,
		"pending", string(c.sessions.Pending(sessionKey(ev))))

	switch ev.Kind {
	case EventCommand:
		c.handleCommand(ctx, ev)
	case EventButton:
		c.handleButton(ctx, ev)
	case EventPhoto:
		c.handlePhoto(ctx, ev)
	case EventText:
		c.handleText(ctx, ev)
	default:
		c.reply(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
	}
}

func (c *Controller) handleCommand(ctx context.Context, ev Event) {
	switch ev.Command {
	case "start":
		c.handleStart(ctx, ev)
	case "help":
		c.reply(ctx, ev.ChatID, textHelp, startKeyboard())
	default:
		c.reply(ctx, ev.ChatID, textUnknownCommand, nil)
	}
}

func (c *Controller) handleButton(ctx context.Context, ev Event) {
	data := ev.Data
	switch {
	case data == cbStartFlow:
		c.sessions.Clear(sessionKey(ev))
		c.edit(ctx, ev, textAskGender, genderKeyboard())
	case strings.HasPrefix(data, cbGenderPrefix):
		c.handleGender(ctx, ev, strings.TrimPrefix(data, cbGenderPrefix))
	case data == cbAnalyzePhoto:
		c.handleAnalyzeRequest(ctx, ev)
	case data == cbCreateOutfit:
		c.handleCreateOutfit(ctx, ev)
	case data == cbSubscribe:
		c.sessions.Clear(sessionKey(ev))
		c.edit(ctx, ev, textSubscriptions, subscriptionKeyboard())
	case strings.HasPrefix(data, cbTierPrefix):
		c.sessions.Clear(sessionKey(ev))
		c.edit(ctx, ev, textPaymentUnavailable, subscriptionKeyboard())
	case data == cbGrantDemo:
		c.handleGrantDemo(ctx, ev)
	case data == cbSupport:
		c.handleSupportRequest(ctx, ev)
	case strings.HasPrefix(data, cbStylePrefix):
		c.handleStyle(ctx, ev, strings.TrimPrefix(data, cbStylePrefix))
	default:
		c.logger.Warn("Unknown callback data", "chat_id", ev.ChatID, "data", data)
		c.reply(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
	}
}

func (c *Controller) handlePhoto(ctx context.Context, ev Event) {
	switch c.sessions.Pending(sessionKey(ev)) {
	case models.IntentAwaitingPhoto:
		c.handlePhotoAnalysis(ctx, ev)
	case models.IntentAwaitingSupportMessage:
		c.reply(ctx, ev.ChatID, textSendSupportText, nil)
	default:
		c.reply(ctx, ev.ChatID, textPressAnalyze, mainMenuKeyboard())
	}
}

func (c *Controller) handleText(ctx context.Context, ev Event) {
	switch c.sessions.Pending(sessionKey(ev)) {
	case models.IntentAwaitingSupportMessage:
		c.handleSupportMessage(ctx, ev)
	case models.IntentAwaitingPhoto:
		c.reply(ctx, ev.ChatID, textSendPhotoFirst, nil)
	default:
		c.reply(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
	}
}

// sessionKey scopes pending intents to the sender, so members of one group
// chat do not resolve each other's requests.
func sessionKey(ev Event) session.Key {
	return session.Key{ChatID: ev.ChatID, UserID: ev.UserID}
}

func (c *Controller) reply(ctx context.Context, chatID int64, text string, kb Keyboard) {
	if err := c.messenger.Send(ctx, Reply{ChatID: chatID, Text: text, Keyboard: kb}); err != nil {
		c.logger.Error("Failed to send message", "chat_id", chatID, "error", err)
	}
}

// edit replaces the message the button was pressed on, or sends a new one
// when the event carries no message.
func (c *Controller) edit(ctx context.Context, ev Event, text string, kb Keyboard) {
	if err := c.messenger.Send(ctx, Reply{ChatID: ev.ChatID, Text: text, Keyboard: kb, EditMessageID: ev.MessageID}); err != nil {
		c.logger.Error("Failed to edit message", "chat_id", ev.ChatID, "message_id", ev.MessageID, "error", err)
	}
}

// generate calls the analysis service under the configured timeout.
func (c *Controller) generate(ctx context.Context, prompt string, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.analyzer.Generate(ctx, prompt, image)
}
