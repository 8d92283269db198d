package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"luna-bot/pkg/logger"
)

const (
	maxMessageLength = 4096
	maxPhotoBytes    = 20 << 20
)

// EventHandler consumes one inbound event.
type EventHandler func(ctx context.Context, ev Event)

// TelegramBot is the Telegram transport. It long-polls for updates, turns
// each update into an Event handled on its own goroutine, and implements
// Messenger for outbound replies.
type TelegramBot struct {
	bot        *tgbotapi.BotAPI
	logger     *logger.Logger
	httpClient *http.Client
	inFlight   sync.WaitGroup
}

func NewTelegramBot(token string, debug bool, logger *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	bot.Debug = debug

	logger = logger.With("component", "telegram", "bot", bot.Self.UserName)
	logger.Info("Authorized on Telegram")

	return &TelegramBot{
		bot:        bot,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// handlers to finish.
func (t *TelegramBot) Run(ctx context.Context, handle EventHandler) error {
	t.logger.Info("Removing any existing webhook")
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.bot.GetUpdatesChan(updateConfig)

	t.logger.Info("Started receiving Telegram updates")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.inFlight.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				t.inFlight.Wait()
				return nil
			}
			t.inFlight.Add(1)
			go t.dispatch(ctx, update, handle)
		}
	}
}

func (t *TelegramBot) dispatch(ctx context.Context, update tgbotapi.Update, handle EventHandler) {
	defer t.inFlight.Done()
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Recovered from panic while processing update", "update_id", update.UpdateID, "error", r)
		}
	}()

	if update.CallbackQuery != nil {
		// Acknowledge the callback so the client stops its spinner
		if _, err := t.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			t.logger.Warn("Failed to answer callback", "error", err)
		}
	}

	ev, ok := toEvent(update)
	if !ok {
		t.logger.Debug("Ignoring update", "update_id", update.UpdateID)
		return
	}

	t.logger.Info("Received update", "update_id", update.UpdateID, "kind", ev.Kind.String(), "chat_id", ev.ChatID)
	handle(ctx, ev)
}

func toEvent(update tgbotapi.Update) (Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		if cq.From == nil {
			return Event{}, false
		}
		ev := Event{Kind: EventButton, UserID: cq.From.ID, ChatID: cq.From.ID, Data: cq.Data}
		if cq.Message != nil && cq.Message.Chat != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Event{}, false
	}
	ev := Event{ChatID: msg.Chat.ID, UserID: msg.From.ID, MessageID: msg.MessageID}
	switch {
	case msg.IsCommand():
		ev.Kind = EventCommand
		ev.Command = msg.Command()
	case len(msg.Photo) > 0:
		ev.Kind = EventPhoto
		// sizes are ordered smallest first
		ev.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
	default:
		// anything that is not a photo counts as text, stickers included
		ev.Kind = EventText
		ev.Text = msg.Text
		if ev.Text == "" {
			ev.Text = msg.Caption
		}
	}
	return ev, true
}

// Send delivers a reply, splitting text longer than Telegram's limit. The
// keyboard is attached to the last chunk.
func (t *TelegramBot) Send(ctx context.Context, reply Reply) error {
	chunks := splitText(reply.Text, maxMessageLength)
	for i, chunk := range chunks {
		var kb Keyboard
		if i == len(chunks)-1 {
			kb = reply.Keyboard
		}
		if i == 0 && reply.EditMessageID != 0 {
			err := t.editMessage(reply.ChatID, reply.EditMessageID, chunk, kb)
			if err == nil {
				continue
			}
			t.logger.Warn("Failed to edit message, sending new one", "chat_id", reply.ChatID, "error", err)
		}
		msg := tgbotapi.NewMessage(reply.ChatID, chunk)
		if len(kb) > 0 {
			msg.ReplyMarkup = toInlineMarkup(kb)
		}
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send message to %d: %w", reply.ChatID, err)
		}
	}
	return nil
}

func (t *TelegramBot) editMessage(chatID int64, messageID int, text string, kb Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if len(kb) > 0 {
		markup := toInlineMarkup(kb)
		edit.ReplyMarkup = &markup
	}
	_, err := t.bot.Send(edit)
	return err
}

func (t *TelegramBot) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file %s: status %d", fileID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxPhotoBytes)
	}
	return data, nil
}

func toInlineMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// splitText cuts text into chunks of at most limit runes, preferring line breaks.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
