package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEventCommand(t *testing.T) {
	update := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		From:      &tgbotapi.User{ID: 11},
		Chat:      &tgbotapi.Chat{ID: 22},
		Text:      "/start",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}

	ev, ok := toEvent(update)
	require.True(t, ok)
	assert.Equal(t, EventCommand, ev.Kind)
	assert.Equal(t, "start", ev.Command)
	assert.Equal(t, int64(11), ev.UserID)
	assert.Equal(t, int64(22), ev.ChatID)
}

func TestToEventPhotoPicksLargest(t *testing.T) {
	update := tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "medium", Width: 320},
			{FileID: "large", Width: 1280},
		},
	}}

	ev, ok := toEvent(update)
	require.True(t, ok)
	assert.Equal(t, EventPhoto, ev.Kind)
	assert.Equal(t, "large", ev.PhotoFileID)
}

func TestToEventTextAndOtherMessages(t *testing.T) {
	ev, ok := toEvent(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "hello",
	}})
	require.True(t, ok)
	assert.Equal(t, EventText, ev.Kind)
	assert.Equal(t, "hello", ev.Text)

	ev, ok = toEvent(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Sticker: &tgbotapi.Sticker{FileID: "s"},
	}})
	require.True(t, ok)
	assert.Equal(t, EventText, ev.Kind, "non-photo messages are text")
}

func TestToEventCallback(t *testing.T) {
	ev, ok := toEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 5},
		Data:    "gender_female",
		Message: &tgbotapi.Message{MessageID: 42, Chat: &tgbotapi.Chat{ID: 6}},
	}})
	require.True(t, ok)
	assert.Equal(t, EventButton, ev.Kind)
	assert.Equal(t, "gender_female", ev.Data)
	assert.Equal(t, int64(5), ev.UserID)
	assert.Equal(t, int64(6), ev.ChatID)
	assert.Equal(t, 42, ev.MessageID)

	ev, ok = toEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 5}, Data: "x"}})
	require.True(t, ok)
	assert.Equal(t, int64(5), ev.ChatID)
	assert.Zero(t, ev.MessageID)
}

func TestToEventIgnored(t *testing.T) {
	_, ok := toEvent(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = toEvent(tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "channel post"}})
	assert.False(t, ok)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))

	text := strings.Repeat("я", 25)
	chunks := splitText(text, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}

	lines := "aaaaaaa\nbbbbbbb\nccc"
	chunks = splitText(lines, 10)
	assert.Equal(t, []string{"aaaaaaa\n", "bbbbbbb\n", "ccc"}, chunks)
}

func TestToInlineMarkup(t *testing.T) {
	markup := toInlineMarkup(mainMenuKeyboard())
	require.Len(t, markup.InlineKeyboard, 2)
	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Анализ фото", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, cbAnalyzePhoto, *first.CallbackData)
}

