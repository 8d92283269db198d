package bot

import (
	"context"
)

type EventKind int

const (
	EventCommand EventKind = iota
	EventButton
	EventPhoto
	EventText
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventButton:
		return "button"
	case EventPhoto:
		return "photo"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one inbound update, already stripped of transport details.
type Event struct {
	Kind   EventKind
	ChatID int64
	UserID int64

	// Command is set for EventCommand, without the leading slash.
	Command string
	// Data is the callback payload of an EventButton.
	Data string
	// MessageID is the message the pressed button belongs to.
	MessageID int
	Text      string
	// PhotoFileID identifies the largest size of an EventPhoto.
	PhotoFileID string
}

type Button struct {
	Label string
	Data  string
}

type Keyboard [][]Button

// Reply is an outbound message. A non-zero EditMessageID replaces the text
// of that message instead of sending a new one.
type Reply struct {
	ChatID        int64
	Text          string
	Keyboard      Keyboard
	EditMessageID int
}

// Messenger delivers replies and fetches attachments.
type Messenger interface {
	Send(ctx context.Context, reply Reply) error
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, error)
}
