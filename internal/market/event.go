package market

import "strings"

// EventKind classifies an inbound event.
type EventKind int

const (
	KindOther EventKind = iota
	KindText
	KindCommand
	KindPhoto
	KindWebApp
)

func (k EventKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	case KindPhoto:
		return "photo"
	case KindWebApp:
		return "web_app"
	default:
		return "other"
	}
}

// Event is one inbound update reduced to what the conversation engine needs.
type Event struct {
	UserID int64
	ChatID int64
	Kind   EventKind

	// Text is the raw message text or photo caption.
	Text string
	// Command is the lower-cased verb without slash or bot mention; Args is the rest.
	Command string
	Args    string
	PhotoID string
	// Data carries the mini-app payload.
	Data string
}

// NewTextEvent builds a text or command event from message text.
func NewTextEvent(userID, chatID int64, text string) Event {
	ev := Event{UserID: userID, ChatID: chatID, Kind: KindText, Text: text}
	if cmd, args, ok := ParseCommand(text); ok {
		ev.Kind = KindCommand
		ev.Command = cmd
		ev.Args = args
	}
	return ev
}

// NewPhotoEvent builds a photo event; caption is kept as Text.
func NewPhotoEvent(userID, chatID int64, fileID, caption string) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindPhoto, PhotoID: fileID, Text: caption}
}

// NewWebAppEvent builds a mini-app data event.
func NewWebAppEvent(userID, chatID int64, data string) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindWebApp, Data: data}
}

// NewOtherEvent builds an event for unsupported message kinds (documents, stickers).
func NewOtherEvent(userID, chatID int64) Event {
	return Event{UserID: userID, ChatID: chatID, Kind: KindOther}
}

// ParseCommand splits "/verb@bot args" into verb and args.
func ParseCommand(text string) (string, string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 || text[0] != '/' {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	head = strings.ToLower(strings.TrimSpace(head))
	if head == "" {
		return "", "", false
	}
	return head, strings.TrimSpace(args), true
}
