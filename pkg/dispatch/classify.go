package dispatch

import (
	"fmt"
	"strings"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Classify maps an update to an event. The first rule that applies wins:
// callback data, shared contact, shared location, slash command, plain text.
// Updates carrying none of these yield domain.ErrUnclassifiableEvent.
func Classify(u domain.Update) (domain.Event, error) {
	switch {
	case u.CallbackData != "":
		data, err := SanitizeInput(u.CallbackData)
		if err != nil {
			return domain.Event{}, err
		}
		return domain.Selection(u.Party, data), nil
	case u.Contact != nil:
		return domain.SharedContact(u.Party, *u.Contact), nil
	case u.Location != nil:
		return domain.SharedLocation(u.Party, *u.Location), nil
	}

	text, err := SanitizeInput(u.Text)
	if err != nil {
		return domain.Event{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Event{}, fmt.Errorf("%w: empty update from %q", domain.ErrUnclassifiableEvent, u.Party)
	}

	if strings.HasPrefix(text, "/") {
		parts := strings.Fields(text[1:])
		if len(parts) == 0 {
			return domain.Event{}, fmt.Errorf("%w: bare slash from %q", domain.ErrUnclassifiableEvent, u.Party)
		}
		name := parts[0]
		// Group chats address commands as /start@SomeBot.
		if i := strings.IndexByte(name, '@'); i >= 0 {
			name = name[:i]
		}
		return domain.Command(u.Party, strings.ToLower(name), parts[1:]...), nil
	}
	return domain.Text(u.Party, text), nil
}
