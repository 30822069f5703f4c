package telegram

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/botarmy/switchboard/pkg/domain"
)

// ConvertUpdate maps a Telegram update to a transport-neutral one.
// It reports false for updates the conversation has no use for, such as edits or channel posts.
func ConvertUpdate(u tgbotapi.Update) (domain.Update, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.Message.Chat == nil {
			return domain.Update{}, false
		}
		return domain.Update{
			Party:        PartyID(cq.Message.Chat.ID),
			MessageID:    cq.Message.MessageID,
			CallbackID:   cq.ID,
			CallbackData: cq.Data,
		}, true
	}

	m := u.Message
	if m == nil || m.Chat == nil {
		return domain.Update{}, false
	}
	out := domain.Update{
		Party:     PartyID(m.Chat.ID),
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if c := m.Contact; c != nil {
		out.Contact = &domain.Contact{
			Phone:     c.PhoneNumber,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			UserID:    c.UserID,
		}
	}
	if l := m.Location; l != nil {
		out.Location = &domain.Location{Latitude: l.Latitude, Longitude: l.Longitude}
	}
	return out, true
}

// DecodeWebhook reads one update from a webhook request body.
func DecodeWebhook(r *http.Request) (domain.Update, bool, error) {
	var u tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		return domain.Update{}, false, fmt.Errorf("invalid telegram update: %w", err)
	}
	upd, ok := ConvertUpdate(u)
	return upd, ok, nil
}

// PartyID is the party key of a chat.
func PartyID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// ChatID parses a party key back into a chat ID.
func ChatID(partyID string) (int64, error) {
	id, err := strconv.ParseInt(partyID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("party %q is not a telegram chat: %w", partyID, err)
	}
	return id, nil
}
