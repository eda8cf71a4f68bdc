package clerk

import (
	"encoding/json"
	"errors"
	"strings"
)

// EventType is the closed set of identity-lifecycle events this core
// reacts to. Anything else maps to EventUnhandled, which is dropped with a
// log line and is never an error.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
	EventUnhandled   EventType = "unhandled"
)

// ParseEventType maps the payload's type field onto the closed enum.
func ParseEventType(raw string) EventType {
	switch strings.TrimSpace(raw) {
	case string(EventUserCreated):
		return EventUserCreated
	case string(EventUserUpdated):
		return EventUserUpdated
	case string(EventUserDeleted):
		return EventUserDeleted
	default:
		return EventUnhandled
	}
}

// UserEvent is the normalized shape of a verified lifecycle payload.
// Every field except ClerkID defaults to the empty string when absent.
type UserEvent struct {
	Type      EventType
	RawType   string
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	PhotoURL  string
}

// ParseUserEvent decodes a verified webhook payload. Callers must have
// checked the signature first; a parse failure here is a format bug in an
// authenticated delivery, not an attack.
func ParseUserEvent(payload []byte) (*UserEvent, error) {
	var raw struct {
		Type string `json:"type"`
		Data struct {
			ID             string `json:"id"`
			EmailAddresses []struct {
				EmailAddress string `json:"email_address"`
			} `json:"email_addresses"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			ImageURL  string `json:"image_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	event := &UserEvent{
		Type:      ParseEventType(raw.Type),
		RawType:   strings.TrimSpace(raw.Type),
		ClerkID:   strings.TrimSpace(raw.Data.ID),
		FirstName: raw.Data.FirstName,
		LastName:  raw.Data.LastName,
		PhotoURL:  raw.Data.ImageURL,
	}
	if len(raw.Data.EmailAddresses) > 0 {
		event.Email = raw.Data.EmailAddresses[0].EmailAddress
	}

	if event.Type != EventUnhandled && event.ClerkID == "" {
		return nil, errors.New("lifecycle event payload missing user id")
	}
	return event, nil
}
