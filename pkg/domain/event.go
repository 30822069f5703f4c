package domain

// EventKind is the classification of an inbound update.
type EventKind string

const (
	EventCommand   EventKind = "command"
	EventSelection EventKind = "selection"
	EventText      EventKind = "text"
	EventContact   EventKind = "contact"
	EventLocation  EventKind = "location"
)

// Contact is a shared phone contact.
type Contact struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
}

// Location is a shared geographic point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Update is a raw inbound message from a transport, before classification.
type Update struct {
	Party        string    `json:"party"`
	MessageID    int       `json:"message_id,omitempty"`
	Text         string    `json:"text,omitempty"`
	CallbackID   string    `json:"callback_id,omitempty"`
	CallbackData string    `json:"callback_data,omitempty"`
	Contact      *Contact  `json:"contact,omitempty"`
	Location     *Location `json:"location,omitempty"`
}

// Event is a classified update.
type Event struct {
	Kind  EventKind
	Party string

	// Name and Args are set for commands.
	Name string
	Args []string

	// Value holds the selection discriminator or the message text.
	Value string

	Contact  *Contact
	Location *Location
}

// Command builds a command event.
func Command(party, name string, args ...string) Event {
	return Event{Kind: EventCommand, Party: party, Name: name, Args: args}
}

// Selection builds a selection event carrying an opaque discriminator.
func Selection(party, value string) Event {
	return Event{Kind: EventSelection, Party: party, Value: value}
}

// Text builds a free-text event.
func Text(party, text string) Event {
	return Event{Kind: EventText, Party: party, Value: text}
}

// SharedContact builds a contact event.
func SharedContact(party string, c Contact) Event {
	return Event{Kind: EventContact, Party: party, Contact: &c}
}

// SharedLocation builds a location event.
func SharedLocation(party string, l Location) Event {
	return Event{Kind: EventLocation, Party: party, Location: &l}
}
