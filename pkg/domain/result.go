package domain

// Result is what the engine produced for one event.
type Result struct {
	// Handled is false when the event matched nothing and the session was left untouched.
	Handled bool

	// Ended is true when the stack emptied while handling the event.
	Ended bool

	Renders []Render
	Exports []Export
}
