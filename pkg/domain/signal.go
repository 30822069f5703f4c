package domain

// Signal is the terminal result a frame hands back to its parent when it pops.
type Signal string

const (
	// SignalEnd finishes the current frame normally.
	SignalEnd Signal = "END"
	// SignalStopping asks every enclosing frame to finish as well.
	SignalStopping Signal = "STOPPING"
	// SignalPop leaves the frame without moving the parent. Every parent accepts it.
	SignalPop Signal = "POP"
)
