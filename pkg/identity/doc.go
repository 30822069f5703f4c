/*
Package identity assembles the three-level identity conversation.

	reason   (top)     GENERAL -> action, EMERGENCY, Exit
	action   (middle)  START_CAPTURE -> capture, SHOW, Go Back
	capture  (inner)   field menu, answers, Submit, Done

Button presses edit the message they came from; answers to typed prompts and
the /stop command get a new message. Every frame accepts /stop, which unwinds
the whole stack through the resume maps.
*/
package identity
