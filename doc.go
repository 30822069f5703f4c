/*
Package switchboard is a per-session conversation engine for chat bots that
collect structured information through menus and typed answers.

A conversation is a stack of frames. Each frame is a small state machine
declared with package frame; entering a child frame pushes it, and a frame
that finishes hands a terminal signal back to its parent, which either resumes
at a declared state, propagates another signal upward, or ends the
conversation. The shipped flow (package identity) asks for a reason, offers
an action menu and then collects fields, branching on choices where the
content says so.

# Usage

Compose a Bot with a transport and feed it updates:

	bot, err := switchboard.New(
		switchboard.WithTransport(transport),
		switchboard.WithStore(redis.New("localhost:6379", "", 0)),
		switchboard.WithExporter(export.Log{Logger: logger}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close(ctx)

	// Updates of one party are handled in arrival order; parties run concurrently.
	_ = bot.Route(ctx, domain.Update{Party: "42", Text: "/start"})

Handle processes a single update synchronously, which is convenient for tests
and single-user transports such as the console.

# Packages

  - frame: frame definitions, matchers and outcomes.
  - identity: the reason, action and capture frames.
  - fields: field registry, menus, prompts and validation.
  - content: YAML or TOML texts, buttons and fields.
  - session: load, apply and save with per-party locking.
  - dispatch: update classification, delivery and per-party routing.
  - adapters: memory, file and redis stores; telegram, console and http transports; exporters.
*/
package switchboard
