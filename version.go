package switchboard

// Version is set at build time with -ldflags "-X github.com/botarmy/switchboard.Version=...".
var Version = "dev"
