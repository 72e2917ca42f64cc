package main

import "disk-burnin/cmd/disk-burnin/commands"

// Build-time variables (set via -ldflags)
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	commands.Execute(version, commit)
}
