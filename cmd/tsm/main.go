package main

import (
	"github.com/Dicklesworthstone/tsm/internal/cli"
)

// Set by the release build:
//
//	go build -ldflags "-X main.version=0.4.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%Y-%m-%d)" ./cmd/tsm
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
