package main

import (
	"os"

	"github.com/wonny/fundmetrics/cmd/fund/commands"
)

// main is the entry point for the fundmetrics CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/fund [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
