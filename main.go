// Package main provides the entrypoint for gh-issue-slack-relay.
package main

import (
	"os"

	"github.com/isometry/gh-issue-slack-relay/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
