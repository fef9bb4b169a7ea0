// main is the entry point for the pulse CLI.
package main

import (
	"github.com/deliverypulse/pulse/cmd"
	"github.com/deliverypulse/pulse/internal/contract"
	"github.com/deliverypulse/pulse/internal/iocache"
)

func main() {
	defer iocache.CloseHistory()

	if err := cmd.Execute(); err != nil {
		iocache.CloseHistory()
		contract.LogFatal("Error starting CLI", err)
	}
}
