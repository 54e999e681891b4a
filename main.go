// Package main is the entry point for sonora.
package main

import (
	"github.com/samber/lo"
	"github.com/sonora-player/sonora/cmd"
	"github.com/sonora-player/sonora/config"
	"github.com/sonora-player/sonora/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
