package main

import (
	"os"

	"bot_admin/internal/cli"
	"bot_admin/internal/logger"
)

func main() {
	defer logger.Close()
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
