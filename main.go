package main

import (
	_ "ct-host/cmd"
	"ct-host/cmd/root"
	"ct-host/internal/config"
	"ct-host/internal/logger"
	"os"
)

func main() {
	// The tool tag shows up in every log line, so operators can tell an
	// install invocation apart from a run invocation in shared logs.
	tag := "ct-host"
	if len(os.Args) > 1 {
		tag = "ct-host " + os.Args[1]
	}
	logger.InitLogger(&config.Config.Log, tag)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
