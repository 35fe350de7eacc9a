package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/pwnholic/mobilitywatch/internal"
	"github.com/pwnholic/mobilitywatch/internal/config"
)

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	startTime := time.Now()

	customFlag, err := parseFlag(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		internal.Error("%s", err.Error())
		return 2
	}

	cfg, err := config.LoadConfigWithEnvOverrides(customFlag.ConfigPath)
	if err != nil {
		internal.Error("%s", err.Error())
		return 2
	}

	levelName := cfg.Log.Level
	if customFlag.LogLevel != "" {
		levelName = customFlag.LogLevel
	}
	level, err := internal.ParseLevel(levelName)
	if err != nil {
		internal.Error("%s", err.Error())
		return 2
	}
	log := internal.GetDefaultLogger()
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	process := newExportProcess(cfg, customFlag, log.With("exports"))
	defer process.close()

	if err := process.run(ctx, customFlag); err != nil {
		internal.Error("Something went wrong: %s", err.Error())
		return 1
	}
	internal.Success("Program completed in %v", time.Since(startTime))
	return 0
}
