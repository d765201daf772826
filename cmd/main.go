package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/spotsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	env, err := shared.LoadEnvironment(".env")
	if err != nil {
		logger.Fatalf("environment error: %v", err)
	}

	w, closer, err := shared.NewLogWriter(env.LogFile)
	if err != nil {
		logger.Fatalf("failed to open log file: %v", err)
	}
	logger = shared.NewLogger(w)

	runner := NewRunner(RunnerOpts{Env: env, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = runner.command().Run(ctx, os.Args)
	stop()
	closer.Close()

	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
