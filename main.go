package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/patcher/cmd/patcher"
)

func main() {
	logger := zap.Must(zap.NewProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	executionErr := patcher.Execute(ctx)
	stop()

	exitCode := patcher.ExitCode(executionErr)
	switch {
	case errors.Is(executionErr, patcher.ErrStagesFailed):
		logger.Warn("patch finished with failed stages", zap.Error(executionErr))
	case executionErr != nil:
		logger.Error("command execution failed", zap.Error(executionErr))
	}
	// stderr cannot be synced on every platform
	_ = logger.Sync()
	os.Exit(exitCode)
}
