package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/mezonai/powchain/cmd"
	"github.com/mezonai/powchain/logx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer func() {
		stop()
		if r := recover(); r != nil {
			_ = logx.Errorf("POWCHAIN NODE CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	// A second signal after the first kills the process immediately.
	go func() {
		<-ctx.Done()
		stop()
	}()

	cmd.Execute(ctx)
}
