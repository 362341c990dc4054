package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/busylight-go/busylight/internal/cli"

	_ "github.com/busylight-go/busylight/pkg/light/blinkstick"
	_ "github.com/busylight-go/busylight/pkg/light/embrava"
	_ "github.com/busylight-go/busylight/pkg/light/kuando"
	_ "github.com/busylight-go/busylight/pkg/light/luxafor"
	_ "github.com/busylight-go/busylight/pkg/light/thingm"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	if err := cli.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "busylight: %v\n", err)
		os.Exit(1)
	}
}
