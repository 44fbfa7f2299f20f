/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sony-level/step-builder/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.Execute(ctx)
}
