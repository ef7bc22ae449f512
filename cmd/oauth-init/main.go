// Command oauth-init runs the Loyverse authorization-code handshake once and
// stores the resulting token for the report commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"possales/internal/auth"
	"possales/internal/cli"
	applog "possales/internal/log"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file to load")
	timeout := flag.Duration("timeout", auth.DefaultCallbackTimeout, "how long to wait for the browser callback")
	flag.Parse()

	cli.LoadEnvFile(*envFile)
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentAuth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow, err := auth.NewFlow(cfg.AuthConfig(), logger)
	if err != nil {
		logger.Error("Invalid OAuth configuration", applog.FieldError, err)
		os.Exit(1)
	}
	flow.SetTimeout(*timeout)

	_, err = flow.Run(ctx, func(authURL string) {
		fmt.Printf("Open this URL to authorize:\n%s\n", authURL)
	})
	if err != nil {
		logger.Error("Authorization failed", applog.FieldError, err)
		os.Exit(1)
	}
	fmt.Println("Token saved to", cfg.TokenFile)
}
