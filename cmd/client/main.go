// Command client is a headless bot: it joins a server, walks a square and logs
// the other players it sees.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elyria/elyria/internal/client"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/game"
	"github.com/elyria/elyria/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "server address, overrides the config")
	leg := flag.Duration("leg", 2*time.Second, "time spent walking each side of the square")
	flag.Parse()

	cfg := client.DefaultClientConfig()
	if *configPath != "" {
		var err error
		if cfg, err = client.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	c, cleanup, err := injector.InitializeClient(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating client:", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx, client.NewReportSystem(5, log.Provide())); err != nil {
		fmt.Fprintln(os.Stderr, "Error connecting:", err)
		cleanup()
		os.Exit(1)
	}
	c.SetInput(square(time.Now(), *leg))

	if err := c.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Client stopped:", err)
		cleanup()
		os.Exit(1)
	}
}

// square walks right, up, left and down for leg each, forever.
func square(start time.Time, leg time.Duration) func() game.Input {
	if leg <= 0 {
		leg = time.Second
	}
	return func() game.Input {
		switch (time.Since(start) / leg) % 4 {
		case 0:
			return game.Input{Right: true}
		case 1:
			return game.Input{Up: true}
		case 2:
			return game.Input{Left: true}
		default:
			return game.Input{Down: true}
		}
	}
}
