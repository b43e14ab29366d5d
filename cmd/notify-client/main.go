package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danglnh07/notify-relay/client"
	"github.com/danglnh07/notify-relay/util"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Load config, flags take precedence over the environment
	config := util.LoadClientConfig(".env")

	flag.StringVar(&config.WebsocketURL, "url", config.WebsocketURL, "websocket URL of the relay")
	flag.DurationVar(&config.ReconnectInterval, "reconnect", config.ReconnectInterval, "wait before reconnecting")
	flag.StringVar(&config.ReconnectBackoff, "backoff", config.ReconnectBackoff, "reconnect policy: fixed or exponential")
	flag.BoolVar(&config.Acknowledge, "ack", config.Acknowledge, "acknowledge displayed notifications")
	flag.StringVar(&config.Permission, "permission", config.Permission, "initial permission: prompt, granted or denied")
	flag.BoolVar(&config.Unsupported, "unsupported", config.Unsupported, "use alerts instead of notifications")
	say := flag.String("say", "", "text message to send once connected")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platform := client.NewTerminalPlatform(os.Stdin, os.Stdout, client.ParsePermission(config.Permission), !config.Unsupported)
	policy := client.NewReconnectPolicy(config.ReconnectBackoff, config.ReconnectInterval, config.ReconnectMaxInterval)
	manager := client.NewManager(config.WebsocketURL, policy, logger)
	presenter := client.NewPresenter(platform, manager, client.PresenterOptions{
		Acknowledge: config.Acknowledge,
		OnClick: func() {
			logger.Info("Notification opened", "at", time.Now().Format(time.TimeOnly))
		},
	}, logger)

	manager.OnMessage(presenter.HandleMessage)

	sent := false
	manager.OnStatusChange(func(status client.Status) {
		logger.Info("Connection status changed", "status", status)

		if status == client.StatusConnected && *say != "" && !sent {
			if err := manager.SendText(*say); err != nil {
				logger.Warn("Failed to send message", "error", err)
				return
			}
			sent = true
		}
	})

	// Typed lines go to the relay as text messages
	platform.OnInput(func(line string) {
		if err := manager.SendText(line); err != nil {
			logger.Warn("Failed to send message", "error", err)
		}
	})

	// Ask for permission while connecting, the prompt must not hold up the socket
	go func() {
		permission := presenter.Initialize(ctx)
		logger.Info("Notification permission", "permission", permission)
	}()

	if err := manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Client stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Client stopped", "notifications", presenter.Count())
}
