package main

import (
	"chatsync/internal/channel"
	"chatsync/internal/config"
	"chatsync/internal/devserver"
	"chatsync/internal/lib/logger"
	"chatsync/internal/lib/sl"
	"chatsync/internal/lifecycle"
	"chatsync/internal/notify"
	"chatsync/internal/presence"
	"chatsync/internal/service/conversations"
	"chatsync/internal/store"
	"chatsync/internal/transport"
	"context"
	"flag"
	"log/slog"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env)

	lg.Info("starting chatsync", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	if conf.DevServer.Enabled {
		srv := devserver.New(conf, lg)
		go func() {
			if err := srv.Run(); err != nil {
				lg.Error("dev server stopped", sl.Err(err))
			}
		}()
		// Give the listener a moment before dialing it.
		time.Sleep(200 * time.Millisecond)
	}

	api := conversations.NewService(conf, lg)
	lg.With(
		slog.String("base_url", conf.API.BaseURL),
		sl.Secret("token", conf.API.Token),
	).Info("conversations client initialized")

	ctx := context.Background()
	heartbeat := time.Duration(conf.Socket.HeartbeatSeconds) * time.Second
	sock, err := transport.Dial(ctx, conf.Socket.URL, heartbeat, lg)
	if err != nil {
		lg.Error("socket dial", sl.Err(err))
		return
	}
	defer sock.Close()

	messages := store.New()
	online := presence.NewTracker()
	tracker := lifecycle.NewTracker()
	lifecycleService := lifecycle.NewService(tracker, api, lg)

	manager := channel.NewManager(sock, lg)

	throttleWindow := time.Duration(conf.Notify.ThrottleSeconds) * time.Second
	throttle := notify.NewThrottle(terminalBell{}, throttleWindow, lg)

	board := newDashboard(conf, lg, api, manager, messages, online, lifecycleService, throttle)
	manager.SetMessageListener(board)
	manager.SetPresenceListener(online)
	manager.SetJoinListener(board)
	manager.SetEffectListener(board)

	// *** blocking triage loop ***
	if err := board.run(ctx); err != nil {
		lg.Error("dashboard stopped", sl.Err(err))
		return
	}
	lg.Info("service stopped")
}
