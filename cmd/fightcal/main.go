package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"fightcal/internal/config"
	"fightcal/internal/ics"
	"fightcal/internal/ingest"
	appLog "fightcal/internal/log"
	"fightcal/internal/metrics"
	"fightcal/internal/model"
	"fightcal/internal/notify"
	"fightcal/internal/scheduler"
	"fightcal/internal/storage"
	"fightcal/internal/storage/postgres"
)

type flagConfig struct {
	configPath string
	once       bool

	addChannel    string
	addWebhook    string
	removeChannel string
	removeWebhook string
	listDests     bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(conf.LogLevel)

	appLog.Info("fightcal starting",
		"feed_url", conf.FeedURL,
		"timezone", conf.Timezone,
		"ingest_cron", conf.IngestCron,
		"daily_hour", conf.DailyHour,
		"weekly_weekday", conf.WeeklyWeekday,
		"once", flags.once,
	)

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if conf.DatabaseURL == "" {
		appLog.Error("database_url is required", fmt.Errorf("empty database_url"))
		os.Exit(1)
	}

	if err := postgres.Migrate(conf.DatabaseURL); err != nil {
		appLog.Error("database migration failed", err)
		os.Exit(1)
	}

	pool, err := postgres.Connect(ctx, conf.DatabaseURL)
	if err != nil {
		appLog.Error("database connection failed", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, loc)

	// One-shot administrative registry operations exit immediately.
	if done := runAdminOps(ctx, flags, store); done {
		return
	}

	fetcher := ics.NewFetcher(conf.FeedURL, conf.HTTPTimeout())
	orchestrator := ingest.New(fetcher, store.Events(), loc, nil)

	if flags.once {
		report := orchestrator.Run(ctx)
		if report.Failed() {
			os.Exit(1)
		}
		return
	}

	channelSender := notify.NewChannelSender(conf.BotAPIBase, conf.BotToken, conf.HTTPTimeout())
	notifier := notify.NewNotifier(
		notify.NewWebhookSender(conf.HTTPTimeout()),
		channelSender,
	)

	sched := scheduler.New(scheduler.Config{
		IngestCron:    conf.IngestCron,
		DailyHour:     conf.DailyHour,
		WeeklyWeekday: conf.Weekday(),
	}, orchestrator, store, notifier, loc, nil)

	if err := sched.Start(ctx); err != nil {
		appLog.Error("failed to start scheduler", err)
		os.Exit(1)
	}
	defer sched.Stop()

	if conf.MetricsListen != "" {
		go func() {
			if err := metrics.Serve(conf.MetricsListen); err != nil {
				appLog.Error("metrics exporter stopped", err, "listen", conf.MetricsListen)
			}
		}()
	}

	// Jobs stay idle until the chat session is confirmed usable.
	go confirmReady(ctx, channelSender, sched)

	<-ctx.Done()
	time.Sleep(100 * time.Millisecond)
	appLog.Info("fightcal exiting")
}

// confirmReady probes the chat platform session and arms the scheduler once
// it responds, retrying until shutdown.
func confirmReady(ctx context.Context, sender *notify.ChannelSender, sched *scheduler.Scheduler) {
	for {
		err := sender.Ready(ctx)
		if err == nil {
			sched.MarkReady()
			return
		}
		appLog.Warn("chat session not ready, retrying", "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(30 * time.Second):
		}
	}
}

// runAdminOps executes one-shot destination registry mutations. Returns true
// when an operation ran and the process should exit.
func runAdminOps(ctx context.Context, flags flagConfig, store storage.Interface) bool {
	registry := store.Destinations()

	type op struct {
		target string
		kind   model.DestinationKind
		remove bool
	}
	ops := []op{
		{flags.addChannel, model.DestinationChannel, false},
		{flags.addWebhook, model.DestinationWebhook, false},
		{flags.removeChannel, model.DestinationChannel, true},
		{flags.removeWebhook, model.DestinationWebhook, true},
	}

	ran := false
	for _, o := range ops {
		if o.target == "" {
			continue
		}
		ran = true
		dest := model.Destination{Kind: o.kind, Target: o.target}

		var err error
		var action string
		if o.remove {
			action = "removed"
			err = registry.Remove(ctx, dest)
		} else {
			action = "added"
			err = registry.Add(ctx, dest)
		}
		if err != nil {
			appLog.Error("registry mutation failed", err, "kind", dest.Kind, "target", dest.Target)
			os.Exit(1)
		}
		appLog.Info("destination "+action, "kind", dest.Kind, "target", dest.Target)
	}

	if flags.listDests {
		ran = true
		destinations, err := registry.List(ctx)
		if err != nil {
			appLog.Error("list destinations failed", err)
			os.Exit(1)
		}
		for _, d := range destinations {
			fmt.Printf("%s\t%s\n", d.Kind, d.Target)
		}
	}

	return ran
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/fightcal/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.once, "once", false, "Run one ingestion cycle and exit")
	flag.StringVar(&cfg.addChannel, "add-channel", "", "Register a channel ID as a notification destination and exit")
	flag.StringVar(&cfg.addWebhook, "add-webhook", "", "Register a webhook URL as a notification destination and exit")
	flag.StringVar(&cfg.removeChannel, "remove-channel", "", "Unregister a channel destination and exit")
	flag.StringVar(&cfg.removeWebhook, "remove-webhook", "", "Unregister a webhook destination and exit")
	flag.BoolVar(&cfg.listDests, "list-destinations", false, "Print registered destinations and exit")

	flag.Parse()

	return cfg
}
