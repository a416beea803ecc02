package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"CoinScout/internal/collector"
	"CoinScout/internal/config"
	"CoinScout/internal/httpclient"
	"CoinScout/internal/logging"
	"CoinScout/internal/metrics"
	"CoinScout/internal/notifier"
	"CoinScout/internal/recorder"
	"CoinScout/internal/scheduler"
	"CoinScout/internal/sentiment"
	"CoinScout/internal/server"
	"CoinScout/internal/state"
)

const defaultBinanceURL = "https://api.binance.com"

func main() {
	boot := logging.New("info", "console")

	if err := godotenv.Load(); err != nil {
		boot.Debug().Err(err).Msg(".env not loaded")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Int("assets", len(cfg.Universe)).Str("provider", cfg.DataSource.Provider).Msg("CoinScout starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clockwork.NewRealClock()
	m := metrics.New(nil)

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("market data provider ready")

	var scorer collector.SentimentScorer
	if cfg.News.Enabled {
		newsClient := httpclient.New(httpclient.Options{
			Timeout:        cfg.News.Timeout,
			RequestsPerSec: 2,
			MaxRetries:     1,
			Proxy:          cfg.Proxy,
			UserAgent:      "Mozilla/5.0 (compatible; CoinScout)",
		})
		scorer = sentiment.NewScorer(sentiment.NewCryptoCraftSource(cfg.News.BaseURL, newsClient), log)
	}

	col := collector.NewCollector(fetcher, scorer, clk, collector.Options{
		Lookback:    cfg.Analysis.Lookback,
		Granularity: cfg.Analysis.Granularity,
	}, log)

	var telegram *notifier.TelegramNotifier
	if cfg.Notifier.TelegramBotToken != "" && cfg.Notifier.TelegramChatID != 0 {
		telegram, err = notifier.NewTelegramNotifier(cfg.Notifier.TelegramBotToken, cfg.Notifier.TelegramChatID,
			"", proxiedClient(cfg.Proxy, 60*time.Second))
		if err != nil {
			log.Fatal().Err(err).Msg("init telegram")
		}
		log.Info().Str("bot", telegram.Bot.Self.UserName).Msg("telegram authorized")
	}

	var sink notifier.Notifier
	switch cfg.Notifier.Kind {
	case "telegram":
		sink = telegram
	default:
		pushClient := httpclient.New(httpclient.Options{Timeout: 15 * time.Second, RequestsPerSec: 5, Proxy: cfg.Proxy})
		sink = notifier.NewPushbulletNotifier(cfg.Notifier.BaseURL, cfg.Notifier.PushbulletToken, pushClient)
	}
	sink = notifier.WithRetry(sink, cfg.Notifier.MaxRetries, time.Second, log)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	schedule, err := scheduler.NewSchedule(cfg.Schedule.Interval, cfg.Schedule.Cron)
	if err != nil {
		log.Fatal().Err(err).Msg("schedule")
	}
	cycle := scheduler.NewCycle(cfg.Universe, col, sink, rec, m, clk, scheduler.CycleOptions{
		TopK:    cfg.Analysis.TopK,
		Markup:  cfg.Analysis.Markup,
		Workers: cfg.Analysis.Workers,
		Title:   cfg.Notifier.Title,
	}, log)
	sched := scheduler.New(cycle, state.NewHolder(clk), clk, schedule, m, log)

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(ctx, server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}, sched, rec, nil, log)
		srv.Start()
	}

	if telegram != nil && cfg.Notifier.Commands {
		go telegram.StartPolling(ctx, sched.HandleCommand, log)
		log.Info().Msg("telegram command polling started")
	}

	if cfg.Schedule.Autostart {
		sched.Start(ctx)
	}

	log.Info().Msg("CoinScout is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	cancel()
	sched.Wait()
	if srv != nil {
		if err := srv.Stop(context.Background()); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}
	log.Info().Msg("CoinScout stopped")
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	client := httpclient.New(httpclient.Options{
		Timeout:        cfg.DataSource.Timeout,
		RequestsPerSec: cfg.DataSource.RequestsPerSec,
		MaxRetries:     cfg.DataSource.MaxRetries,
		Proxy:          cfg.Proxy,
	})
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Quote, client)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		base := cfg.DataSource.BaseURL
		if base == "" {
			base = defaultBinanceURL
		}
		return collector.NewBinanceFetcher(base, cfg.Quote, client)
	}
}

func proxiedClient(proxy string, timeout time.Duration) *http.Client {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxy != "" {
		if u, err := url.Parse(proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
