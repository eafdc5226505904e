package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kotonoha/talktrend/internal/config"
	"github.com/kotonoha/talktrend/internal/httpapi"
	"github.com/kotonoha/talktrend/pkg/talktrend"
	cfgdata "github.com/kotonoha/talktrend/pkg/talktrend/config"
	"github.com/kotonoha/talktrend/pkg/talktrend/morph"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return 1
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	engine, err := morph.NewKagomeEngine()
	if err != nil {
		log.Error().Err(err).Msg("morphological engine init failed")
		return 1
	}

	stopwords := cfgdata.LoadStopwords(cfg.StopwordsPath)
	if len(stopwords) == 0 {
		log.Warn().Str("path", cfg.StopwordsPath).Msg("no stopwords loaded")
	}

	analyzer, err := talktrend.New(talktrend.Config{
		Engine:    engine,
		Stopwords: stopwords,
	})
	if err != nil {
		log.Error().Err(err).Msg("analyzer init failed")
		return 1
	}

	demo := httpapi.NewDemoService(cfg.DemoEnabled, cfg.DemoFilename,
		cfg.DemoResponsePath, time.Duration(cfg.DemoDelaySeconds*float64(time.Second)))

	srv := httpapi.NewServer(cfg, analyzer, demo, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		_ = srv.Shutdown()
	}()

	log.Info().Str("addr", cfg.Addr).Msg("talktrend server listening")
	if err := srv.Listen(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return 1
	}
	return 0
}
