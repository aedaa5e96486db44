package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/scott-cotton/cli"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/sync"
)

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Serve.Parse(cc, args); err != nil {
		cfg.Serve.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	conf := sync.DefaultConfig()
	if cfg.ConfigFile != "" {
		var err error
		conf, err = sync.LoadConfig(cfg.ConfigFile)
		if err != nil {
			return err
		}
	}
	if cfg.Listen != "" {
		conf.Listen = cfg.Listen
	}
	if cfg.Persist != "" {
		conf.Persist = cfg.Persist
	}
	if cfg.SaveSeconds > 0 {
		conf.SaveIntervalSeconds = cfg.SaveSeconds
	}

	doc := denicek.New("", dom.Element("body"))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sync.NewServer(doc, conf).Serve(ctx)
}
