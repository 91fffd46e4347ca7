// Package main - Entry point for the panelquote tool server
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"panelquote/agent"
	"panelquote/api"
	"panelquote/core/catalog"
	"panelquote/core/lookup"
	"panelquote/core/monitor"
	"panelquote/core/quote"
	"panelquote/core/rules"
	"panelquote/internal/config"
	"panelquote/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	catalogPath := flag.String("catalog", "", "catalog document path (overrides config)")
	rulesPath := flag.String("rules", "", "pricing-rules document path (overrides config)")
	flag.Parse()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logging: %v\n", err)
	}
	defer logging.Sync()

	path := cfg.Catalog.Path
	if *catalogPath != "" {
		path = *catalogPath
	}
	snap, err := catalog.LoadFile(path)
	if err != nil {
		logging.Error("loading catalog", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	store := catalog.NewStore(snap)

	doc := rules.DefaultDocument()
	rp := cfg.Rules
	if *rulesPath != "" {
		rp = *rulesPath
	}
	if rp != "" {
		if loaded, err := rules.LoadDocument(rp); err == nil {
			doc = loaded
		} else if *rulesPath != "" {
			logging.Error("loading rules document", zap.String("path", rp), zap.Error(err))
			os.Exit(1)
		}
	}
	engine, err := rules.NewEngine(doc)
	if err != nil {
		logging.Error("building rules engine", zap.Error(err))
		os.Exit(1)
	}

	lk := lookup.NewService(store)
	mon := monitor.New()
	dispatcher := agent.NewDispatcher(quote.NewCalculator(lk, engine), lk, nil, mon)
	server := api.NewServer(dispatcher, mon, store, version)

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}

	logging.Info("panelquote tool server listening",
		zap.String("addr", listen),
		zap.String("catalog_version", snap.Version()),
		zap.Int("catalog_entries", len(snap.Entries())))

	if err := http.ListenAndServe(listen, server); err != nil {
		logging.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
