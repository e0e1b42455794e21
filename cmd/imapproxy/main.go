package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"inboxguardian/internal/config"
	"inboxguardian/internal/imapsession"
	"inboxguardian/internal/proxy"
)

func main() {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Proxy.LogLevel); err == nil {
		log.SetLevel(level)
	}

	timeout := time.Duration(cfg.Proxy.ConnectTimeoutSec) * time.Second
	manager := imapsession.NewManager(cfg.Proxy.IMAPAddr, timeout, log)
	srv := proxy.NewApp(manager, log)

	log.WithFields(logrus.Fields{
		"addr":    cfg.Proxy.ListenAddr,
		"imap":    cfg.Proxy.IMAPAddr,
		"version": proxy.ServerVersion,
	}).Info("imap proxy listening")

	if err := srv.Listen(cfg.Proxy.ListenAddr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
