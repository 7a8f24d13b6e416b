package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"hostsman/internal/config"
	"hostsman/internal/hosts"
	"hostsman/internal/monitor"
	"hostsman/internal/resolve"
	"hostsman/internal/session"
	"hostsman/internal/store"
	"hostsman/internal/web"
	"hostsman/pkg/models"
	"hostsman/pkg/utils"
)

const (
	configFile = "hostsman.ini"
)

var (
	sha1ver   string
	buildTime string
	repoName  string
)

func main() {
	log.Printf("%s: Build %s, Time %s", repoName, sha1ver, buildTime)

	// Load configuration
	cfg, err := config.New(configFile)
	utils.CheckFatal(err, "Failed to load configuration")

	parser := hosts.NewParser()
	if cfg.ExtendedSyntax {
		parser = hosts.NewExtendedParser()
	}
	writer := hosts.NewWriter(parser, cfg.HostsFile)

	// Open profile storage
	profileStore, err := store.Open(cfg.DBFile)
	utils.CheckFatal(err, "Failed to open profile store")
	defer profileStore.Close()

	// Build the session controller and load the active profile
	controller := session.NewController(profileStore, writer, resolve.NewResolver())
	utils.CheckWarn(controller.LoadProfiles(), "Failed to load profiles")

	// Watch for external edits of the hosts file
	if cfg.WatchHosts {
		mon := monitor.New(writer.Path(), parser, func(lines []models.Line) {
			current := controller.Lines()
			if len(current) != len(lines) {
				log.Printf("Hosts file differs from working copy (%d vs %d lines)", len(lines), len(current))
			}
		})
		if !utils.CheckWarn(mon.Start(), "Failed to start hosts file monitor") {
			defer mon.Stop()
		}
	}

	// Serve the JSON API
	webServer := web.NewServer(cfg, controller)
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.HTTPListen)
		if err := webServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
}
