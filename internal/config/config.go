package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

// Config holds all application configuration
type Config struct {
	// File paths; empty values mean "use the platform default"
	HostsFile string
	DBFile    string

	// Network settings
	HTTPListen string
	DNSServer  string

	// Feature flags
	ExtendedSyntax bool
	WatchHosts     bool
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		HostsFile:      "",
		DBFile:         "",
		HTTPListen:     "127.0.0.1:8068",
		DNSServer:      "",
		ExtendedSyntax: false,
		WatchHosts:     true,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		log.Printf("Skipping config file %s: %s", filename, err)
		return err
	}

	section := cfg.Section("")
	c.HostsFile = section.Key("hostsfile").MustString(c.HostsFile)
	c.DBFile = section.Key("dbfile").MustString(c.DBFile)
	c.HTTPListen = section.Key("httplisten").MustString(c.HTTPListen)
	c.DNSServer = section.Key("dnsserver").MustString(c.DNSServer)
	c.ExtendedSyntax = section.Key("extendedsyntax").MustBool(c.ExtendedSyntax)
	c.WatchHosts = section.Key("watchhosts").MustBool(c.WatchHosts)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("HOSTSFILE"); v != "" {
		c.HostsFile = v
	}
	if v := os.Getenv("DBFILE"); v != "" {
		c.DBFile = v
	}
	if v := os.Getenv("HTTPLISTEN"); v != "" {
		c.HTTPListen = v
	}
	if v := os.Getenv("DNSSERVER"); v != "" {
		c.DNSServer = v
	}
	if v := os.Getenv("EXTENDEDSYNTAX"); v != "" {
		c.ExtendedSyntax, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("WATCHHOSTS"); v != "" {
		c.WatchHosts, _ = strconv.ParseBool(v)
	}
}

// New creates a new configuration instance
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file first
	cfg.LoadFromFile(configFile)

	// Override with environment variables
	cfg.LoadFromEnv()

	return cfg, nil
}
