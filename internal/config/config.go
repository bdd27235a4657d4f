// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// RateLimitMax caps submission attempts per IP within the window.
	RateLimitMax int

	// RateLimitWindow is the sliding-window length in seconds.
	RateLimitWindow int

	// SessionName is the name of the admin session cookie.
	SessionName string

	// SessionLifetime is the session/cookie lifetime in seconds.
	SessionLifetime int

	// Debug enables detailed error responses and non-secure cookies.
	Debug bool

	// Config is the path to the config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.IntVar(&options.RateLimitMax, "rate-max", 10, "max submissions per IP per window")
	flag.IntVar(&options.RateLimitWindow, "rate-window", 3600, "rate limit window in seconds")
	flag.StringVar(&options.SessionName, "session-name", "ZP_Admin", "admin session cookie name")
	flag.IntVar(&options.SessionLifetime, "session-lifetime", 3600, "session lifetime in seconds")
	flag.BoolVar(&options.Debug, "debug", false, "enable debug mode")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, an optional .env file, an optional
// JSON config file and environment variables to set configuration values.
// Environment variables win over the config file, which wins over flags.
// It returns a pointer to the Options struct containing the parsed values.
func Parse() *Options {
	// Load a local .env if present; absence is not an error.
	_ = godotenv.Load()

	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if v := os.Getenv("RATE_LIMIT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			options.RateLimitMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			options.RateLimitWindow = n
		}
	}
	if v := os.Getenv("SESSION_NAME"); v != "" {
		options.SessionName = v
	}
	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			options.SessionLifetime = n
		}
	}
	if v := os.Getenv("DEBUG_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			options.Debug = b
		}
	}

	return options
}
