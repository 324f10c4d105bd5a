package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gogpu/resample"
)

// envDefaults are flag defaults taken from the environment.
type envDefaults struct {
	filter   string
	workers  int
	gamma    bool
	out      string
	logLevel slog.Level
}

// loadEnv reads an optional .env file, then the REZ_* variables.
func loadEnv() envDefaults {
	// A missing .env file is fine.
	_ = godotenv.Load()
	return envFrom(os.Getenv)
}

func envFrom(getenv func(string) string) envDefaults {
	d := envDefaults{
		filter:   resample.DefaultFilter,
		gamma:    true,
		out:      ".",
		logLevel: slog.LevelWarn,
	}
	if v := getenv("REZ_FILTER"); v != "" {
		d.filter = v
	}
	if v, err := strconv.Atoi(getenv("REZ_WORKERS")); err == nil {
		d.workers = v
	}
	if v, err := strconv.ParseBool(getenv("REZ_GAMMA")); err == nil {
		d.gamma = v
	}
	if v := getenv("REZ_OUT"); v != "" {
		d.out = v
	}
	if v := getenv("REZ_LOG"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			d.logLevel = lvl
		}
	}
	return d
}
