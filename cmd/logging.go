package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/achilleasa/polaris-bvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("polaris-bvh")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	// Per-logger overrides use the "logger name=level" format
	for _, override := range ctx.GlobalStringSlice("log-module") {
		name, levelName, err := parseModuleLevel(override)
		if err != nil {
			logger.Warningf("ignoring log level override: %s", err)
			continue
		}
		level, err := log.ParseLevel(levelName)
		if err != nil {
			logger.Warningf("ignoring log level override: %s", err)
			continue
		}
		log.SetModuleLevel(name, level)
	}
}

func parseModuleLevel(override string) (string, string, error) {
	sep := strings.LastIndex(override, "=")
	if sep <= 0 || sep == len(override)-1 {
		return "", "", fmt.Errorf("expected \"logger name=level\"; got %q", override)
	}
	return strings.TrimSpace(override[:sep]), strings.TrimSpace(override[sep+1:]), nil
}

// Log a fatal error and exit.
func Fatal(err error) {
	logger.Error(err)
	os.Exit(1)
}
