package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bilisum/internal/backend"
	"bilisum/internal/config"
	"bilisum/internal/jobs"
	"bilisum/internal/logging"
	"bilisum/internal/presets"
	"bilisum/internal/session"
	"bilisum/internal/sink"
)

type commandContext struct {
	configFlag  *string
	baseURLFlag *string
	verbose     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, baseURLFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		baseURLFlag: baseURLFlag,
		verbose:     verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.baseURLFlag != nil {
			if override := strings.TrimSpace(*c.baseURLFlag); override != "" {
				cfg.Backend.BaseURL = override
			}
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) backendClient() (*backend.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithLogger(logger),
	)
}

func (c *commandContext) presetSource() (*presets.Source, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := c.backendClient()
	if err != nil {
		return nil, err
	}
	return presets.NewSource(client,
		presets.WithPreferred(cfg.Presets.Default),
		presets.WithLogger(logger),
	), nil
}

func (c *commandContext) newSession(status session.StatusSink, results sink.ResultSink) (*session.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := c.backendClient()
	if err != nil {
		return nil, err
	}
	source, err := c.presetSource()
	if err != nil {
		return nil, err
	}
	return session.New(
		source,
		jobs.NewSubmitter(client, logger),
		jobs.NewPoller(client, jobs.WithInterval(cfg.PollInterval()), jobs.WithPollerLogger(logger)),
		session.WithStatusSink(status),
		session.WithResultSink(results),
		session.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
