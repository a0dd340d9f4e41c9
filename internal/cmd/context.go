package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jimezsa/jobpilot/internal/aggregate"
	"github.com/jimezsa/jobpilot/internal/ai"
	"github.com/jimezsa/jobpilot/internal/apply"
	"github.com/jimezsa/jobpilot/internal/config"
	"github.com/jimezsa/jobpilot/internal/network"
	"github.com/jimezsa/jobpilot/internal/pipeline"
	"github.com/jimezsa/jobpilot/internal/source"
	"github.com/jimezsa/jobpilot/internal/state"
	"github.com/jimezsa/jobpilot/internal/store"
	"github.com/jimezsa/jobpilot/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Ctx        context.Context
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

func (c *Context) runContext() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// openRepository opens the configured store. The returned func closes it.
func (c *Context) openRepository() (*state.Repository, func(), error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	backend, err := store.Open(c.runContext(), c.Config.Store, dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", c.Config.Store.Backend, err)
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("closing store")
		}
	}
	return state.New(backend), closeFn, nil
}

func (c *Context) newClient(proxiesFlag string) (*network.Client, error) {
	proxies, err := config.LoadProxies(proxiesFlag)
	if err != nil {
		return nil, err
	}
	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 5*time.Minute)
		if err != nil {
			return nil, err
		}
	}
	return network.NewClient(network.Options{
		Rotator:           rotator,
		RequestsPerMinute: c.Config.Network.RequestsPerMinute,
		Timeout:           time.Duration(c.Config.Network.TimeoutSeconds) * time.Second,
	})
}

func (c *Context) newAggregator(client *network.Client, sites []string, opts aggregate.Options) (*aggregate.Aggregator, error) {
	adapters, err := source.Registry(c.Config, client, c.Logger)
	if err != nil {
		return nil, err
	}
	adapters, err = source.Select(adapters, sites)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no job sources configured; add credentials to %s", c.ConfigDir)
	}
	return aggregate.New(adapters, opts, c.Logger), nil
}

// newGemini returns nil without error when no API key is configured.
func (c *Context) newGemini() (*ai.Gemini, error) {
	key, err := c.Config.Gemini.Secret().Resolve()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}
	return ai.NewGemini(c.runContext(), key, c.Config.Gemini.Model)
}

func (c *Context) policy() apply.Policy {
	auto := c.Config.AutoApply
	return apply.Policy{
		Threshold: auto.Threshold,
		BatchSize: auto.BatchSize,
		Delay:     auto.Delay(),
		DailyCap:  auto.DailyCap,
	}
}

// newOrchestrator falls back to template letters when Gemini is unavailable.
func (c *Context) newOrchestrator(repo *state.Repository) (*apply.Orchestrator, error) {
	gemini, err := c.newGemini()
	if err != nil {
		return nil, err
	}
	var letters apply.CoverLetters
	if gemini != nil {
		letters = ai.NewCoverLetterWriter(gemini)
	} else {
		c.Logger.Debug().Msg("gemini not configured, cover letters use the template")
	}
	return apply.New(repo, letters, c.policy(), c.Logger), nil
}

type searchSetup struct {
	Sites   []string
	Proxies string
	Limit   int
	Page    int
}

func (c *Context) newPipeline(repo *state.Repository, setup searchSetup) (*pipeline.Pipeline, error) {
	client, err := c.newClient(setup.Proxies)
	if err != nil {
		return nil, err
	}
	agg, err := c.newAggregator(client, setup.Sites, aggregate.Options{
		Limit: defaultInt(setup.Limit, c.Config.DefaultLimit),
		Page:  setup.Page,
	})
	if err != nil {
		return nil, err
	}
	orchestrator, err := c.newOrchestrator(repo)
	if err != nil {
		return nil, err
	}
	defaults := pipeline.Defaults{Query: c.Config.DefaultQuery, Location: c.Config.DefaultLocation}
	return pipeline.New(repo, agg, orchestrator, defaults, c.Logger), nil
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
