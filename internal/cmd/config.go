package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jimezsa/jobpilot/internal/config"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config and proxies files."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print the effective configuration with secrets masked."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

func (c *ShowConfigCmd) Run(ctx *Context) error {
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(maskSecrets(ctx.Config))
}

func maskSecrets(cfg config.Config) config.Config {
	cfg.Adzuna.AppKey = mask(cfg.Adzuna.AppKey)
	cfg.JSearch.APIKey = mask(cfg.JSearch.APIKey)
	cfg.TheMuse.APIKey = mask(cfg.TheMuse.APIKey)
	cfg.Gemini.APIKey = mask(cfg.Gemini.APIKey)
	cfg.Store.RedisURL = maskURL(cfg.Store.RedisURL)
	cfg.Store.DatabaseURL = maskURL(cfg.Store.DatabaseURL)
	return cfg
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

// maskURL hides the userinfo of a connection string.
func maskURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return raw
	}
	return scheme + "://****@" + rest[at+1:]
}
