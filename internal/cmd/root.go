package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version      VersionCmd      `cmd:"" help:"Print version."`
	Config       ConfigCmd       `cmd:"" help:"Manage configuration."`
	Search       SearchCmd       `cmd:"" help:"Search, score and rank job listings."`
	Apply        ApplyCmd        `cmd:"" help:"Apply to a stored listing."`
	Resume       ResumeCmd       `cmd:"" help:"Parse and inspect the resume profile."`
	Prefs        PrefsCmd        `cmd:"" help:"Manage job preferences."`
	Applications ApplicationsCmd `cmd:"" help:"Track submitted applications."`
	Watch        WatchCmd        `cmd:"" help:"Run searches on a schedule."`
	Proxies      ProxiesCmd      `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
