package source

import (
	"fmt"
	"strings"

	"github.com/jimezsa/jobpilot/internal/config"
	"github.com/jimezsa/jobpilot/internal/network"
	"github.com/rs/zerolog"
)

const (
	SiteAdzuna  = "adzuna"
	SiteJSearch = "jsearch"
	SiteTheMuse = "themuse"
	SiteCareers = "careers"
)

// Source tags stored on listings.
const (
	SourceTagAdzuna  = "Adzuna"
	SourceTagJSearch = "JSearch"
	SourceTagTheMuse = "The Muse"
	SourceTagCareers = "Careers"
)

// Sites lists every known adapter in registration order.
var Sites = []string{SiteAdzuna, SiteJSearch, SiteTheMuse, SiteCareers}

// Registry builds the adapters that have credentials configured, in
// registration order. All adapters share client and its rate limiter.
func Registry(cfg config.Config, client *network.Client, log zerolog.Logger) ([]Adapter, error) {
	var adapters []Adapter

	adzunaKey, err := cfg.Adzuna.Secret().Resolve()
	if err != nil {
		return nil, err
	}
	if cfg.Adzuna.AppID != "" && adzunaKey != "" {
		adapters = append(adapters, NewAdzuna(client, cfg.Adzuna.AppID, adzunaKey, cfg.Adzuna.Country, cfg.Adzuna.ResultsPerPage))
	} else {
		log.Debug().Str("source", SiteAdzuna).Msg("skipping source without credentials")
	}

	rapidKey, err := cfg.JSearch.Secret().Resolve()
	if err != nil {
		return nil, err
	}
	if rapidKey != "" {
		adapters = append(adapters, NewJSearch(client, rapidKey, cfg.JSearch.Host))
	} else {
		log.Debug().Str("source", SiteJSearch).Msg("skipping source without credentials")
	}

	if cfg.TheMuse.Enabled || cfg.TheMuse.APIKey != "" {
		adapters = append(adapters, NewTheMuse(client, cfg.TheMuse.APIKey))
	} else {
		log.Debug().Str("source", SiteTheMuse).Msg("skipping disabled source")
	}

	if len(cfg.Careers.Pages) > 0 {
		adapters = append(adapters, NewCareers(client, cfg.Careers.Pages))
	} else {
		log.Debug().Str("source", SiteCareers).Msg("skipping source without pages")
	}

	return adapters, nil
}

// Select keeps the adapters named in sites, preserving registration order.
// An empty sites list keeps all of them.
func Select(adapters []Adapter, sites []string) ([]Adapter, error) {
	sites = NormalizeSites(sites)
	if len(sites) == 0 {
		return adapters, nil
	}

	wanted := map[string]bool{}
	for _, site := range sites {
		if !known(site) {
			return nil, fmt.Errorf("unknown site %q (known: %s)", site, strings.Join(Sites, ", "))
		}
		wanted[site] = true
	}

	out := make([]Adapter, 0, len(sites))
	for _, adapter := range adapters {
		if wanted[adapter.Name()] {
			out = append(out, adapter)
		}
	}
	return out, nil
}

func NormalizeSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.ToLower(strings.TrimSpace(site))
		if site == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(site, " ", ""))
	}
	return out
}

func known(site string) bool {
	for _, s := range Sites {
		if s == site {
			return true
		}
	}
	return false
}
