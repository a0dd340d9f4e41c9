package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jimezsa/jobpilot/internal/aggregate"
	"github.com/jimezsa/jobpilot/internal/export"
	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/pipeline"
	"gopkg.in/yaml.v3"
)

type SearchCmd struct {
	Query     string `arg:"" optional:"" help:"Search query; comma-separated terms are combined with OR. Defaults to the preferred job titles."`
	Sites     string `help:"Comma-separated list of sources (default: all configured)." default:"all"`
	Location  string `help:"Job location." env:"JOBPILOT_DEFAULT_LOCATION"`
	Limit     int    `help:"Maximum results per source." env:"JOBPILOT_DEFAULT_LIMIT"`
	Page      int    `help:"Result page to request from each source." default:"1"`
	MinScore  int    `help:"Only print listings scoring at least this much."`
	AutoApply bool   `help:"Auto-apply to the top matches after ranking (also enabled by auto_apply.enabled)."`
	Proxies   string `help:"Comma-separated proxy URLs." env:"JOBPILOT_PROXIES"`
	QueryFile string `help:"Path to a JSON or YAML file with queries (top-level string array or object with job_titles array)."`
	OutputOptions
}

const maxQueries = 10

func (s *SearchCmd) Run(ctx *Context) error {
	queries, err := resolveQueries(s.Query, s.QueryFile)
	if err != nil {
		return err
	}

	repo, closeRepo, err := ctx.openRepository()
	if err != nil {
		return err
	}
	defer closeRepo()

	p, err := ctx.newPipeline(repo, searchSetup{
		Sites:   splitSites(s.Sites),
		Proxies: s.Proxies,
		Limit:   s.Limit,
		Page:    s.Page,
	})
	if err != nil {
		return err
	}

	stop := startProgressIndicator(ctx, "Searching")
	report, err := p.Run(ctx.runContext(), pipeline.Options{
		Query:     strings.Join(queries, " OR "),
		Location:  s.Location,
		AutoApply: s.AutoApply || ctx.Config.AutoApply.Enabled,
	})
	stop()
	if err != nil {
		return err
	}

	reportSourceFailures(ctx, report.Search)

	listings := filterByScore(report.Ranked, s.MinScore)
	if err := writeOutput(ctx, s.OutputOptions, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteListings(w, listings, format, opts)
	}); err != nil {
		return err
	}

	printRunSummary(ctx, report)
	return nil
}

func splitSites(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	return strings.Split(raw, ",")
}

func filterByScore(listings []models.ScoredListing, minScore int) []models.ScoredListing {
	if minScore <= 0 {
		return listings
	}
	out := make([]models.ScoredListing, 0, len(listings))
	for _, listing := range listings {
		if listing.MatchScore >= minScore {
			out = append(out, listing)
		}
	}
	return out
}

func reportSourceFailures(ctx *Context, report aggregate.Report) {
	if ctx == nil || ctx.UI == nil || !ctx.Verbose {
		return
	}
	failed := report.Failed()
	if len(failed) == 0 {
		return
	}
	ctx.UI.Warnf("\nSource errors:")
	for _, outcome := range failed {
		ctx.UI.Warnf("  %s: %v", outcome.Source, outcome.Err)
	}
}

func printRunSummary(ctx *Context, report pipeline.Report) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintln(ctx.Err, formatRunSummary(report))
	if report.AutoApply == nil {
		return
	}
	for _, result := range report.AutoApply.Results {
		if result.AlreadyApplied || result.PersistErr != nil {
			continue
		}
		job := result.Application.Job
		_, _ = fmt.Fprintf(ctx.Err, "applied: %s %s at %s (%d%%)\n", job.ID, job.Title, job.Company, job.MatchScore)
	}
}

func formatRunSummary(report pipeline.Report) string {
	counts := countBySource(report.Ranked)
	bySource := "none"
	if len(counts) > 0 {
		parts := make([]string, 0, len(counts))
		for _, count := range counts {
			parts = append(parts, fmt.Sprintf("%s:%d", count.source, count.total))
		}
		bySource = strings.Join(parts, ", ")
	}

	summary := fmt.Sprintf("summary: listings=%d new=%d by_source=%s", len(report.Ranked), report.NewCount, bySource)
	if failed := report.Search.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, outcome := range failed {
			names = append(names, outcome.Source)
		}
		summary += " failed=" + strings.Join(names, ",")
	}
	if report.AutoApply != nil {
		summary += fmt.Sprintf(" auto_applied=%d", report.AutoApply.Applied())
	}
	return summary
}

type sourceCount struct {
	source string
	total  int
}

func countBySource(listings []models.ScoredListing) []sourceCount {
	totals := make(map[string]int, len(listings))
	for _, listing := range listings {
		name := strings.TrimSpace(listing.Source)
		if name == "" {
			name = "unknown"
		}
		totals[name]++
	}

	counts := make([]sourceCount, 0, len(totals))
	for name, total := range totals {
		counts = append(counts, sourceCount{source: name, total: total})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].source < counts[j].source
	})
	return counts
}

// resolveQueries merges the positional queries with the query file. No
// queries at all is allowed; the run then uses the preferred titles.
func resolveQueries(raw string, queryFile string) ([]string, error) {
	positional := splitQueries(raw)
	var fromFile []string
	if strings.TrimSpace(queryFile) != "" {
		var err error
		fromFile, err = loadQueryFile(queryFile)
		if err != nil {
			return nil, err
		}
	}
	return mergeQueries(positional, fromFile)
}

func splitQueries(raw string) []string {
	parts := strings.Split(raw, ",")
	queries := make([]string, 0, len(parts))
	for _, part := range parts {
		if query := strings.TrimSpace(part); query != "" {
			queries = append(queries, query)
		}
	}
	return queries
}

func mergeQueries(primary []string, secondary []string) ([]string, error) {
	queries := make([]string, 0, len(primary)+len(secondary))
	seen := make(map[string]struct{}, len(primary)+len(secondary))

	for _, query := range append(append([]string{}, primary...), secondary...) {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		normalized := strings.ToLower(query)
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		queries = append(queries, query)
	}

	if len(queries) > maxQueries {
		return nil, fmt.Errorf("too many queries: max %d", maxQueries)
	}
	return queries, nil
}

// loadQueryFile reads a string array or an object with a job_titles array.
// JSON input is read by the YAML decoder as well.
func loadQueryFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --query-file %q: %w", path, err)
	}

	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --query-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		titles, ok := value["job_titles"].([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: field \"job_titles\" must be an array of strings", path)
		}
		return parseStringArray(titles, path, "job_titles")
	default:
		return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"job_titles\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	queries := make([]string, 0, len(values))
	for idx, rawValue := range values {
		query, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		if query = strings.TrimSpace(query); query != "" {
			queries = append(queries, query)
		}
	}
	return queries, nil
}
