package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/jobpilot/internal/models"
	"github.com/jimezsa/jobpilot/internal/ui"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// ParseFormat accepts the format names and "markdown".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (table, csv, tsv, json, md)", value)
}

// WriteListings writes ranked listings.
func WriteListings(w io.Writer, listings []models.ScoredListing, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, listings)
	case FormatCSV:
		return writeDelimited(w, ',', listingHeader(), listingRows(listings))
	case FormatTSV:
		return writeDelimited(w, '\t', listingHeader(), listingRows(listings))
	case FormatMarkdown:
		return writeListingsMarkdown(w, listings)
	default:
		return writeListingsTable(w, listings, opts)
	}
}

// WriteApplications writes the application history.
func WriteApplications(w io.Writer, apps []models.Application, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, apps)
	case FormatCSV:
		return writeDelimited(w, ',', applicationHeader(), applicationRows(apps))
	case FormatTSV:
		return writeDelimited(w, '\t', applicationHeader(), applicationRows(apps))
	case FormatMarkdown:
		return writeApplicationsMarkdown(w, apps)
	default:
		return writeApplicationsTable(w, apps, opts)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDelimited(w io.Writer, delim rune, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func listingHeader() []string {
	return []string{
		"id",
		"score",
		"source",
		"title",
		"company",
		"location",
		"remote",
		"type",
		"salary_min",
		"salary_max",
		"skills",
		"url",
		"posted_at",
	}
}

func listingRows(listings []models.ScoredListing) [][]string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.ID,
			strconv.Itoa(l.MatchScore),
			l.Source,
			l.Title,
			l.Company,
			l.Location,
			strconv.FormatBool(l.Remote),
			l.JobType,
			amount(l.SalaryMin),
			amount(l.SalaryMax),
			strings.Join(l.RequiredSkills, ";"),
			l.URL,
			timestamp(l.PostedAt),
		})
	}
	return rows
}

func applicationHeader() []string {
	return []string{
		"id",
		"listing_id",
		"status",
		"applied_at",
		"auto",
		"score",
		"title",
		"company",
		"source",
		"url",
	}
}

func applicationRows(apps []models.Application) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, []string{
			app.ID,
			app.ListingID,
			string(app.Status),
			timestamp(app.AppliedAt),
			strconv.FormatBool(app.AutoApplied),
			strconv.Itoa(app.Job.MatchScore),
			app.Job.Title,
			app.Job.Company,
			app.Job.Source,
			app.Job.URL,
		})
	}
	return rows
}

func writeListingsTable(w io.Writer, listings []models.ScoredListing, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"score", "id", "title", "company", "location", "salary", "url"}, "\t"))
	output := termenv.NewOutput(w)
	for _, l := range listings {
		score := ui.ColorizeScore(output, opts.ColorEnabled, l.MatchScore, fmt.Sprintf("%d%%", l.MatchScore))
		fmt.Fprintln(tw, strings.Join([]string{
			score,
			l.ID,
			safe(l.Title),
			safe(l.Company),
			safe(l.Location),
			salaryRange(l.Listing),
			displayURL(l.URL, output, opts),
		}, "\t"))
	}
	return tw.Flush()
}

func writeApplicationsTable(w io.Writer, apps []models.Application, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"id", "status", "applied", "auto", "score", "title", "company", "url"}, "\t"))
	output := termenv.NewOutput(w)
	for _, app := range apps {
		fmt.Fprintln(tw, strings.Join([]string{
			app.ID,
			string(app.Status),
			app.AppliedAt.Local().Format("2006-01-02 15:04"),
			yesNo(app.AutoApplied),
			ui.ColorizeScore(output, opts.ColorEnabled, app.Job.MatchScore, fmt.Sprintf("%d%%", app.Job.MatchScore)),
			safe(app.Job.Title),
			safe(app.Job.Company),
			displayURL(app.Job.URL, output, opts),
		}, "\t"))
	}
	return tw.Flush()
}

func writeListingsMarkdown(w io.Writer, listings []models.ScoredListing) error {
	if len(listings) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, l := range listings {
		urlLine := "  URL: -"
		if u := safe(l.URL); u != "" {
			urlLine = fmt.Sprintf("  URL: [Open listing](<%s>)", u)
		}
		lines := []string{
			fmt.Sprintf("- **%s** (%s): %d%% match", safe(l.Title), safe(l.Company), l.MatchScore),
			fmt.Sprintf("  Location: %s", safe(l.Location)),
			fmt.Sprintf("  Source: %s", safe(l.Source)),
			urlLine,
		}
		if l.Remote {
			lines = append(lines, "  Remote: yes")
		}
		if l.JobType != "" {
			lines = append(lines, fmt.Sprintf("  Type: %s", safe(l.JobType)))
		}
		if s := salaryRange(l.Listing); s != "-" {
			lines = append(lines, fmt.Sprintf("  Salary: %s", s))
		}
		if len(l.RequiredSkills) > 0 {
			lines = append(lines, fmt.Sprintf("  Skills: %s", strings.Join(l.RequiredSkills, ", ")))
		}
		for _, f := range l.MatchFactors {
			lines = append(lines, fmt.Sprintf("  %s: %d (%s)", f.Name, f.Score, f.Details))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeApplicationsMarkdown(w io.Writer, apps []models.Application) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No applications.")
		return err
	}
	for _, app := range apps {
		lines := []string{
			fmt.Sprintf("- **%s** (%s): %s", safe(app.Job.Title), safe(app.Job.Company), app.Status),
			fmt.Sprintf("  Applied: %s", timestamp(app.AppliedAt)),
			fmt.Sprintf("  Match: %d%%", app.Job.MatchScore),
		}
		if app.AutoApplied {
			lines = append(lines, "  Auto-applied: yes")
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func salaryRange(l models.Listing) string {
	switch {
	case l.SalaryMin > 0 && l.SalaryMax > 0 && l.SalaryMax != l.SalaryMin:
		return amount(l.SalaryMin) + "-" + amount(l.SalaryMax)
	case l.SalaryMin > 0:
		return amount(l.SalaryMin)
	case l.SalaryMax > 0:
		return "up to " + amount(l.SalaryMax)
	}
	return "-"
}

func amount(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func displayURL(raw string, output *termenv.Output, opts WriteOptions) string {
	link := safe(raw)
	if link == "" {
		return "-"
	}
	text := link
	if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
		text = shortURLLabel(link)
	}
	text = ui.ColorizeLink(output, opts.ColorEnabled, text)
	if opts.Hyperlinks {
		text = hyperlink(link, text)
	}
	return text
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
