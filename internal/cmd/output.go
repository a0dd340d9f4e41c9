package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/jobpilot/internal/export"
	"github.com/muesli/termenv"
)

// OutputOptions are shared by commands that print listings or applications.
type OutputOptions struct {
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
	Out    string `name:"out" help:"Alias for --output."`
}

func resolveOutputPath(opts OutputOptions) string {
	if opts.Output != "" {
		return opts.Output
	}
	return opts.Out
}

// resolveFormat picks the format: global --json/--plain first, then --format,
// then table for terminals and csv for pipes and files.
func resolveFormat(ctx *Context, opts OutputOptions, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return export.ParseFormat(opts.Format)
	}
	if outputPath == "" && isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

type writeFunc func(w io.Writer, format export.Format, opts export.WriteOptions) error

// writeOutput renders through write either to stdout or to the --output file.
func writeOutput(ctx *Context, opts OutputOptions, write writeFunc) error {
	outputPath := resolveOutputPath(opts)
	format, err := resolveFormat(ctx, opts, outputPath)
	if err != nil {
		return err
	}

	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	if outputPath == "" {
		colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
		return write(ctx.Out, format, export.WriteOptions{
			ColorEnabled: colorEnabled,
			Hyperlinks:   colorEnabled && isTTY(ctx.Out),
			LinkStyle:    linkStyle,
		})
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := write(file, format, export.WriteOptions{LinkStyle: linkStyle}); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	if ctx.UI != nil {
		ctx.UI.Successf("Wrote %s", outputPath)
	}
	return nil
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startProgressIndicator(ctx *Context, label string) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return func() {}
	}
	if !isTTY(ctx.Err) || ctx.Verbose {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2K%s... %ds %s", label, seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
