// Command pdfbm adds a bookmark outline to a PDF from a plain text listing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"unicode/utf8"

	"github.com/dgallion1/pdfbm/internal/config"
	"github.com/dgallion1/pdfbm/internal/pipeline"
)

// errUsage is returned for bad invocations; main exits with status 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "pdfbm:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("pdfbm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	marker := fs.String("marker", string(cfg.Marker), "depth marker `character`")
	suffix := fs.String("suffix", cfg.OutputSuffix, "suffix for the default output name")
	check := fs.Bool("check", false, "print the bookmarks with page previews and write nothing")
	export := fs.Bool("export", false, "print the existing outline of <input.pdf> as a listing")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options] <input.pdf> [bookmarks] [output.pdf]\n",
			filepath.Base(os.Args[0]))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "The bookmarks listing defaults to <input>.txt and the output")
		fmt.Fprintln(out, "to <input>-new.pdf. Listings may also be .md, .html, .csv or .docx.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 3 || (*export && len(rest) != 1) {
		fs.Usage()
		return errUsage
	}
	if *check && *export {
		fmt.Fprintln(stderr, "pdfbm: -check and -export are mutually exclusive")
		return errUsage
	}

	r, size := utf8.DecodeRuneInString(*marker)
	if r == utf8.RuneError || size != len(*marker) {
		fmt.Fprintf(stderr, "pdfbm: -marker must be a single character, got %q\n", *marker)
		return errUsage
	}
	cfg.Marker = r
	cfg.OutputSuffix = *suffix
	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	b := pipeline.New(cfg, log)

	p := pipeline.Paths{Input: rest[0]}
	if len(rest) > 1 {
		p.Bookmarks = rest[1]
	}
	if len(rest) > 2 {
		p.Output = rest[2]
	}

	switch {
	case *export:
		return b.Export(p.Input, stdout)
	case *check:
		report, err := b.Check(ctx, p)
		if err != nil {
			return err
		}
		if err := pipeline.WriteReport(stdout, report, cfg.Marker); err != nil {
			return err
		}
		if n := report.Problems(); n > 0 {
			return fmt.Errorf("%d bookmarks point past the last page", n)
		}
		return nil
	default:
		res, err := b.Run(ctx, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d bookmarks written\n", res.Paths.Output, res.Entries)
		return nil
	}
}
