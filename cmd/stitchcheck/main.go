// Command stitchcheck is the CLI for the knitting pattern analyzer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-isatty"

	"stitchcheck/internal/extract"
	"stitchcheck/internal/history"
	"stitchcheck/internal/integrity"
	"stitchcheck/internal/model"
	"stitchcheck/internal/pipeline"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	dataDir := flag.String("data", defaultDataDir(), "Data directory")
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var err error
	switch cmd {
	case "analyze":
		err = cmdAnalyze(ctx, *dataDir, args)
	case "history":
		err = cmdHistory(ctx, *dataDir, args)
	case "show":
		err = cmdShow(ctx, *dataDir, args)
	case "version":
		fmt.Printf("stitchcheck v%s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stitchcheck v` + version + ` - knitting pattern stitch-count analyzer

Usage:
  stitchcheck [-data <dir>] <command> [options] [arguments]

Commands:
  analyze <file>      Analyze a .txt/.docx/.pdf pattern (use - for stdin)
  history             Show recently analyzed patterns
  show <run-id>       Show a previously recorded analysis
  version             Show version
  help                Show this help

Options:
  -data <dir>           Data directory, given before the command (default: ~/.stitchcheck)
  -llm                  Attempt optional LLM augmentation (analyze)
  -verify-idempotent    Re-run the pipeline and confirm identical results (analyze)
  -no-history           Don't record this run (analyze)

Examples:
  stitchcheck analyze sweater.txt
  stitchcheck analyze -llm pattern.docx
  stitchcheck history
  stitchcheck show 3fa85f64-5717-4562-b3fc-2c963f66afa6
`)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stitchcheck"
	}
	return filepath.Join(home, ".stitchcheck")
}

// analysisCache memoizes analyses of byte-identical input within a single
// CLI invocation. cmdAnalyze handles one source per invocation, so the
// cache is consulted once per process and never returns an earlier
// result; there is no batch or directory mode. This lives strictly at the
// CLI layer: the core
// pipeline (internal/pipeline) is never given a cache, since spec.md §5
// requires every call to run fresh.
var analysisCache, _ = lru.New[string, *model.Pattern](32)

func cmdAnalyze(ctx context.Context, dataDir string, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	useLLM := fs.Bool("llm", false, "attempt optional LLM augmentation")
	verifyIdempotent := fs.Bool("verify-idempotent", false, "re-run and confirm identical results")
	noHistory := fs.Bool("no-history", false, "don't record this run")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("analyze requires a file argument (or - for stdin)")
	}
	source := rest[0]

	rawText, err := readSource(ctx, source)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	opts := pipeline.Options{UseLLM: *useLLM, Logger: logger}
	if cached, ok := analysisCache.Get(rawText); ok && !*useLLM {
		printSummary(cached, source)
	} else {
		start := time.Now()
		pattern, err := pipeline.Run(ctx, rawText, opts)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		analysisCache.Add(rawText, pattern)
		printSummary(pattern, source)
		fmt.Printf("(analyzed in %s)\n", humanize.RelTime(start, time.Now(), "", ""))

		if *verifyIdempotent {
			ok, err := integrity.VerifyIdempotent(pattern, func(text string) (*model.Pattern, error) {
				return pipeline.Run(ctx, text, opts)
			})
			if err != nil {
				return fmt.Errorf("verify idempotent: %w", err)
			}
			if ok {
				fmt.Println("idempotence check: OK")
			} else {
				fmt.Println("idempotence check: FAILED — two runs over the same text produced different results")
			}
		}

		if !*noHistory {
			if err := recordRun(ctx, dataDir, source, pattern); err != nil {
				logger.Warn("failed to record run history", "error", err)
			}
		}
	}

	return nil
}

func readSource(ctx context.Context, source string) (string, error) {
	if source == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}

	registry := extract.NewRegistry()
	text, err := registry.Extract(ctx, source, content)
	if err != nil {
		return "", err
	}
	return text, nil
}

func recordRun(ctx context.Context, dataDir, source string, p *model.Pattern) error {
	store, err := history.Open(history.DefaultConfig(filepath.Join(dataDir, "history.db")))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	hash, err := integrity.Hash(p)
	if err != nil {
		return err
	}

	_, err = store.Record(ctx, source, p, hash)
	return err
}

func cmdHistory(ctx context.Context, dataDir string, args []string) error {
	store, err := history.Open(history.DefaultConfig(filepath.Join(dataDir, "history.db")))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	runs, err := store.List(ctx, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs yet")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-30s  %d errors, %d warnings  (%s)\n",
			r.ID, r.SourceLabel, r.ErrorCount, r.WarningCount,
			humanize.Time(r.CreatedAt),
		)
	}
	return nil
}

func cmdShow(ctx context.Context, dataDir string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("show requires a run id argument")
	}
	store, err := history.Open(history.DefaultConfig(filepath.Join(dataDir, "history.db")))
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	run, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:          %s\n", run.ID)
	fmt.Printf("source:       %s\n", run.SourceLabel)
	fmt.Printf("analyzed:     %s\n", humanize.Time(run.CreatedAt))
	fmt.Printf("sizes:        %s\n", strings.Join(run.Sizes, ", "))
	fmt.Printf("errors:       %d\n", run.ErrorCount)
	fmt.Printf("warnings:     %d\n", run.WarningCount)
	if run.IdempotentHash != "" {
		fmt.Printf("content hash: %s\n", run.IdempotentHash)
	}
	return nil
}

func printSummary(p *model.Pattern, source string) {
	colorize := isatty.IsTerminal(os.Stdout.Fd())

	bold := func(s string) string {
		if !colorize {
			return s
		}
		return "\x1b[1m" + s + "\x1b[0m"
	}

	fmt.Printf("%s %s\n", bold("Pattern:"), source)
	if len(p.Sizes) > 0 {
		fmt.Printf("%s %s\n", bold("Sizes:"), strings.Join(p.Sizes, ", "))
	}
	if len(p.CastOnCounts) > 0 {
		fmt.Printf("%s %v\n", bold("Cast-on:"), p.CastOnCounts)
	}
	fmt.Printf("%s %d sections, %d issues\n", bold("Summary:"), len(p.Sections), len(p.Issues))

	for _, issue := range p.Issues {
		fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
	}
}
