package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"scenariogen.app/server/common"
	"scenariogen.app/server/common/id"
	"scenariogen.app/server/common/logger"
	"scenariogen.app/server/core/config"
	"scenariogen.app/server/internal/http/dto"
	"scenariogen.app/server/internal/scenario"
	"scenariogen.app/server/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the artifact, so logs go to stderr
	slog.SetDefault(slog.New(logger.NewHandler(cfg, os.Stderr)))

	if err := id.Init(cfg.NodeID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize id generator: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	request     scenario.GenerationRequest
	jsonPath    string
	outDir      string
	printPrompt bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	r := &opts.request

	fs := flag.NewFlagSet("scenariogen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&r.URL, "url", "", "page URL")
	fs.StringVar(&r.Title, "title", "", "page title")
	fs.StringVar(&r.ElementKey, "element-key", "", "stable key or selector of the element")
	fs.StringVar(&r.Role, "role", "", "ARIA role of the element")
	fs.StringVar(&r.Name, "name", "", "accessible name of the element")
	fs.StringVar(&r.SelectedText, "selected-text", "", "text selected on the page")
	fs.StringVar(&r.ImageName, "image-name", "", "name of a captured screenshot")
	fs.StringVar(&r.OuterHTML, "outer-html", "", "outer HTML of the element")
	fs.StringVar(&r.ThenLine, "then", "", "suggested Then step")
	fs.StringVar(&r.IssueType, "issue-type", "", "Feature or Bug (default Feature)")
	fs.StringVar(&r.Provider, "provider", "", "openai or ollama (default openai)")
	fs.StringVar(&r.Model, "model", "", "backend model")
	fs.StringVar(&r.OllamaURL, "ollama-url", "", "Ollama base URL")
	fs.StringVar(&opts.jsonPath, "json", "", "read the request as JSON from a file, or - for stdin")
	fs.StringVar(&opts.outDir, "out", "", "also write the artifact into this directory")
	fs.BoolVar(&opts.printPrompt, "print-prompt", false, "print the composed prompt and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.jsonPath != "" {
		req, err := readRequest(opts.jsonPath, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		opts.request = req
	}

	services := service.NewServices(service.ServicesConfig{Config: cfg})
	generation := services.Generation()

	if opts.printPrompt {
		p := generation.Prompt(opts.request)
		fmt.Fprintf(stdout, "%s\n\n%s\n", p.System, p.User)
		return 0
	}

	result, err := generation.Generate(ctx, opts.request, service.GenerateOptions{})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, result.Text)

	if opts.outDir != "" {
		path, err := writeArtifact(opts.outDir, opts.request.Title, result)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Wrote %s\n", path)
	}
	return 0
}

func readRequest(path string, stdin io.Reader) (scenario.GenerationRequest, error) {
	var src io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return scenario.GenerationRequest{}, fmt.Errorf("opening request file: %w", err)
		}
		defer f.Close()
		src = f
	}

	var body dto.GenerateScenarioRequest
	if err := json.NewDecoder(src).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return scenario.GenerationRequest{}, fmt.Errorf("decoding request: %w", err)
	}
	return body.ToDomain(), nil
}

// writeArtifact stores the result as <slug>-<id>.feature, or .md for bug reports.
func writeArtifact(dir, title string, result *service.GenerationResult) (string, error) {
	slug, err := common.Slugify(title, string(result.IssueType))
	if err != nil {
		return "", err
	}

	ext := ".feature"
	if result.IssueType == scenario.IssueTypeBug {
		ext = ".md"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s%s", slug, id.Format(result.ID), ext))
	if err := os.WriteFile(path, []byte(result.Text+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}
