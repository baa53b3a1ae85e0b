package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	formbind "github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/source"
	"github.com/goliatone/go-formbind/pkg/validation"
)

const httpTimeout = 15 * time.Second

var commands = map[string]func(ctx context.Context, args []string) error{
	"prompt": runPrompt,
	"serve":  runServe,
	"check":  runCheck,
	"fields": runFields,
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> -schema <path|url> [flags]\n\n", name)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  prompt   fill the form in the terminal and print the accepted values")
	fmt.Fprintln(os.Stderr, "  serve    serve the form over HTTP and websocket")
	fmt.Fprintln(os.Stderr, "  check    validate JSON value files against the schema")
	fmt.Fprintln(os.Stderr, "  fields   list the fields the schema declares")
}

// schemaFlags are shared by every command.
type schemaFlags struct {
	schema    string
	kind      string
	operation string
	config    string
}

func (f *schemaFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.schema, "schema", "", "schema document path or URL (rules, OpenAPI or JSON Schema)")
	fs.StringVar(&f.kind, "kind", "auto", "schema kind: auto, rules, openapi or jsonschema")
	fs.StringVar(&f.operation, "operation", "", "OpenAPI operation ID (optional when the document has one form)")
	fs.StringVar(&f.config, "config", "", "configuration file")
}

// environment is what every command needs after flag parsing.
type environment struct {
	cfg    config.Config
	logger *slog.Logger
	schema validation.Schema
}

func (f *schemaFlags) load(ctx context.Context) (environment, error) {
	cfg, err := config.LoadFile(f.config)
	if err != nil {
		return environment{}, err
	}
	logger := cfg.Logger(os.Stderr)

	kind, err := formbind.ParseKind(f.kind)
	if err != nil {
		return environment{}, err
	}
	src, err := source.Parse(f.schema)
	if err != nil {
		return environment{}, fmt.Errorf("-schema: %w", err)
	}

	loader := source.NewLoader(source.WithHTTPFallback(httpTimeout))
	schema, err := formbind.LoadSchema(ctx, loader, formbind.Request{
		Source:      src,
		Kind:        kind,
		OperationID: f.operation,
	})
	if err != nil {
		return environment{}, err
	}
	logger.Debug("schema loaded",
		slog.String("source", src.Location()),
		slog.Int("fields", len(formbind.Fields(schema))),
	)
	return environment{cfg: cfg, logger: logger, schema: schema}, nil
}
