package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	formbind "github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/renderers/tui"
)

func runPrompt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	var common schemaFlags
	common.register(fs)
	output := fs.String("output", "", "output format: json, form or pretty (defaults to the config)")
	out := fs.String("out", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := common.load(ctx)
	if err != nil {
		return err
	}

	format := *output
	if format == "" {
		format = env.cfg.TUI.Output
	}
	outputFormat, err := tui.ParseOutputFormat(format)
	if err != nil {
		return err
	}

	f, err := form.New(env.schema, env.cfg.FormOptions(env.logger)...)
	if err != nil {
		return err
	}
	defer f.Close()

	renderer, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)),
		tui.WithOutputFormat(outputFormat),
		tui.WithMaxAttempts(env.cfg.TUI.MaxAttempts),
	)
	if err != nil {
		return err
	}

	payload, err := renderer.Run(ctx, f, formbind.Fields(env.schema))
	if err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, payload, 0o600); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Values written to %s\n", *out)
		return nil
	}
	fmt.Println(string(payload))
	return nil
}
