package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formbind/pkg/form"
)

type violation struct {
	file    string
	field   string
	message string
}

func runCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var common schemaFlags
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: formbind check -schema <path> [values.json...]\n\nValidate JSON objects of form values against the schema.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("no value files given")
	}

	env, err := common.load(ctx)
	if err != nil {
		return err
	}

	var violations []violation
	for _, path := range paths {
		found, err := checkFile(ctx, env, path)
		if err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
		violations = append(violations, found...)
	}
	if len(violations) == 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) valid\n", len(paths))
		return nil
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return violations[i].field < violations[j].field
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, displayField(v.field), v.message)
	}
	return fmt.Errorf("%d violation(s)", len(violations))
}

func checkFile(ctx context.Context, env environment, path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}

	f, err := form.New(env.schema, env.cfg.FormOptions(env.logger)...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for name, value := range values {
		binding, err := f.Register(name)
		if err != nil {
			return nil, err
		}
		text := ""
		if value != nil {
			text = fmt.Sprint(value)
		}
		if err := binding.Input(text); err != nil {
			return nil, err
		}
	}

	result, err := f.Submit(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]violation, 0, len(result.Failures))
	for _, failure := range result.Failures {
		out = append(out, violation{file: path, field: failure.Path, message: failure.Message})
	}
	return out, nil
}

func displayField(name string) string {
	if name == "" {
		return "(form)"
	}
	return name
}
