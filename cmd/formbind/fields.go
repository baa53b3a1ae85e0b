package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	formbind "github.com/goliatone/go-formbind"
)

func runFields(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	var common schemaFlags
	common.register(fs)
	asJSON := fs.Bool("json", false, "print the field list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := common.load(ctx)
	if err != nil {
		return err
	}
	fields := formbind.Fields(env.schema)

	if *asJSON {
		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(fields) == 0 {
		fmt.Fprintln(os.Stderr, "schema does not list its fields")
		return nil
	}
	for _, info := range fields {
		var flags []string
		if info.Required {
			flags = append(flags, "required")
		}
		if info.Secret {
			flags = append(flags, "secret")
		}
		flags = append(flags, info.Rules...)
		fmt.Printf("%-20s %-24s %s\n", info.Name, info.Title(), strings.Join(flags, ","))
	}
	return nil
}
