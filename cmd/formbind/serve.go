package main

import (
	"context"
	"flag"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/server"
)

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common schemaFlags
	common.register(fs)
	addr := fs.String("addr", "", "listen address (defaults to the config)")
	origins := fs.String("origins", "", "comma separated websocket origin patterns")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := common.load(ctx)
	if err != nil {
		return err
	}

	options := []server.Option{
		server.WithLogger(env.logger),
		server.WithFormOptions(env.cfg.FormOptions(env.logger)...),
		server.WithSuccess(func(_ context.Context, values field.Snapshot) error {
			env.logger.Info("submission accepted", slog.Any("fields", values.Names()))
			return nil
		}),
	}
	if *origins != "" {
		options = append(options, server.WithOriginPatterns(strings.Split(*origins, ",")...))
	}

	srv, err := server.New(env.schema, options...)
	if err != nil {
		return err
	}

	listen := *addr
	if listen == "" {
		listen = env.cfg.Server.Addr
	}
	return srv.ListenAndServe(ctx, listen)
}
