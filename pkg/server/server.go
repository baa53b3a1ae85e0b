package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/render/html"
	"github.com/goliatone/go-formbind/pkg/validation"
)

//go:embed assets/index.html
var assets embed.FS

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithFields sets the fields mounted for every session. Without it the
// schema's own description is used when it offers one.
func WithFields(fields []field.Info) Option {
	return func(s *Server) {
		s.fields = append([]field.Info(nil), fields...)
	}
}

// WithFormOptions forwards options to every form the server builds.
func WithFormOptions(options ...form.Option) Option {
	return func(s *Server) {
		s.formOptions = append(s.formOptions, options...)
	}
}

// WithSuccess sets the callback run for accepted submissions. Without it the
// accepted values are echoed back.
func WithSuccess(fn form.SuccessFunc) Option {
	return func(s *Server) {
		s.onSuccess = fn
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTMLRenderer overrides the renderer used for error fragments.
func WithHTMLRenderer(renderer *html.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithOriginPatterns allows cross origin websocket handshakes from hosts
// matching patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.originPatterns = append(s.originPatterns, patterns...)
	}
}

// Server exposes a schema over HTTP. Every websocket connection owns one form
// instance; POST /submit validates a body without keeping state.
type Server struct {
	schema         validation.Schema
	fields         []field.Info
	formOptions    []form.Option
	onSuccess      form.SuccessFunc
	logger         *slog.Logger
	html           *html.Renderer
	originPatterns []string
	mux            *http.ServeMux
}

// New builds a server for schema. The schema is checked once so a misused
// schema fails here rather than on the first connection.
func New(schema validation.Schema, options ...Option) (*Server, error) {
	s := &Server{
		schema: schema,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	trial, err := form.New(schema, s.formOptions...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	_ = trial.Close()

	if s.fields == nil {
		if describer, ok := schema.(field.Describer); ok {
			s.fields = describer.Describe()
		}
	}
	if s.html == nil {
		labels := make(map[string]string, len(s.fields))
		for _, info := range s.fields {
			labels[info.Name] = info.Title()
		}
		renderer, err := html.New(html.WithLabels(labels))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.html = renderer
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /fields", s.handleFields)
	s.mux.HandleFunc("GET /ws", s.handleSession)
	s.mux.HandleFunc("POST /submit", s.handleSubmit)
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.fieldFrames())
}

func (s *Server) fieldFrames() []FieldFrame {
	out := make([]FieldFrame, 0, len(s.fields))
	for _, info := range s.fields {
		out = append(out, FieldFrame{
			Name:     info.Name,
			Label:    info.Title(),
			Secret:   info.Secret,
			Required: info.Required,
		})
	}
	return out
}

func (s *Server) fieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for _, info := range s.fields {
		names = append(names, info.Name)
	}
	return names
}

// newForm builds a form with the configured fields registered.
func (s *Server) newForm(options ...form.Option) (*form.Form, error) {
	f, err := form.New(s.schema, append(append([]form.Option(nil), s.formOptions...), options...)...)
	if err != nil {
		return nil, err
	}
	for _, info := range s.fields {
		if _, err := f.Register(info.Name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}
