package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/goliatone/go-formbind/pkg/errorstore"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/validation"
)

const outboundBuffer = 32

// session is one live form bound to one websocket. Closing the socket
// unmounts the form.
type session struct {
	server *Server
	conn   *websocket.Conn
	form   *form.Form
	out    chan ServerFrame
	done   <-chan struct{}
	logger *slog.Logger
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.originPatterns})
	if err != nil {
		s.logger.Warn("websocket handshake failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	g, ctx := errgroup.WithContext(r.Context())
	sess := &session{
		server: s,
		conn:   conn,
		out:    make(chan ServerFrame, outboundBuffer),
		done:   ctx.Done(),
		logger: s.logger.With(slog.String("remote", r.RemoteAddr)),
	}

	f, err := s.newForm(form.WithStatusHook(sess.status))
	if err != nil {
		s.logger.Error("session form", slog.String("error", err.Error()))
		_ = conn.Close(websocket.StatusInternalError, "form unavailable")
		return
	}
	sess.form = f
	defer f.Close()
	unsubscribe := f.Subscribe(sess.publish)
	defer unsubscribe()

	sess.logger.Debug("session opened")
	sess.send(ServerFrame{Type: FrameFields, Fields: s.fieldFrames()})

	g.Go(func() error { return sess.writeLoop(ctx) })
	g.Go(func() error { return sess.readLoop(ctx) })
	err = g.Wait()

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		sess.logger.Debug("session closed")
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			sess.logger.Warn("session ended", slog.String("error", err.Error()))
		}
	}
}

func (s *session) send(frame ServerFrame) {
	select {
	case s.out <- frame:
	case <-s.done:
	}
}

func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-s.out:
			if err := wsjson.Write(ctx, s.conn, frame); err != nil {
				return err
			}
		}
	}
}

func (s *session) readLoop(ctx context.Context) error {
	for {
		var frame ClientFrame
		if err := wsjson.Read(ctx, s.conn, &frame); err != nil {
			return err
		}
		s.dispatch(ctx, frame)
	}
}

func (s *session) dispatch(ctx context.Context, frame ClientFrame) {
	switch frame.Type {
	case FrameInput:
		binding, ok := s.form.Binding(frame.Field)
		if !ok {
			if len(s.server.fields) > 0 {
				s.fail(frame.Field, "unknown field")
				return
			}
			var err error
			if binding, err = s.form.Register(frame.Field); err != nil {
				s.fail(frame.Field, err.Error())
				return
			}
		}
		if err := binding.Input(frame.Value); err != nil {
			s.fail(frame.Field, err.Error())
		}
	case FrameValidate:
		if _, err := s.form.ValidateNow(ctx, frame.Field); err != nil {
			s.fail(frame.Field, err.Error())
		}
	case FrameSubmit:
		s.submit(ctx)
	default:
		s.fail("", "unknown frame type "+frame.Type)
	}
}

func (s *session) submit(ctx context.Context) {
	result, err := s.form.Submit(ctx, s.server.onSuccess)
	switch {
	case err != nil:
		s.logger.Warn("submit failed",
			slog.Bool("accepted", result.Submitted),
			slog.String("error", err.Error()),
		)
		s.fail("", "submission failed")
	case result.Submitted:
		s.send(ServerFrame{Type: FrameSubmitted, Values: result.Values.Values()})
	default:
		errs := failureMap(result.Failures)
		summary, renderErr := s.server.html.Summary(errs, s.server.fieldNames()...)
		if renderErr != nil {
			s.logger.Warn("render summary", slog.String("error", renderErr.Error()))
		}
		s.send(ServerFrame{Type: FrameRejected, Errors: errs, HTML: summary})
	}
}

func (s *session) fail(name, message string) {
	s.send(ServerFrame{Type: FrameError, Field: name, Message: message})
}

// publish forwards every published store state.
func (s *session) publish(state errorstore.State) {
	summary, err := s.server.html.Summary(state.Errors, s.server.fieldNames()...)
	if err != nil {
		s.logger.Warn("render summary", slog.String("error", err.Error()))
	}
	s.send(ServerFrame{
		Type:    FrameErrors,
		Errors:  state.Errors,
		Version: state.Version,
		HTML:    summary,
	})
}

func (s *session) status(name string, status form.Status) {
	s.send(ServerFrame{Type: FrameStatus, Field: name, Status: status.String()})
}

func failureMap(failures []validation.Failure) map[string]string {
	out := make(map[string]string, len(failures))
	for _, failure := range failures {
		out[failure.Path] = failure.Message
	}
	return out
}
