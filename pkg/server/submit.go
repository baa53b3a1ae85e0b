package server

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// handleSubmit validates one body on a throwaway form. A blocked submission
// answers 422 with the error summary as HTML, or as JSON when the client
// asks for it.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	values, err := decodeBody(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := s.newForm()
	if err != nil {
		s.logger.Error("submit form", slog.String("error", err.Error()))
		http.Error(w, "form unavailable", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	for name, value := range values {
		binding, ok := f.Binding(name)
		if !ok {
			if len(s.fields) > 0 {
				continue
			}
			if binding, err = f.Register(name); err != nil {
				continue
			}
		}
		if err := binding.Input(value); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	result, err := f.Submit(r.Context(), s.onSuccess)
	switch {
	case err != nil:
		s.logger.Error("submit failed",
			slog.Bool("accepted", result.Submitted),
			slog.String("error", err.Error()),
		)
		http.Error(w, "submission failed", http.StatusInternalServerError)
	case !result.Submitted:
		errs := failureMap(result.Failures)
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
			return
		}
		summary, err := s.html.Summary(errs, s.fieldNames()...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, summary)
	case s.onSuccess != nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"values": result.Values.Values()})
	}
}

// decodeBody reads a JSON object or a urlencoded form into flat values.
func decodeBody(r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		values := make(map[string]string, len(raw))
		for name, value := range raw {
			switch v := value.(type) {
			case nil:
				values[name] = ""
			case string:
				values[name] = v
			default:
				values[name] = fmt.Sprint(v)
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form body: %w", err)
	}
	values := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		values[name] = r.PostForm.Get(name)
	}
	return values, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
