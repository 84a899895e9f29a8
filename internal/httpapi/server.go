package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventdriver/internal/driver"
	"eventdriver/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *driver.Driver satisfies it.
type Service interface {
	EmitEventA(ctx context.Context, fieldA1 int64, fieldA2 bool) error
	EmitEventB(ctx context.Context, fieldB1 float64, fieldB2 int32) error
	Clients() []string
}

// serialized guards a Service that is not safe for concurrent use; only one
// emit runs at a time.
type serialized struct {
	mu  sync.Mutex
	svc Service
}

func (s *serialized) emit(fn func(Service) error) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	emitWait.Observe(time.Since(start).Seconds())
	return fn(s.svc)
}

func NewMux(svc Service) http.Handler {
	guard := &serialized{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		origins := corsAllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/events/a", func(w http.ResponseWriter, r *http.Request) {
		var req types.EmitARequest
		if !decodeJSON(w, r, &req) {
			return
		}
		handleEmit(w, r, guard, types.KindA, func(ctx context.Context, s Service) error {
			return s.EmitEventA(ctx, req.FieldA1, req.FieldA2)
		})
	})

	r.Post("/events/b", func(w http.ResponseWriter, r *http.Request) {
		var req types.EmitBRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		handleEmit(w, r, guard, types.KindB, func(ctx context.Context, s Service) error {
			return s.EmitEventB(ctx, req.FieldB1, req.FieldB2)
		})
	})

	r.Get("/clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ClientsResponse{Clients: svc.Clients()})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// decodeJSON enforces the content type and body limit; it writes the error
// response itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func handleEmit(w http.ResponseWriter, r *http.Request, guard *serialized, kind types.Kind, fn func(context.Context, Service) error) {
	start := time.Now()
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	err := guard.emit(func(s Service) error { return fn(ctx, s) })
	clients := len(guard.svc.Clients())
	z := zlog.Info()
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z = z.Str("kind", string(kind)).Dur("dur", time.Since(start))
	if err == nil {
		z.Int("status", http.StatusOK).Msg("emit")
		writeJSON(w, http.StatusOK, types.EmitResponse{Kind: kind, Clients: clients})
		return
	}
	// Client went away or the server is shutting down: nothing to report to.
	if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
		z.Err(err).Msg("emit canceled")
		return
	}
	status := statusFor(err)
	z.Int("status", status).Err(err).Msg("emit")
	var de *driver.DispatchError
	if errors.As(err, &de) {
		resp := types.EmitResponse{Kind: kind, Clients: clients}
		for _, f := range de.Failures {
			resp.Failures = append(resp.Failures, types.ClientFailure{Index: f.Index, Client: f.Client, Error: f.Err.Error()})
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSONError(w, status, err.Error())
}
