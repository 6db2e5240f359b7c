package suggestion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies; a maximal suggestion is well under it.
const maxBodyBytes = 64 << 10

// ServerOptions configures a Server.
type ServerOptions struct {
	// RateLimit is the number of suggestions accepted per client IP within
	// RateWindow. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	Logger     zerolog.Logger

	// Registry receives the server metrics. Nil creates a private one.
	Registry *prometheus.Registry
}

type serverMetrics struct {
	suggestions *prometheus.CounterVec
	mailLatency prometheus.Histogram
}

// Server is the suggestions HTTP API.
type Server struct {
	router  chi.Router
	mailer  Mailer
	log     zerolog.Logger
	metrics serverMetrics
}

// NewServer creates a Server that forwards accepted suggestions to m.
func NewServer(m Mailer, opts ServerOptions) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	s := &Server{
		mailer: m,
		log:    opts.Logger,
		metrics: serverMetrics{
			suggestions: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "clario_suggestions_total",
				Help: "Suggestions received, by outcome.",
			}, []string{"result"}),
			mailLatency: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "clario_suggestion_mail_seconds",
				Help:    "Time spent delivering a suggestion by mail.",
				Buckets: prometheus.DefBuckets,
			}),
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 && opts.RateWindow > 0 {
			r.Use(httprate.Limit(opts.RateLimit, opts.RateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					s.metrics.suggestions.WithLabelValues("rate_limited").Inc()
					writeJSON(w, http.StatusTooManyRequests, map[string]any{"detail": "Too many suggestions, try again later"})
				}),
			))
		}
		r.Post("/suggestions", s.handleSuggestion)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("suggestions API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	var in Suggestion
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		s.metrics.suggestions.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "request body must be a JSON suggestion"})
		return
	}

	in = in.Normalize()
	if err := in.Validate(); err != nil {
		s.metrics.suggestions.WithLabelValues("invalid").Inc()
		var ve *ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid suggestion", "errors": ve.Fields})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
		return
	}

	start := time.Now()
	err := s.mailer.Send(r.Context(), in)
	s.metrics.mailLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.suggestions.WithLabelValues("mail_error").Inc()
		s.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Str("category", in.Category).Msg("send suggestion")
		detail := "Failed to send email"
		if errors.Is(err, ErrCredentialsMissing) {
			detail = ErrCredentialsMissing.Error()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": detail})
		return
	}

	s.metrics.suggestions.WithLabelValues("ok").Inc()
	s.log.Info().Str("category", in.Category).Bool("has_email", in.Email != "").Msg("suggestion delivered")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
