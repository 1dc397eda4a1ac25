package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/TillSync_Go/internal/handler"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/shift"
	"github.com/osse101/TillSync_Go/internal/sse"
)

// Config is the listener and identity of the local API
type Config struct {
	BindAddress string
	Port        int
	APIKey      string
	Version     string
	TerminalID  string
	RemoteMode  string
}

// Deps are the services the local API exposes to the till UI
type Deps struct {
	Local        handler.Pinger
	Shifts       shift.Service
	Mutations    handler.MutationApplier
	Engine       handler.SyncEngine
	Queue        handler.PendingLister
	Connectivity handler.ConnectivitySetter
	Sessions     handler.SessionSetter
	Hub          *sse.Hub
}

type Server struct {
	httpServer *http.Server
}

// NewRouter builds the local API routes
func NewRouter(cfg Config, d Deps) http.Handler {
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(cfg.APIKey))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(d.Local))
	r.Get("/version", handler.HandleVersion(cfg.Version, cfg.TerminalID, cfg.RemoteMode))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/shifts", func(r chi.Router) {
			r.Post("/start", handler.HandleStartShift(d.Shifts))
			r.Post("/pause", handler.HandlePauseShift(d.Shifts))
			r.Post("/resume", handler.HandleResumeShift(d.Shifts))
			r.Post("/end", handler.HandleEndShift(d.Shifts))
			r.Get("/active", handler.HandleActiveShift(d.Shifts))
		})

		r.Post("/mutations", handler.HandleApplyMutation(d.Mutations))
		r.Post("/sales", handler.HandleRecordSale(d.Mutations))

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", handler.HandleSyncNow(d.Engine))
			r.Get("/status", handler.HandleSyncStatus(d.Engine))
			r.Get("/queue", handler.HandleListQueue(d.Queue))
			r.Get("/conflicts", handler.HandleListConflicts(d.Engine))
			r.Post("/conflicts/{id}/resolve", handler.HandleResolveConflict(d.Engine))
		})

		r.Post("/connectivity", handler.HandleSetConnectivity(d.Connectivity))
		// Static-credential remotes have no user session to renew
		if d.Sessions != nil {
			r.Post("/session/renewed", handler.HandleSessionRenewed(d.Sessions, d.Engine))
		}
		r.Get("/events", sse.Handler(d.Hub))
	})

	return r
}

// NewServer creates a new Server instance
func NewServer(cfg Config, d Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.BindAddress, fmt.Sprint(cfg.Port)),
			Handler:           NewRouter(cfg, d),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps the SSE stream working through the wrapper
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Probes and scrapes would drown the till's log
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	logger.FromContext(ctx).Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
