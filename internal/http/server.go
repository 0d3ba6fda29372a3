// Package http serves the chat webhooks, the cron trigger and health probes.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/security"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
)

type (
	// Responder turns a chat message into a reply text.
	Responder interface {
		Respond(ctx context.Context, text string) string
	}

	TelegramSender interface {
		SendMessage(ctx context.Context, chatID, text string) error
	}

	WhatsAppSender interface {
		Send(ctx context.Context, target, text string) error
	}

	DailyRunner interface {
		Run(ctx context.Context, now time.Time) (services.DailyResult, error)
	}
)

// Options wires the server. Nil collaborators disable their routes.
type Options struct {
	Addr   string
	Logger *log.Logger

	TelegramResponder Responder
	Telegram          TelegramSender
	// TelegramSecret, when set, must match X-Telegram-Bot-Api-Secret-Token.
	TelegramSecret string

	WhatsAppResponder Responder
	WhatsApp          WhatsAppSender

	Daily DailyRunner
	// CronSecret, when set, is required as a bearer token or ?token= on /cron.
	CronSecret string
	Now        func() time.Time

	// Ready reports whether the ledger store is reachable.
	Ready func(ctx context.Context) error

	RequestsPerMinute int
}

type Server struct {
	http.Server
	opts         Options
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Component: log.ComponentHTTP})
	}

	s := &Server{
		opts:    opts,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerWindow: opts.RequestsPerMinute}),
		tracer:  trace.NewMiddleware(security.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	webhook := log.ComponentMiddleware(log.ComponentWebhook)
	mux.Handle("/webhook/telegram", webhook(s.limited(http.HandlerFunc(s.handleTelegram))))
	mux.Handle("/webhook/whatsapp", webhook(s.limited(http.HandlerFunc(s.handleWhatsApp))))
	mux.Handle("/cron", log.ComponentMiddleware(log.ComponentScheduler)(http.HandlerFunc(s.handleCron)))

	var h http.Handler = mux
	h = log.Middleware(opts.Logger, trace.FromRequest)(h)
	h = s.tracer.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		// Replies wait on the ledger store and optionally the model.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) limited(next http.Handler) http.Handler {
	return s.limiter.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, security.ClientIP(r), log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Header("Retry-After", "60").Write(w)
	})(next)
}

// Shutdown stops the limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// Metrics exposes request counters for the startup and shutdown logs.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics) {
	return s.tracer.Metrics(), s.limiter.Metrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.opts.Ready(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
