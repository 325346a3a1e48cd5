package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/hub"
	"github.com/DoyleJ11/rink-sequences/internal/ws"
)

const requestTimeout = 30 * time.Second

type Options struct {
	History     History
	Logger      *zap.Logger
	CORSOrigins []string
}

func SetupRoutes(h *hub.Hub, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handlers := NewHandlers(h, opts.History, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger.Named("access")))
	r.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, ws.Options{OriginPatterns: originHosts(opts.CORSOrigins), Logger: logger}))

	// Websocket connections outlive the request timeout.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/", handlers.Dashboard)
		r.Post("/sessions", handlers.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetSession)
			r.Post("/actions", handlers.PostAction)
			r.Get("/rink.svg", handlers.RinkSVG)
			r.Get("/history", handlers.History)
		})
	})
	return r
}

// originHosts turns CORS origins into the host patterns the websocket
// handshake checks against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}
