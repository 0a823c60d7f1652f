package http

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/cors"

	applog "budgetsip/internal/log"
	"budgetsip/internal/middleware/security"
	"budgetsip/internal/middleware/trace"
	"budgetsip/internal/services"
	appweb "budgetsip/web"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services the handlers delegate to.
type Services struct {
	Expenses *services.ExpenseService
	Plans    *services.PlanService
	Holdings *services.HoldingService
	Summary  *services.SummaryService
	Health   Pinger
}

// Options tunes the server. Zero values fall back to sensible defaults.
type Options struct {
	AllowedOrigins []string
	Logger         *applog.Logger
	// Now supplies the clock used for default dates. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	svc    Services
	logger *applog.Logger
	now    func() time.Time
	tracer *trace.Middleware
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		svc:    svc,
		logger: opts.Logger.WithComponent(applog.ComponentHTTP),
		now:    opts.Now,
	}
	s.tracer = trace.NewMiddleware(opts.Logger, extractClientIP)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/sips", s.handleCreatePlan)
	mux.HandleFunc("GET /api/sips", s.handleListPlans)
	mux.HandleFunc("GET /api/sips/{id}", s.handleGetPlan)
	mux.HandleFunc("PUT /api/sips/{id}", s.handleUpdatePlan)
	mux.HandleFunc("DELETE /api/sips/{id}", s.handleDeletePlan)

	mux.HandleFunc("POST /api/stocks", s.handleCreateHolding)
	mux.HandleFunc("GET /api/stocks", s.handleListHoldings)
	mux.HandleFunc("GET /api/stocks/{id}", s.handleGetHolding)
	mux.HandleFunc("PUT /api/stocks/{id}", s.handleUpdateHolding)
	mux.HandleFunc("DELETE /api/stocks/{id}", s.handleDeleteHolding)

	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("POST /api/budget", s.handleSetBudget)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// Static front-end (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("GET /", security.StaticAssetMiddleware(3600)(http.FileServerFS(sub)))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", trace.RequestIDHeader},
		ExposedHeaders: []string{trace.RequestIDHeader},
		MaxAge:         600,
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(c.Handler(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Metrics returns request counters collected by the tracing middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

