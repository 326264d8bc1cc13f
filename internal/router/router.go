package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/config"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/handler"
	"github.com/sentra-ppob/api/internal/ledger"
	mw "github.com/sentra-ppob/api/internal/middleware"
	"github.com/sentra-ppob/api/internal/store"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, outlet scoping, and role-based middleware as needed.
func New(cfg *config.Config, repo store.Repository) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",        // Vite dev server
			"https://app.sentra-ppob.com",  // Production back office
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auditLog := audit.NewLog(repo)
	reportSvc := ledger.NewReportService(repo, auditLog)
	custodySvc := ledger.NewCustodyService(repo, auditLog)
	expenseSvc := ledger.NewExpenseService(repo, auditLog)
	verifySvc := ledger.NewVerificationService(repo, auditLog, ledger.RoleAuthorizer{})

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(repo, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Outlet-scoped daily reports (loket, plus owner oversight)
		r.Route("/outlets/{oid}/reports", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleLoket, enum.UserRoleOwner))
			r.Use(mw.RequireOutlet)
			handler.NewReportHandler(reportSvc).RegisterRoutes(r)
		})

		// Cash custody (kasir)
		r.Route("/custody", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleKasir, enum.UserRoleOwner))
			handler.NewCustodyHandler(custodySvc).RegisterRoutes(r)
			r.Route("/expenses", handler.NewExpenseHandler(expenseSvc).RegisterRoutes)
		})

		// Verification and aggregates (finance)
		r.Route("/cashflow", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleFinance, enum.UserRoleOwner))
			handler.NewCashflowHandler(verifySvc).RegisterRoutes(r)
			r.Route("/entries", handler.NewEntryHandler(verifySvc, reportSvc).RegisterRoutes)
		})

		// Audit trail (finance and owner)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleFinance, enum.UserRoleOwner))
			handler.NewActivityHandler(auditLog).RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
