// Package handler is the serverless entry point. It builds one chi router
// over all API endpoints and reuses it across warm invocations.
package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"worksphere-backend/pkg/authz"
	"worksphere-backend/pkg/config"
	"worksphere-backend/pkg/database"
	"worksphere-backend/pkg/handlers"
	custommiddleware "worksphere-backend/pkg/middleware"
	"worksphere-backend/pkg/utils"
)

var (
	routerOnce sync.Once
	router     *chi.Mux
	routerErr  error
)

// Handler is the function entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	routerOnce.Do(func() {
		cfg := config.GetCached()
		if err := cfg.Validate(); err != nil {
			routerErr = err
			return
		}
		db, err := database.NewDatabase(database.DatabaseConfig{
			UseLocalDB:  cfg.UseLocalDB,
			PostgresDSN: cfg.PostgresDSN,
			Debug:       cfg.Debug,
		})
		if err != nil {
			routerErr = err
			return
		}
		router = NewRouter(cfg, db, newLogger(cfg))
	})

	if routerErr != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+routerErr.Error())
		return
	}
	router.ServeHTTP(w, r)
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// NewRouter assembles middleware and routes over the given database.
func NewRouter(cfg *config.Config, db database.DatabaseInterface, log *logrus.Logger) *chi.Mux {
	authzSvc := authz.NewService(db, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.RequestLogger(log))
	r.Use(custommiddleware.Recovery(cfg, log))
	r.Use(custommiddleware.CORS(cfg))
	r.Use(chimiddleware.Timeout(25 * time.Second))
	r.Use(chimiddleware.Compress(5))

	authHandler := handlers.NewAuthHandler(cfg, db)
	orgHandler := handlers.NewOrganizationHandler(cfg, db, authzSvc)
	projectHandler := handlers.NewProjectHandler(cfg, db, authzSvc)
	boardHandler := handlers.NewBoardHandler(cfg, db, authzSvc)
	columnHandler := handlers.NewColumnHandler(cfg, db, authzSvc)
	cardHandler := handlers.NewCardHandler(cfg, db, authzSvc)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		if err := db.HealthCheck(req.Context()); err != nil {
			utils.WriteErrorResponseWithCode(w, http.StatusServiceUnavailable,
				"UNHEALTHY", "Database is unreachable", "")
			return
		}
		utils.WriteSuccessResponse(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.AuthMiddleware(cfg))

			r.Get("/me", authHandler.Me)

			r.Route("/orgs", func(r chi.Router) {
				r.Get("/", orgHandler.List)
				r.Post("/", orgHandler.Create)
				r.Route("/{orgID}", func(r chi.Router) {
					r.Get("/", orgHandler.Get)
					r.Put("/", orgHandler.Update)
					r.Delete("/", orgHandler.Delete)
					r.Get("/members", orgHandler.ListMembers)
					r.Post("/invite", orgHandler.InviteMember)
					r.Delete("/members/{userID}", orgHandler.RemoveMember)
					r.Put("/members/{userID}/role", orgHandler.ChangeRole)
					r.Get("/projects", projectHandler.List)
					r.Post("/projects", projectHandler.Create)
				})
			})

			r.Route("/invitations", func(r chi.Router) {
				r.Get("/my", orgHandler.MyInvitations)
				r.Post("/accept", orgHandler.AcceptInvitation)
			})

			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
				r.Get("/boards", boardHandler.List)
				r.Post("/boards", boardHandler.Create)
			})

			r.Route("/boards/{boardID}", func(r chi.Router) {
				r.Get("/", boardHandler.Get)
				r.Put("/", boardHandler.Update)
				r.Delete("/", boardHandler.Delete)
				r.Get("/columns", columnHandler.List)
				r.Post("/columns", columnHandler.Create)
			})

			r.Route("/columns/{columnID}", func(r chi.Router) {
				r.Put("/", columnHandler.Update)
				r.Delete("/", columnHandler.Delete)
				r.Get("/cards", cardHandler.List)
				r.Post("/cards", cardHandler.Create)
			})

			r.Route("/cards/{cardID}", func(r chi.Router) {
				r.Get("/", cardHandler.Get)
				r.Put("/", cardHandler.Update)
				r.Delete("/", cardHandler.Delete)
				r.Put("/move", cardHandler.Move)
				r.Post("/checklist", cardHandler.AddChecklistItem)
				r.Put("/checklist/{itemID}", cardHandler.UpdateChecklistItem)
				r.Delete("/checklist/{itemID}", cardHandler.DeleteChecklistItem)
			})
		})
	})

	return r
}
