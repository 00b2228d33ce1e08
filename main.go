package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/budgetfolio/backend/src/config"
	"github.com/username/budgetfolio/backend/src/database"
	"github.com/username/budgetfolio/backend/src/handlers"
	"github.com/username/budgetfolio/backend/src/logger"
	"github.com/username/budgetfolio/backend/src/security"
	"github.com/username/budgetfolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.FrontendBaseURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Budgetfolio backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	importStore := services.NewSQLImportStore(database.DB)
	importService := services.NewImportService(importStore, services.DefaultKeywordTable())
	reportService := services.NewReportService(database.DB, reportCache)

	userHandler := handlers.NewUserHandler(authService)
	uploadHandler := handlers.NewUploadHandler(importService, reportService)
	categoryHandler := handlers.NewCategoryHandler(reportService)
	txHandler := handlers.NewTransactionHandler(reportService)
	investmentHandler := handlers.NewInvestmentHandler()
	heritageHandler := handlers.NewHeritageHandler()
	retirementHandler := handlers.NewRetirementHandler()
	reportHandler := handlers.NewReportHandler(reportService)
	rulesHandler := handlers.NewRulesHandler()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Budgetfolio Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/login", userHandler.LoginUserHandler)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Post("/upload-bank-statement", uploadHandler.HandleUploadBankStatement)

			r.Get("/categories", categoryHandler.HandleListCategories)
			r.Post("/categories", categoryHandler.HandleCreateCategory)
			r.Get("/categories/{id}", categoryHandler.HandleGetCategory)
			r.Put("/categories/{id}", categoryHandler.HandleUpdateCategory)
			r.Delete("/categories/{id}", categoryHandler.HandleDeleteCategory)

			r.Get("/transactions", txHandler.HandleListTransactions)
			r.Post("/transactions", txHandler.HandleCreateTransaction)
			r.Get("/transactions/{id}", txHandler.HandleGetTransaction)
			r.Put("/transactions/{id}", txHandler.HandleUpdateTransaction)
			r.Delete("/transactions/{id}", txHandler.HandleDeleteTransaction)

			r.Get("/investments", investmentHandler.HandleListInvestments)
			r.Post("/investments", investmentHandler.HandleCreateInvestment)
			r.Get("/investments/{id}", investmentHandler.HandleGetInvestment)
			r.Put("/investments/{id}", investmentHandler.HandleUpdateInvestment)
			r.Delete("/investments/{id}", investmentHandler.HandleDeleteInvestment)

			r.Get("/heritages", heritageHandler.HandleListHeritages)
			r.Post("/heritages", heritageHandler.HandleCreateHeritage)
			r.Get("/heritages/{id}", heritageHandler.HandleGetHeritage)
			r.Put("/heritages/{id}", heritageHandler.HandleUpdateHeritage)
			r.Delete("/heritages/{id}", heritageHandler.HandleDeleteHeritage)

			r.Get("/retirement-accounts", retirementHandler.HandleListRetirementAccounts)
			r.Post("/retirement-accounts", retirementHandler.HandleCreateRetirementAccount)
			r.Get("/retirement-accounts/{id}", retirementHandler.HandleGetRetirementAccount)
			r.Put("/retirement-accounts/{id}", retirementHandler.HandleUpdateRetirementAccount)
			r.Delete("/retirement-accounts/{id}", retirementHandler.HandleDeleteRetirementAccount)

			r.Get("/balance/{period}", reportHandler.HandleGetBalance)
			r.Get("/category-spending/{period}", reportHandler.HandleGetCategorySpending)

			r.Get("/reclassification-rules", rulesHandler.HandleListReclassificationRules)
			r.Post("/reclassification-rules", rulesHandler.HandleCreateReclassificationRule)
			r.Get("/reclassification-rules/{id}", rulesHandler.HandleGetReclassificationRule)
			r.Put("/reclassification-rules/{id}", rulesHandler.HandleUpdateReclassificationRule)
			r.Delete("/reclassification-rules/{id}", rulesHandler.HandleDeleteReclassificationRule)

			r.Get("/category-deletion-rules", rulesHandler.HandleListCategoryDeletionRules)
			r.Post("/category-deletion-rules", rulesHandler.HandleCreateCategoryDeletionRule)
			r.Get("/category-deletion-rules/{id}", rulesHandler.HandleGetCategoryDeletionRule)
			r.Put("/category-deletion-rules/{id}", rulesHandler.HandleUpdateCategoryDeletionRule)
			r.Delete("/category-deletion-rules/{id}", rulesHandler.HandleDeleteCategoryDeletionRule)

			r.Post("/bulk-reclassify-transactions", txHandler.HandleBulkReclassifyTransactions)
			r.Post("/bulk-delete-transactions", txHandler.HandleBulkDeleteTransactions)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
