package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/apotekcare/apotek-backend/internal/modules/auth"
	"github.com/apotekcare/apotek-backend/internal/modules/medicine"
	"github.com/apotekcare/apotek-backend/internal/modules/order"
	"github.com/apotekcare/apotek-backend/internal/modules/user"
	"github.com/apotekcare/apotek-backend/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	log := logging.New()

	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file loaded", "error", err)
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to database")

	accessSecret := secret("JWT_SECRET", "dev-access-secret")
	refreshSecret := secret("REFRESH_SECRET", "dev-refresh-secret")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	authMW := auth.NewMiddleware(accessSecret)

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router, authMW.RequireAuth, authMW.RequireAdmin)

	authService := auth.NewService(userRepo, accessSecret, refreshSecret)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	medicineRepo := medicine.NewPostgresRepository(db)
	medicineService := medicine.NewService(medicineRepo)
	medicine.NewHandler(medicineService).RegisterRoutes(router, authMW.RequireAuth, authMW.RequireAdmin)

	// ── Order Management ────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo)
	order.NewHandler(orderService, log).RegisterRoutes(router, authMW.RequireAuth, authMW.RequireAdmin)

	// ── Health ──────────────────────────────────────────────
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Info("apotek API server starting", "port", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func secret(envKey, fallback string) []byte {
	if v := os.Getenv(envKey); v != "" {
		return []byte(v)
	}
	return []byte(fallback)
}
