package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/flashnotes/backend/internal/auth"
	"github.com/flashnotes/backend/internal/cards"
	"github.com/flashnotes/backend/internal/database"
	"github.com/flashnotes/backend/internal/extractor"
	"github.com/flashnotes/backend/internal/generator"
	"github.com/flashnotes/backend/internal/session"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize handlers
	store := cards.NewStore(database.NewKV(db))
	ext := extractor.New(nil)

	authHandler := auth.NewHandler(db)
	cardHandler := cards.NewHandler(store, ext)
	genHandler := generator.NewHandler(generator.NewGenerator(), store)
	sessionHandler := session.NewHandler(session.NewService(store))

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/topics/{topicID}/extract", cardHandler.Extract).Methods("POST")

	protected.HandleFunc("/topics/{topicID}/cards", cardHandler.List).Methods("GET")
	protected.HandleFunc("/topics/{topicID}/cards/accept", cardHandler.Accept).Methods("POST")
	protected.HandleFunc("/topics/{topicID}/cards/due", cardHandler.Due).Methods("GET")
	protected.HandleFunc("/topics/{topicID}/cards/{cardID}", cardHandler.Delete).Methods("DELETE")

	protected.HandleFunc("/topics/{topicID}/generate", genHandler.Generate).Methods("POST")

	protected.HandleFunc("/topics/{topicID}/export", cardHandler.Export).Methods("GET")
	protected.HandleFunc("/topics/{topicID}/import", cardHandler.Import).Methods("POST")

	protected.HandleFunc("/scheduler/config", cardHandler.GetConfig).Methods("GET")
	protected.HandleFunc("/scheduler/config", cardHandler.UpdateConfig).Methods("PUT")

	protected.HandleFunc("/topics/{topicID}/session", sessionHandler.Start).Methods("POST")
	protected.HandleFunc("/topics/{topicID}/session", sessionHandler.Current).Methods("GET")
	protected.HandleFunc("/topics/{topicID}/session/reveal", sessionHandler.Reveal).Methods("POST")
	protected.HandleFunc("/topics/{topicID}/session/skip", sessionHandler.Skip).Methods("POST")
	protected.HandleFunc("/topics/{topicID}/session/score", sessionHandler.Score).Methods("POST")
	protected.HandleFunc("/topics/{topicID}/session/end", sessionHandler.End).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
