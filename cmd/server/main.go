package main

import (
	"log"
	"net/http"

	"geocollect/internal/config"
	"geocollect/internal/controllers"
	"geocollect/internal/logger"
	"geocollect/internal/mailer"
	"geocollect/internal/middleware"
	"geocollect/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Queue outbound mail so deliveries never block a request
	queue := mailer.NewQueue(mailer.NewFromEnv())
	defer queue.Close()
	controllers.Mail = queue

	// Setup Gin router (recovery and request logging registered inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := config.GetEnv("PORT", "5050")
	log.Printf("Server running at :%s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
