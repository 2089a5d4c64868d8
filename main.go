package main

import (
	"log"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/ingetuto/ingetuto-api/cmd/app"
)

// @title        IngeTUTO API
// @version      1.0
// @description  Peer tutoring scheduling: tutor applications, availability calendars and session bookings.
// @BasePath     /api
//
// @contact.name  Bienestar Universitario
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	if err := app.Start(); err != nil {
		log.Fatalf("ingetuto-api: %v", err)
	}
}
