package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/laconfrerie/confrerie-api/cmd/app"
)

// @title           La Confrerie API
// @version         1.0
// @description     Points, parties and posts of La Confrerie.
//
// @contact.name   La Confrerie
//
// @BasePath  /api/v1
//
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name confrerie_session
// @description Server-side session bound to the csrf token.
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
