package main

import (
	"log"

	"lastochka/messenger/internal/app"
)

// @title Messenger API
// @version 1.0
// @description Real-time message delivery core

// @host localhost:8080
// @BasePath /api

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
