// Package main is the gpustats command: it refreshes GPU prices, performance
// scores and specs in the catalog from configured web sources.
package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	Execute()
}
