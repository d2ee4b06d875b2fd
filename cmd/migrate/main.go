package main

import (
	"log"

	"bitbucket.org/mmdatafocus/shifts_backend/config"
	"bitbucket.org/mmdatafocus/shifts_backend/models"
)

// One-shot schema migration. Run before first deploy and after model
// changes:
//
//	go run ./cmd/migrate
func main() {
	config.ConnectDatabaseWithRetry()
	models.MigrateTable(config.GetDB())
	log.Println("migration complete")
}
