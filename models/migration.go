package models

import (
	"log"

	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) {
	err := db.AutoMigrate(
		&Agent{}, &AgentBankAccount{}, &AgentPhone{},
		&Operator{},
		&AgentSession{},
		&Transaction{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
