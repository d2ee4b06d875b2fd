package models

import (
	"time"
)

// Agent is a payee identified by full name. Upserted by natural key during
// commit, never duplicated across ingests.
type Agent struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FullName  string    `gorm:"size:255;not null;uniqueIndex" json:"full_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AgentBankAccount records which bank an agent works through. One row per
// (agent, bank) pair; the card number is a placeholder until it is known.
type AgentBankAccount struct {
	ID         int       `gorm:"primary_key" json:"id"`
	AgentId    int       `gorm:"not null;uniqueIndex:idx_agent_bank,priority:1" json:"agent_id"`
	BankName   string    `gorm:"size:255;not null;uniqueIndex:idx_agent_bank,priority:2" json:"bank_name"`
	CardNumber string    `gorm:"size:100" json:"card_number"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PlaceholderCardNumber marks bank accounts created from a sheet that only
// names the bank.
const PlaceholderCardNumber = "unknown"
