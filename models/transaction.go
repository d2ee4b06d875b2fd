package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeInflow   TransactionType = "inflow"
	TransactionTypeOutflow  TransactionType = "outflow"
	TransactionTypeExchange TransactionType = "exchange"
)

// Transaction is one classified ledger row belonging to a session. The
// category decides which fields carry data: inflows fill the deposit pair,
// outflows the withdraw pair plus commission, exchanges the withdraw amount
// plus exchange rate.
type Transaction struct {
	ID             int             `gorm:"primary_key" json:"id"`
	AgentSessionId int             `gorm:"index;not null" json:"agent_session_id"`
	DepositId      string          `gorm:"size:100" json:"deposit_id"`
	DepositAmount  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"deposit_amount"`
	WithdrawId     string          `gorm:"size:100" json:"withdraw_id"`
	WithdrawAmount decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"withdraw_amount"`
	Commission     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"commission"`
	ExchangeRate   decimal.Decimal `gorm:"type:decimal(18,6);default:1" json:"exchange_rate"`
	Type           TransactionType `gorm:"column:transaction_type;type:enum('inflow','outflow','exchange');not null" json:"transaction_type"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
