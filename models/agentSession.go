package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgentSession is one sheet's worth of work: one agent under one operator,
// with balances, the agreed percent and the derived payouts. Start and end
// combine the sheet's recorded time of day with the ingestion date.
type AgentSession struct {
	ID             int             `gorm:"primary_key" json:"id"`
	AgentId        int             `gorm:"index;not null" json:"agent_id"`
	OperatorId     int             `gorm:"index;not null" json:"operator_id"`
	SessionStart   time.Time       `json:"session_start"`
	SessionEnd     time.Time       `json:"session_end"`
	StartBalance   decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"start_balance"`
	StopBalance    decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"stop_balance"`
	AgentPercent   decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"agent_percent"`
	AgentPayout    decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"agent_payout"`
	OperatorPayout decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"operator_payout"`
	Turnover       decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"turnover"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
