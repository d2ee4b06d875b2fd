package ledger

import (
	"github.com/shopspring/decimal"
)

// NotSpecified is the fallback for header text cells the agent left empty.
const NotSpecified = "not specified"

var hundred = decimal.NewFromInt(100)

// CashTransaction is one inflow or outflow row. Values are never mutated
// after classification.
type CashTransaction struct {
	Amount     decimal.Decimal `json:"amount"`
	ExternalId string          `json:"external_id"`
	Commission decimal.Decimal `json:"commission"`
}

// ExchangeTransaction is one currency exchange row. The rate is recorded as
// stored; no conversion is performed.
type ExchangeTransaction struct {
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}

// SheetData is one parsed worksheet: one agent's ledger for the shift.
// Turnover and the two payouts are derived fields, set only by Calculator.
type SheetData struct {
	SheetName       string                `json:"sheet_name"`
	FullName        string                `json:"full_name"`
	Bank            string                `json:"bank"`
	WarmUpPurchases int                   `json:"warm_up_purchases"`
	WarmUpAmount    decimal.Decimal       `json:"warm_up_amount"`
	StartBalance    decimal.Decimal       `json:"start_balance"`
	StopBalance     decimal.Decimal       `json:"stop_balance"`
	StartTime       string                `json:"start_time"`
	EndTime         string                `json:"end_time"`
	Operator        string                `json:"operator"`
	Inflows         []CashTransaction     `json:"inflows"`
	Outflows        []CashTransaction     `json:"outflows"`
	Exchanges       []ExchangeTransaction `json:"exchanges"`
	AgentPercent    decimal.Decimal       `json:"agent_percent"`
	Turnover        decimal.Decimal       `json:"turnover"`
	AgentPayout     decimal.Decimal       `json:"agent_payout"`
	OperatorPayout  decimal.Decimal       `json:"operator_payout"`

	// SkippedRows counts rows dropped because a contributing cell failed
	// numeric coercion. Non-fatal, kept for observability.
	SkippedRows int `json:"skipped_rows"`
}

// TotalCommission sums the commission recorded on outflow rows.
func (s *SheetData) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, t := range s.Outflows {
		total = total.Add(t.Commission)
	}
	return total
}

// Calculator derives turnover and payouts for a sheet. OperatorPercent is
// the process-wide fixed rate, threaded in at construction time.
type Calculator struct {
	OperatorPercent decimal.Decimal
}

// Calculate sets Turnover, AgentPayout and OperatorPayout on the sheet.
// Turnover is the sum of inflow amounts only; outflows and exchanges never
// contribute. Decimal arithmetic keeps large sums of small amounts exact.
func (c Calculator) Calculate(s *SheetData) {
	turnover := decimal.Zero
	for _, t := range s.Inflows {
		turnover = turnover.Add(t.Amount)
	}
	s.Turnover = turnover
	s.AgentPayout = turnover.Mul(s.AgentPercent).Div(hundred)
	s.OperatorPayout = turnover.Mul(c.OperatorPercent).Div(hundred)
}
