package shift

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AgentEntry is one ingested sheet's contribution to a shift. Entries are
// appended in ingestion order and never deduplicated: the same agent can
// appear once per file.
type AgentEntry struct {
	Name     string          `json:"name"`
	Turnover decimal.Decimal `json:"turnover"`
	Percent  decimal.Decimal `json:"percent"`
}

// ShiftState is the running aggregate for one operator's shift. It is owned
// exclusively by the operator key it was created for and is serialized
// wholesale to disk after every mutation.
type ShiftState struct {
	StartTime           time.Time       `json:"start_time"`
	Agents              []AgentEntry    `json:"agents"`
	TotalTurnover       decimal.Decimal `json:"total_turnover"`
	TotalOperatorPayout decimal.Decimal `json:"total_operator_payout"`
}

func newState(now time.Time) *ShiftState {
	return &ShiftState{
		StartTime:           now,
		TotalTurnover:       decimal.Zero,
		TotalOperatorPayout: decimal.Zero,
	}
}

// withEntry returns a new state with the entry appended and totals
// recomputed. The receiver is not touched, so a failed durable write leaves
// the in-memory state exactly as it was.
func (s *ShiftState) withEntry(e AgentEntry, operatorPercent decimal.Decimal) *ShiftState {
	next := &ShiftState{
		StartTime: s.StartTime,
		Agents:    make([]AgentEntry, 0, len(s.Agents)+1),
	}
	next.Agents = append(next.Agents, s.Agents...)
	next.Agents = append(next.Agents, e)

	total := decimal.Zero
	for _, a := range next.Agents {
		total = total.Add(a.Turnover)
	}
	next.TotalTurnover = total
	next.TotalOperatorPayout = total.Mul(operatorPercent).Div(hundred)
	return next
}

// Summary is a read-only projection of a shift.
type Summary struct {
	StartTime           time.Time       `json:"start_time"`
	Agents              []AgentEntry    `json:"agents"`
	AgentCount          int             `json:"agent_count"`
	TotalTurnover       decimal.Decimal `json:"total_turnover"`
	TotalOperatorPayout decimal.Decimal `json:"total_operator_payout"`
}

// Summarize projects the state into a Summary with agents ordered by
// descending turnover. The sort is stable: equal turnovers keep their
// ingestion order. The state itself is never mutated.
func (s *ShiftState) Summarize() Summary {
	agents := make([]AgentEntry, len(s.Agents))
	copy(agents, s.Agents)
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].Turnover.GreaterThan(agents[j].Turnover)
	})
	return Summary{
		StartTime:           s.StartTime,
		Agents:              agents,
		AgentCount:          len(agents),
		TotalTurnover:       s.TotalTurnover,
		TotalOperatorPayout: s.TotalOperatorPayout,
	}
}
