package reports

import (
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"github.com/shopspring/decimal"
)

// FormatNumber renders an amount with space-grouped thousands, two decimal
// places, and the ".00" tail dropped for whole numbers: 1234567.5 becomes
// "1 234 567.50", 300 becomes "300".
func FormatNumber(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if fracPart != "00" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// SheetReport renders one sheet's reconciliation result as plain text for
// the operator-facing front end.
func SheetReport(data *ledger.SheetData) string {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("=== Sheet report: %s ===", data.SheetName),
		fmt.Sprintf("Agent: %s", data.FullName),
		fmt.Sprintf("Bank: %s", data.Bank),
		fmt.Sprintf("Warm-up purchases: %s/%d", FormatNumber(data.WarmUpAmount), data.WarmUpPurchases),
		fmt.Sprintf("Start balance: %s", FormatNumber(data.StartBalance)),
		fmt.Sprintf("Start: %s", data.StartTime),
		fmt.Sprintf("Stop: %s", data.EndTime),
		fmt.Sprintf("Agent rate: %s%%", data.AgentPercent.String()),
		"",
		"Inflows:",
	)
	for i, t := range data.Inflows {
		lines = append(lines, fmt.Sprintf("%d. %s %s", i+1, FormatNumber(t.Amount), t.ExternalId))
	}

	lines = append(lines, "", "Outflows:")
	for i, t := range data.Outflows {
		line := fmt.Sprintf("%d. %s %s", i+1, FormatNumber(t.Amount), t.ExternalId)
		if !t.Commission.IsZero() {
			line += fmt.Sprintf(" (commission %s)", FormatNumber(t.Commission))
		}
		lines = append(lines, line)
	}

	if len(data.Exchanges) > 0 {
		lines = append(lines, "", "Exchanges:")
		for i, t := range data.Exchanges {
			lines = append(lines, fmt.Sprintf("%d. %s (rate %s)", i+1, FormatNumber(t.Amount), t.Rate.String()))
		}
	}

	lines = append(lines,
		"",
		"Totals:",
		fmt.Sprintf("Turnover: %s", FormatNumber(data.Turnover)),
		fmt.Sprintf("Agent payout (%s%%): %s", data.AgentPercent.String(), FormatNumber(data.AgentPayout)),
		fmt.Sprintf("Operator payout: %s", FormatNumber(data.OperatorPayout)),
		fmt.Sprintf("Total commission: %s", FormatNumber(data.TotalCommission())),
		fmt.Sprintf("Stop balance: %s", FormatNumber(data.StopBalance)),
		fmt.Sprintf("Operator: %s", data.Operator),
		strings.Repeat("=", 40),
	)
	if data.SkippedRows > 0 {
		lines = append(lines, fmt.Sprintf("Skipped rows: %d", data.SkippedRows))
	}
	return strings.Join(lines, "\n")
}

// ShiftReport renders the final per-shift summary, agents ranked by
// turnover.
func ShiftReport(sum shift.Summary, operatorPercent decimal.Decimal) string {
	var lines []string
	lines = append(lines,
		"=== Operator shift report ===",
		fmt.Sprintf("Shift start: %s", sum.StartTime.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Agents processed: %d", sum.AgentCount),
	)
	for i, a := range sum.Agents {
		lines = append(lines, fmt.Sprintf("%d. %s: %s (%s%%)", i+1, a.Name, FormatNumber(a.Turnover), a.Percent.String()))
	}
	lines = append(lines,
		fmt.Sprintf("Total turnover: %s", FormatNumber(sum.TotalTurnover)),
		fmt.Sprintf("Operator payout (%s%%): %s", operatorPercent.String(), FormatNumber(sum.TotalOperatorPayout)),
	)
	return strings.Join(lines, "\n")
}
