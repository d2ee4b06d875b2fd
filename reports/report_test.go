package reports_test

import (
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/reports"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"300", "300"},
		{"1234567.5", "1 234 567.50"},
		{"-1000", "-1 000"},
		{"0.5", "0.50"},
		{"0", "0"},
		{"999", "999"},
		{"1000", "1 000"},
		{"-0.25", "-0.25"},
		{"12345678901.99", "12 345 678 901.99"},
	}
	for _, c := range cases {
		if got := reports.FormatNumber(dec(t, c.in)); got != c.want {
			t.Errorf("FormatNumber(%s): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSheetReport(t *testing.T) {
	data := &ledger.SheetData{
		SheetName:    "Agent A",
		FullName:     "Ivan Petrov",
		Bank:         "Alpha",
		StartBalance: dec(t, "1000"),
		StopBalance:  dec(t, "2500"),
		StartTime:    "09:30",
		EndTime:      "21:00",
		Operator:     "op_one",
		AgentPercent: dec(t, "3"),
		Turnover:     dec(t, "1234567.5"),
		AgentPayout:  dec(t, "37037.03"),
		Inflows: []ledger.CashTransaction{
			{Amount: dec(t, "100"), ExternalId: "in-1"},
		},
		Outflows: []ledger.CashTransaction{
			{Amount: dec(t, "50"), ExternalId: "out-1", Commission: dec(t, "5")},
		},
		SkippedRows: 2,
	}

	report := reports.SheetReport(data)
	for _, want := range []string{
		"=== Sheet report: Agent A ===",
		"Agent: Ivan Petrov",
		"Bank: Alpha",
		"Agent rate: 3%",
		"1. 100 in-1",
		"1. 50 out-1 (commission 5)",
		"Turnover: 1 234 567.50",
		"Operator: op_one",
		"Skipped rows: 2",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "Exchanges:") {
		t.Error("empty exchange section should be omitted")
	}
}

func TestSheetReport_NoSkippedRowsLine(t *testing.T) {
	report := reports.SheetReport(&ledger.SheetData{SheetName: "S"})
	if strings.Contains(report, "Skipped rows") {
		t.Errorf("clean sheet must not mention skipped rows:\n%s", report)
	}
}

func TestShiftReport(t *testing.T) {
	sum := shift.Summary{
		StartTime:  time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		AgentCount: 2,
		Agents: []shift.AgentEntry{
			{Name: "Boris", Turnover: dec(t, "200"), Percent: dec(t, "3")},
			{Name: "Anna", Turnover: dec(t, "100"), Percent: dec(t, "2.5")},
		},
		TotalTurnover:       dec(t, "300"),
		TotalOperatorPayout: dec(t, "1.5"),
	}

	report := reports.ShiftReport(sum, dec(t, "0.5"))
	for _, want := range []string{
		"Shift start: 2026-09-01 08:00:00",
		"Agents processed: 2",
		"1. Boris: 200 (3%)",
		"2. Anna: 100 (2.5%)",
		"Total turnover: 300",
		"Operator payout (0.5%): 1.50",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Index(report, "Boris") > strings.Index(report, "Anna") {
		t.Error("agents must keep their ranked order")
	}
}
