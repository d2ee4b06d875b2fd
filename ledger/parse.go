package ledger

import (
	"fmt"
	"io"
	"strings"

	"bitbucket.org/mmdatafocus/shifts_backend/config"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Parser classifies workbook rows into typed transactions.
type Parser struct {
	Schema ColumnSchema
	Logger *logrus.Logger
}

func NewParser(schema ColumnSchema, logger *logrus.Logger) Parser {
	return Parser{Schema: schema, Logger: logger}
}

// ParseWorkbook reads every sheet of an .xlsx stream into SheetData records.
// A workbook that cannot be opened fails the whole call with
// MalformedInputError and no partial results. A single row whose numeric
// cells cannot be coerced is dropped with a warning; the rest of the sheet
// is kept. Turnover and payouts are left at zero for the Calculator.
func (p Parser) ParseWorkbook(r io.Reader, agentPercent decimal.Decimal) ([]*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}
	defer f.Close()

	var sheets []*SheetData
	for _, name := range f.GetSheetList() {
		data, err := p.parseSheet(f, name, agentPercent)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, data)
	}
	return sheets, nil
}

func (p Parser) parseSheet(f *excelize.File, name string, agentPercent decimal.Decimal) (*SheetData, error) {
	data := &SheetData{
		SheetName:       name,
		FullName:        p.headerText(f, name, p.Schema.FullNameCol),
		Bank:            p.headerText(f, name, p.Schema.BankCol),
		WarmUpPurchases: int(p.headerNumber(f, name, p.Schema.WarmUpPurchasesCol).IntPart()),
		WarmUpAmount:    p.headerNumber(f, name, p.Schema.WarmUpAmountCol),
		StartBalance:    p.headerNumber(f, name, p.Schema.StartBalanceCol),
		StopBalance:     p.headerNumber(f, name, p.Schema.StopBalanceCol),
		StartTime:       p.headerRaw(f, name, p.Schema.StartTimeCol),
		EndTime:         p.headerRaw(f, name, p.Schema.EndTimeCol),
		Operator:        p.headerText(f, name, p.Schema.OperatorCol),
		AgentPercent:    agentPercent,
		Turnover:        decimal.Zero,
		AgentPayout:     decimal.Zero,
		OperatorPayout:  decimal.Zero,
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, &MalformedInputError{Err: fmt.Errorf("sheet %q: %w", name, err)}
	}

	for i := p.Schema.FirstDataRow - 1; i < len(rows); i++ {
		if err := p.classifyRow(rows[i], data); err != nil {
			data.SkippedRows++
			if p.Logger != nil {
				config.LogWarn(p.Logger, "ledger", "ParseWorkbook", "row skipped",
					map[string]any{"sheet": name, "row": i + 1}, err.Error())
			}
		}
	}
	return data, nil
}

// classifyRow examines the three category pairs independently; a row may
// contribute to any number of them. If any contributing cell fails numeric
// coercion the whole row is dropped, so a row never half-contributes.
func (p Parser) classifyRow(row []string, data *SheetData) error {
	var pending []func()

	if amt, id := cellAt(row, p.Schema.InflowAmount), cellAt(row, p.Schema.InflowId); amt != "" && id != "" {
		amount, err := parseAmount(amt)
		if err != nil {
			return fmt.Errorf("inflow amount %q: %w", amt, err)
		}
		pending = append(pending, func() {
			data.Inflows = append(data.Inflows, CashTransaction{
				Amount:     amount,
				ExternalId: id,
				Commission: decimal.Zero,
			})
		})
	}

	if amt, id := cellAt(row, p.Schema.OutflowAmount), cellAt(row, p.Schema.OutflowId); amt != "" && id != "" {
		amount, err := parseAmount(amt)
		if err != nil {
			return fmt.Errorf("outflow amount %q: %w", amt, err)
		}
		commission := decimal.Zero
		if c := cellAt(row, p.Schema.Commission); c != "" {
			commission, err = parseAmount(c)
			if err != nil {
				return fmt.Errorf("commission %q: %w", c, err)
			}
		}
		pending = append(pending, func() {
			data.Outflows = append(data.Outflows, CashTransaction{
				Amount:     amount,
				ExternalId: id,
				Commission: commission,
			})
		})
	}

	if amt, rate := cellAt(row, p.Schema.ExchangeAmount), cellAt(row, p.Schema.ExchangeRate); amt != "" && rate != "" {
		amount, err := parseAmount(amt)
		if err != nil {
			return fmt.Errorf("exchange amount %q: %w", amt, err)
		}
		r, err := parseAmount(rate)
		if err != nil {
			return fmt.Errorf("exchange rate %q: %w", rate, err)
		}
		pending = append(pending, func() {
			data.Exchanges = append(data.Exchanges, ExchangeTransaction{Amount: amount, Rate: r})
		})
	}

	for _, add := range pending {
		add()
	}
	return nil
}

func (p Parser) headerRaw(f *excelize.File, sheet, col string) string {
	cell, err := excelize.JoinCellName(col, p.Schema.HeaderRow)
	if err != nil {
		return ""
	}
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

func (p Parser) headerText(f *excelize.File, sheet, col string) string {
	if v := p.headerRaw(f, sheet, col); v != "" {
		return v
	}
	return NotSpecified
}

func (p Parser) headerNumber(f *excelize.File, sheet, col string) decimal.Decimal {
	v := p.headerRaw(f, sheet, col)
	if v == "" {
		return decimal.Zero
	}
	d, err := parseAmount(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount accepts user-formatted amounts like "20 000", "20,000" or
// "1,234.50". Thousands separators are stripped, the sign kept.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		} else if r == ',' || r == ' ' || r == '\u00a0' {
			continue
		} else {
			return decimal.Zero, fmt.Errorf("not a number")
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	if neg {
		clean = "-" + clean
	}
	return decimal.NewFromString(clean)
}
