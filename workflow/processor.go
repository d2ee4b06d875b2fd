package workflow

import (
	"context"
	"errors"
	"io"
	"sync"

	"bitbucket.org/mmdatafocus/shifts_backend/config"
	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Committer records one sheet durably in the relational ledger.
// models.LedgerStore is the production implementation.
type Committer interface {
	Commit(ctx context.Context, data *ledger.SheetData) (int, error)
}

// Processor wires the classifier, calculator, shift aggregator and ledger
// store into the three operations the outer surface exposes. One Processor
// serves all operators; per-operator ingest locks keep two ingests for the
// same key from interleaving while leaving different keys fully concurrent.
type Processor struct {
	Parser ledger.Parser
	Calc   ledger.Calculator
	Shifts *shift.Registry
	Store  Committer
	Logger *logrus.Logger

	mu          sync.Mutex
	ingestLocks map[string]*sync.Mutex
}

func NewProcessor(settings config.Settings, store Committer, logger *logrus.Logger) *Processor {
	return &Processor{
		Parser:      ledger.NewParser(ledger.DefaultColumnSchema(), logger),
		Calc:        ledger.Calculator{OperatorPercent: settings.OperatorPercent},
		Shifts:      shift.NewRegistry(shift.Store{Dir: settings.ShiftStateDir}, settings.OperatorPercent),
		Store:       store,
		Logger:      logger,
		ingestLocks: make(map[string]*sync.Mutex),
	}
}

func (p *Processor) lockOperator(key string) func() {
	p.mu.Lock()
	l, ok := p.ingestLocks[key]
	if !ok {
		l = &sync.Mutex{}
		p.ingestLocks[key] = l
	}
	p.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Process ingests one workbook for one operator key: classify every sheet,
// derive payouts, fold each sheet into the operator's shift, and commit
// each sheet to the ledger store.
//
// An unreadable workbook fails the whole request with nothing ingested. A
// failed durable shift write stops the request at that sheet with the
// in-memory state unchanged. A failed ledger commit only loses that one
// sheet: earlier commits stay committed, later sheets keep processing, and
// every failure is reported back joined into the returned error alongside
// the processed sheets.
func (p *Processor) Process(ctx context.Context, r io.Reader, operatorKey string, agentPercent decimal.Decimal) ([]*ledger.SheetData, error) {
	unlock := p.lockOperator(operatorKey)
	defer unlock()

	sheets, err := p.Parser.ParseWorkbook(r, agentPercent)
	if err != nil {
		return nil, err
	}

	if err := p.Shifts.Begin(operatorKey); err != nil {
		return nil, err
	}

	var failures []error
	for _, sheet := range sheets {
		p.Calc.Calculate(sheet)

		entry := shiftEntry(sheet)
		if err := p.Shifts.RecordSheet(operatorKey, entry); err != nil {
			failures = append(failures, err)
			return sheets, errors.Join(failures...)
		}

		if p.Store != nil {
			if _, err := p.Store.Commit(ctx, sheet); err != nil {
				if p.Logger != nil {
					config.LogError(p.Logger, "workflow", "Process", "sheet commit failed",
						map[string]any{"sheet": sheet.SheetName, "operatorKey": operatorKey}, err)
				}
				failures = append(failures, err)
			}
		}
	}

	return sheets, errors.Join(failures...)
}

// ShiftSummary reports the operator's running shift, resuming durable
// state after a restart.
func (p *Processor) ShiftSummary(operatorKey string) (shift.Summary, error) {
	return p.Shifts.Summarize(operatorKey)
}

// FinishShift takes the final summary and clears the shift, durable state
// included. The next ingest for the key starts a fresh shift.
func (p *Processor) FinishShift(operatorKey string) (shift.Summary, error) {
	unlock := p.lockOperator(operatorKey)
	defer unlock()
	return p.Shifts.End(operatorKey)
}

func shiftEntry(sheet *ledger.SheetData) shift.AgentEntry {
	return shift.AgentEntry{
		Name:     sheet.FullName,
		Turnover: sheet.Turnover,
		Percent:  sheet.AgentPercent,
	}
}
