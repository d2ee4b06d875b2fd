package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerStore writes normalized sheet data into the relational ledger. The
// connection is threaded in at construction time.
type LedgerStore struct {
	DB *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{DB: db}
}

// Commit records one sheet atomically: agent and operator upserted by
// natural key, one session row, one transaction row per classified entry,
// and a bank-account row for a not-yet-seen (agent, bank) pair. Any failure
// rolls the whole sheet back and surfaces as PersistenceError; partial
// writes are never observable.
func (s *LedgerStore) Commit(ctx context.Context, data *ledger.SheetData) (int, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: tx.Error}
	}

	agent, err := upsertAgent(tx, data.FullName)
	if err != nil {
		tx.Rollback()
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
	}

	operator, err := upsertOperator(tx, data.Operator)
	if err != nil {
		tx.Rollback()
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
	}

	session := AgentSession{
		AgentId:        agent.ID,
		OperatorId:     operator.ID,
		SessionStart:   mergeTimeWithToday(data.StartTime),
		SessionEnd:     mergeTimeWithToday(data.EndTime),
		StartBalance:   data.StartBalance,
		StopBalance:    data.StopBalance,
		AgentPercent:   data.AgentPercent,
		AgentPayout:    data.AgentPayout,
		OperatorPayout: data.OperatorPayout,
		Turnover:       data.Turnover,
	}
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
	}

	txns := buildTransactions(data, session.ID)
	if len(txns) > 0 {
		if err := tx.Create(&txns).Error; err != nil {
			tx.Rollback()
			return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
		}
	}

	if err := ensureBankAccount(tx, agent.ID, data.Bank); err != nil {
		tx.Rollback()
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, &ledger.PersistenceError{Sheet: data.SheetName, Err: err}
	}
	return session.ID, nil
}

func upsertAgent(tx *gorm.DB, fullName string) (*Agent, error) {
	var agent Agent
	err := tx.Where("full_name = ?", fullName).First(&agent).Error
	if err == nil {
		return &agent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	agent = Agent{FullName: fullName}
	if err := tx.Create(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func upsertOperator(tx *gorm.DB, username string) (*Operator, error) {
	var operator Operator
	err := tx.Where("username = ?", username).First(&operator).Error
	if err == nil {
		return &operator, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	operator = Operator{Username: username}
	if err := tx.Create(&operator).Error; err != nil {
		return nil, err
	}
	return &operator, nil
}

// defaultExchangeRate marks rows that are not exchanges.
var defaultExchangeRate = decimal.NewFromInt(1)

func buildTransactions(data *ledger.SheetData, sessionID int) []Transaction {
	one := defaultExchangeRate
	txns := make([]Transaction, 0, len(data.Inflows)+len(data.Outflows)+len(data.Exchanges))
	for _, t := range data.Inflows {
		txns = append(txns, Transaction{
			AgentSessionId: sessionID,
			DepositId:      t.ExternalId,
			DepositAmount:  t.Amount,
			ExchangeRate:   one,
			Type:           TransactionTypeInflow,
		})
	}
	for _, t := range data.Outflows {
		txns = append(txns, Transaction{
			AgentSessionId: sessionID,
			WithdrawId:     t.ExternalId,
			WithdrawAmount: t.Amount,
			Commission:     t.Commission,
			ExchangeRate:   one,
			Type:           TransactionTypeOutflow,
		})
	}
	for _, t := range data.Exchanges {
		txns = append(txns, Transaction{
			AgentSessionId: sessionID,
			WithdrawAmount: t.Amount,
			ExchangeRate:   t.Rate,
			Type:           TransactionTypeExchange,
		})
	}
	return txns
}

func ensureBankAccount(tx *gorm.DB, agentID int, bank string) error {
	if bank == "" || bank == ledger.NotSpecified {
		return nil
	}
	var existing AgentBankAccount
	err := tx.Where("agent_id = ? AND bank_name = ?", agentID, bank).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	account := AgentBankAccount{
		AgentId:    agentID,
		BankName:   bank,
		CardNumber: PlaceholderCardNumber,
	}
	return tx.Create(&account).Error
}

// mergeTimeWithToday combines a recorded time of day like "14:30" or
// "14:30:05" with the current calendar date. Unparseable values fall back
// to midnight today so the session row stays deterministic.
func mergeTimeWithToday(clock string) time.Time {
	now := time.Now()
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		}
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
