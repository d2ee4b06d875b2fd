package ledger

// ColumnSchema maps the named cells and columns of an agent ledger sheet.
// The layout is a configuration artifact: a workbook with a different shape
// only needs a different schema, not different parsing code.
type ColumnSchema struct {
	// HeaderRow is the 1-based row holding the per-sheet header cells.
	HeaderRow int

	// Header cell columns (letters), read at HeaderRow.
	FullNameCol        string
	BankCol            string
	WarmUpPurchasesCol string
	WarmUpAmountCol    string
	OperatorCol        string
	StartBalanceCol    string
	StopBalanceCol     string
	StartTimeCol       string
	EndTimeCol         string

	// FirstDataRow is the 1-based row where transaction rows begin.
	FirstDataRow int

	// Data columns, 0-based indexes into a row. Each category is an
	// independent pair: a row contributes to a category only when both
	// required cells of that pair are non-empty.
	InflowAmount   int
	InflowId       int
	OutflowAmount  int
	OutflowId      int
	Commission     int
	ExchangeAmount int
	ExchangeRate   int
}

// DefaultColumnSchema matches the daily ledger template the agents fill in:
// header cells in row 2 starting at column K, transaction rows from row 2
// in columns A..G.
func DefaultColumnSchema() ColumnSchema {
	return ColumnSchema{
		HeaderRow:          2,
		FullNameCol:        "K",
		BankCol:            "L",
		WarmUpPurchasesCol: "M",
		WarmUpAmountCol:    "N",
		OperatorCol:        "P",
		StartBalanceCol:    "Q",
		StopBalanceCol:     "R",
		StartTimeCol:       "S",
		EndTimeCol:         "T",

		FirstDataRow:   2,
		InflowAmount:   0,
		InflowId:       1,
		OutflowAmount:  2,
		OutflowId:      3,
		Commission:     4,
		ExchangeAmount: 5,
		ExchangeRate:   6,
	}
}
