package stock

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LocationRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Attribute is one characteristic of a product together with its allowed
// option values, in the order the catalog defines them.
type Attribute struct {
	ID      int64             `json:"id"`
	Name    string            `json:"name"`
	Options []AttributeOption `json:"options"`
}

type AttributeOption struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// StockRecord is one committed (variant, location) stock row.
type StockRecord struct {
	ID         int64
	VariantID  int64
	LocationID int64
	Quantity   int32
	Price      *decimal.Decimal
	AddedAt    time.Time
}

// BatchInput is one user-submitted "add inventory" transaction: N rows of
// option selections with quantities and optional prices, all against the
// same product and location.
type BatchInput struct {
	UserID     int64
	ProductID  int64
	LocationID int64
	EntryDate  time.Time // zero value means time of submission
	Rows       []BatchRow
}

type BatchRow struct {
	OptionIDs []int64
	Quantity  int32
	Price     *decimal.Decimal
}

// RowResult reports the outcome of a single batch row. Exactly one of Err
// or the committed fields is meaningful. Warning is set when a compensating
// variant delete failed and an orphan was left behind.
type RowResult struct {
	Row       int
	VariantID int64
	Committed *StockRecord
	Err       *RowError
	Warning   *OrphanVariantWarning
}

type BatchReport struct {
	Results []RowResult
}

func (r BatchReport) AllSucceeded() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

func (r BatchReport) Failed() []RowResult {
	var failed []RowResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// PreviewInput asks what a selection would resolve to, without writing.
type PreviewInput struct {
	UserID     int64
	ProductID  int64
	LocationID int64
	OptionIDs  []int64
}

// PreviewResult is the best-effort current state for a selection. VariantID
// is nil when the selection is partial or no variant matches yet.
type PreviewResult struct {
	VariantID     *int64
	CurrentStock  int32
	ExistingPrice *decimal.Decimal
}
