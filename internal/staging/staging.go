package staging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

// DateLayout is how trans_date is written into staged documents.
const DateLayout = "2006-01-02"

// Document is the schema-less payload of a staged record. Numbers decode as json.Number.
type Document map[string]any

// Source is where a staged record was read from.
type Source struct {
	File string
	Line int
}

// Entry pairs a validated transaction with its provenance for batch staging.
type Entry struct {
	Tx     *transaction.Transaction
	Source Source
}

// Record is a staged document as read back from the staging store.
type Record struct {
	ID         string
	Doc        Document
	Reconciled bool
	Seq        int64
	StagedAt   time.Time
	Source     Source
}

// WriteError reports a record that could not be staged.
type WriteError struct {
	IDKey int64
	Line  int
	Err   error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("stage id_key %d (line %d): %v", e.IDKey, e.Line, e.Err)
}

func (e WriteError) Unwrap() error { return e.Err }

// FromTransaction builds the staged document for tx. Monetary values are kept as
// exact JSON numbers.
func FromTransaction(tx *transaction.Transaction) Document {
	doc := Document{
		"store_code":              tx.StoreCode,
		"store_display_name":      tx.StoreDisplayName,
		"trans_date":              tx.TransDate.Format(DateLayout),
		"trans_time":              tx.TransTime,
		"trans_no":                tx.TransNo,
		"till_no":                 tx.TillNo,
		"discount_header":         number(tx.DiscountHeader),
		"tax_header":              number(tx.TaxHeader),
		"net_sales_header_values": number(tx.NetSalesHeaderValues),
		"quantity":                tx.Quantity,
		"trans_type":              tx.TransType,
		"id_key":                  tx.IDKey,
		"tender":                  nil,
		"dm_load_date":            tx.DMLoadDate,
		"dm_load_delta_id":        tx.DMLoadDeltaID,
		"source_system":           tx.SourceSystem,
		"store_region":            nil,
		"terminal_type":           nil,
		"is_duty_free":            tx.DutyFree,
	}

	if tx.Tender != nil {
		doc["tender"] = *tx.Tender
	}

	if tx.StoreRegion != nil {
		doc["store_region"] = *tx.StoreRegion
	}

	if tx.TerminalType != nil {
		doc["terminal_type"] = *tx.TerminalType
	}

	return doc
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
