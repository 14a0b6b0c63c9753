package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/MrJamesThe3rd/posrecon/internal/staging"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

// TransformError rejects one staged record; the rest of the pass continues.
type TransformError struct {
	RecordID string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform staged record %s: %v", e.RecordID, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

var errEmptyDocument = errors.New("empty document")

// Transform maps a staged document onto the canonical transaction shape.
func Transform(rec staging.Record) (*transaction.Transaction, error) {
	if len(rec.Doc) == 0 {
		return nil, &TransformError{RecordID: rec.ID, Err: errEmptyDocument}
	}

	d := doc(rec.Doc)

	var errs error

	tx := &transaction.Transaction{
		StoreCode:        d.str("store_code"),
		StoreDisplayName: d.str("store_display_name"),
		TransTime:        d.str("trans_time"),
		TransNo:          d.str("trans_no"),
		TillNo:           d.str("till_no"),
		TransType:        d.str("trans_type"),
		Tender:           d.optStr("tender"),
		DMLoadDate:       d.str("dm_load_date"),
		SourceSystem:     d.str("source_system"),
		StoreRegion:      d.optStr("store_region"),
		TerminalType:     d.optStr("terminal_type"),
		DutyFree:         d.boolean("is_duty_free"),
	}

	for _, key := range []string{"store_code", "trans_no", "trans_time"} {
		if d.str(key) == "" {
			errs = multierr.Append(errs, fmt.Errorf("missing %s", key))
		}
	}

	var err error

	if tx.IDKey, err = d.integer("id_key"); err != nil || tx.IDKey <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("id_key must be a positive integer, got %v", rec.Doc["id_key"]))
	}

	if tx.TransDate, err = time.Parse(staging.DateLayout, d.str("trans_date")); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid trans_date %q", d.str("trans_date")))
	}

	if tx.DiscountHeader, err = d.decimal("discount_header"); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.TaxHeader, err = d.decimal("tax_header"); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.NetSalesHeaderValues, err = d.decimal("net_sales_header_values"); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.Quantity, err = d.integer("quantity"); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.DMLoadDeltaID, err = d.integer("dm_load_delta_id"); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, &TransformError{RecordID: rec.ID, Err: errs}
	}

	if tx.TransType == "" {
		tx.TransType = transaction.TypeSale
	}

	if tx.SourceSystem == "" {
		tx.SourceSystem = transaction.SourceSystemOf(tx.StoreCode)
	}

	return tx, nil
}

// doc reads loosely typed values. Absent or null keys read as zero values.
type doc staging.Document

func (d doc) str(key string) string {
	switch v := d[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (d doc) optStr(key string) *string {
	if d[key] == nil {
		return nil
	}

	s := d.str(key)

	return &s
}

func (d doc) boolean(key string) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}

	return false
}

func (d doc) decimal(key string) (decimal.Decimal, error) {
	var (
		out decimal.Decimal
		err error
	)

	switch v := d[key].(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		out, err = decimal.NewFromString(v.String())
	case string:
		if v == "" {
			return decimal.Zero, nil
		}

		out, err = decimal.NewFromString(v)
	case float64:
		out = decimal.NewFromFloat(v)
	case int64:
		out = decimal.NewFromInt(v)
	case int:
		out = decimal.NewFromInt(int64(v))
	default:
		err = fmt.Errorf("unexpected type %T", v)
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}

	return out, nil
}

func (d doc) integer(key string) (int64, error) {
	n, err := d.decimal(key)
	if err != nil {
		return 0, err
	}

	if !n.IsInteger() {
		return 0, fmt.Errorf("invalid %s: %s is not an integer", key, n)
	}

	return n.IntPart(), nil
}
