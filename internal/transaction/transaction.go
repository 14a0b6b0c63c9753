package transaction

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// TypeSale is used when the source row carries no transaction type.
const TypeSale = "SALE"

var (
	ErrNotFound   = errors.New("transaction not found")
	ErrPassLocked = errors.New("another reconciliation pass holds the canonical store lock")
)

// Transaction is a normalized point-of-sale transaction header.
// IDKey is the vendor-supplied business key; ID is the canonical store's own row identity
// and is never used to match records.
type Transaction struct {
	ID                   int64
	StoreCode            string
	StoreDisplayName     string
	TransDate            time.Time // date only, UTC midnight
	TransTime            string    // HH:MM:SS
	TransNo              string
	TillNo               string
	DiscountHeader       decimal.Decimal
	TaxHeader            decimal.Decimal
	NetSalesHeaderValues decimal.Decimal
	Quantity             int64
	TransType            string
	IDKey                int64
	Tender               *string
	DMLoadDate           string
	DMLoadDeltaID        int64

	// Vendor enrichment, derived from the store code prefix.
	SourceSystem string
	StoreRegion  *string
	TerminalType *string
	DutyFree     bool

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Overwrite copies every business field from src onto t, leaving the business key
// and the storage identity (ID, CreatedAt) untouched.
func (t *Transaction) Overwrite(src *Transaction) {
	t.StoreCode = src.StoreCode
	t.StoreDisplayName = src.StoreDisplayName
	t.TransDate = src.TransDate
	t.TransTime = src.TransTime
	t.TransNo = src.TransNo
	t.TillNo = src.TillNo
	t.DiscountHeader = src.DiscountHeader
	t.TaxHeader = src.TaxHeader
	t.NetSalesHeaderValues = src.NetSalesHeaderValues
	t.Quantity = src.Quantity
	t.TransType = src.TransType
	t.Tender = src.Tender
	t.DMLoadDate = src.DMLoadDate
	t.DMLoadDeltaID = src.DMLoadDeltaID
	t.SourceSystem = src.SourceSystem
	t.StoreRegion = src.StoreRegion
	t.TerminalType = src.TerminalType
	t.DutyFree = src.DutyFree
}

// ValidStoreCode reports whether s is four ASCII letters followed by four digits.
func ValidStoreCode(s string) bool {
	if len(s) != 8 {
		return false
	}

	for i := 0; i < 4; i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}

	for i := 4; i < 8; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

// ValidTransNo reports whether s is non-empty and contains both a hyphen and a digit.
func ValidTransNo(s string) bool {
	if s == "" || !strings.Contains(s, "-") {
		return false
	}

	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// SourceSystemOf returns the vendor prefix of a store code.
func SourceSystemOf(storeCode string) string {
	if len(storeCode) < 4 {
		return strings.ToUpper(storeCode)
	}

	return strings.ToUpper(storeCode[:4])
}
