package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
	"github.com/MrJamesThe3rd/posrecon/internal/vendor"
)

const canonicalDate = "2006-01-02"

var (
	monthFirstLayouts = []string{"1/2/06", "1/2/2006", canonicalDate, "2/1/06", "2/1/2006"}
	dayFirstLayouts   = []string{"2/1/06", "2/1/2006", "1/2/06", "1/2/2006", canonicalDate}
	timeLayouts       = []string{"15:04:05", "15:04"}
)

// Columns maps each resolved field to its position in a row.
type Columns map[Field]int

// Row zips a raw record into a field-keyed map. Cells beyond the record length are left out.
func (c Columns) Row(cells []string) map[string]string {
	row := make(map[string]string, len(c))

	for f, i := range c {
		if i < len(cells) {
			row[string(f)] = cells[i]
		}
	}

	return row
}

// PositionalColumns is the mapping used for files without a header row.
func PositionalColumns() Columns {
	cols := make(Columns, len(DefaultLayout))
	for i, f := range DefaultLayout {
		cols[f] = i
	}

	return cols
}

// Parser turns loosely-typed rows into validated transactions. It holds no
// per-call state and is safe for concurrent use.
type Parser struct {
	vendors *vendor.Registry
	index   map[string]Field
}

func NewParser(vendors *vendor.Registry, aliases Aliases) *Parser {
	if vendors == nil {
		vendors = vendor.Default()
	}

	if aliases == nil {
		aliases = DefaultAliases()
	}

	return &Parser{vendors: vendors, index: aliases.lookup()}
}

// Resolve maps a header name to its canonical field.
func (p *Parser) Resolve(header string) (Field, bool) {
	f, ok := p.index[NormalizeHeader(header)]
	return f, ok
}

// ResolveHeaders maps header positions to fields. The first occurrence of a field wins.
func (p *Parser) ResolveHeaders(headers []string) (Columns, error) {
	cols := make(Columns, len(headers))

	for i, h := range headers {
		f, ok := p.Resolve(h)
		if !ok {
			continue
		}

		if _, dup := cols[f]; !dup {
			cols[f] = i
		}
	}

	var missing []Field

	for _, f := range Required {
		if _, ok := cols[f]; !ok {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Present: headers}
	}

	return cols, nil
}

// Recognized counts how many distinct canonical fields the cells name.
func (p *Parser) Recognized(cells []string) int {
	seen := make(map[Field]struct{}, len(cells))

	for _, c := range cells {
		if f, ok := p.Resolve(c); ok {
			seen[f] = struct{}{}
		}
	}

	return len(seen)
}

// Parse validates one row. Keys may be canonical field names or any accepted alias.
// Every problem found in the row is reported in the single returned *ParseError.
func (p *Parser) Parse(row map[string]string, line int) (*transaction.Transaction, error) {
	values := make(map[Field]string, len(row))

	for k, v := range row {
		f, ok := p.Resolve(k)
		if !ok {
			continue
		}

		if _, dup := values[f]; !dup {
			values[f] = strings.TrimSpace(v)
		}
	}

	var missing []Field

	for _, f := range Required {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return nil, &ParseError{
			Line:    line,
			Reason:  "missing required fields: " + joinFields(missing),
			Missing: missing,
		}
	}

	storeCode := values[FieldStoreCode]
	profile := p.vendors.Lookup(storeCode)

	tx := &transaction.Transaction{
		StoreCode:        storeCode,
		StoreDisplayName: values[FieldStoreDisplayName],
		TillNo:           values[FieldTillNo],
		TransType:        values[FieldTransType],
		Tender:           parseTender(values[FieldTender]),
		DMLoadDate:       values[FieldDMLoadDate],
		Quantity:         parseOptionalInt(values[FieldQuantity]),
		DMLoadDeltaID:    parseOptionalInt(values[FieldDMLoadDeltaID]),
	}

	if tx.TransType == "" {
		tx.TransType = transaction.TypeSale
	}

	var errs error

	if !transaction.ValidStoreCode(storeCode) {
		errs = multierr.Append(errs, fmt.Errorf("invalid store_code %q: expected 4 letters followed by 4 digits", storeCode))
	}

	tx.TransNo = values[FieldTransNo]
	if !transaction.ValidTransNo(tx.TransNo) {
		errs = multierr.Append(errs, fmt.Errorf("invalid trans_no %q: expected a hyphen and a digit", tx.TransNo))
	}

	var err error

	if tx.TransDate, err = ParseDate(values[FieldTransDate], profile.DateOrder); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.TransTime, err = ParseTime(values[FieldTransTime]); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.DiscountHeader, err = parseAmount(FieldDiscountHeader, values[FieldDiscountHeader]); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.TaxHeader, err = parseAmount(FieldTaxHeader, values[FieldTaxHeader]); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.NetSalesHeaderValues, err = parseAmount(FieldNetSales, values[FieldNetSales]); err != nil {
		errs = multierr.Append(errs, err)
	}

	if tx.IDKey, err = parseIDKey(values[FieldIDKey]); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, &ParseError{Line: line, Reason: reason(errs), Err: errs}
	}

	profile.Apply(tx)

	return tx, nil
}

func reason(err error) string {
	parts := multierr.Errors(err)
	msgs := make([]string, len(parts))

	for i, e := range parts {
		msgs[i] = e.Error()
	}

	return strings.Join(msgs, "; ")
}

// ParseDate tries the layouts for order in sequence; the first match wins.
func ParseDate(s string, order vendor.DateOrder) (time.Time, error) {
	layouts := monthFirstLayouts
	if order == vendor.DayFirst {
		layouts = dayFirstLayouts
	}

	s = strings.TrimSpace(s)

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable trans_date %q", s)
}

// ParseTime accepts H:MM:SS, HH:MM:SS and HH:MM and normalizes to HH:MM:SS.
func ParseTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.IndexByte(s, ':') == 1 {
		s = "0" + s
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}

	return "", fmt.Errorf("unparseable trans_time %q", s)
}

// cleanNumber drops currency symbols, thousands separators and whitespace.
func cleanNumber(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t', '\u00a0':
			return -1
		}

		return r
	}, s)
}

// ParseDecimal parses a monetary value in the lenient export notation.
func ParseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(cleanNumber(s))
}

func parseAmount(f Field, s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", f, s)
	}

	return d, nil
}

func parseOptionalInt(s string) int64 {
	if s == "" {
		return 0
	}

	d, err := ParseDecimal(s)
	if err != nil {
		return 0
	}

	return d.IntPart()
}

var errIDKey = errors.New("id_key must be a positive integer")

func parseIDKey(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return 0, fmt.Errorf("%w: got %q", errIDKey, s)
	}

	return d.IntPart(), nil
}

func parseTender(s string) *string {
	if s == "" || strings.EqualFold(s, "NULL") {
		return nil
	}

	return &s
}

// Format renders tx as canonical field values that Parse accepts back unchanged.
func Format(tx *transaction.Transaction) map[string]string {
	tender := "NULL"
	if tx.Tender != nil {
		tender = *tx.Tender
	}

	return map[string]string{
		string(FieldStoreCode):        tx.StoreCode,
		string(FieldStoreDisplayName): tx.StoreDisplayName,
		string(FieldTransDate):        tx.TransDate.Format(canonicalDate),
		string(FieldTransTime):        tx.TransTime,
		string(FieldTransNo):          tx.TransNo,
		string(FieldTillNo):           tx.TillNo,
		string(FieldDiscountHeader):   formatDecimal(tx.DiscountHeader),
		string(FieldTaxHeader):        formatDecimal(tx.TaxHeader),
		string(FieldNetSales):         formatDecimal(tx.NetSalesHeaderValues),
		string(FieldQuantity):         fmt.Sprint(tx.Quantity),
		string(FieldTransType):        tx.TransType,
		string(FieldIDKey):            fmt.Sprint(tx.IDKey),
		string(FieldTender):           tender,
		string(FieldDMLoadDate):       tx.DMLoadDate,
		string(FieldDMLoadDeltaID):    fmt.Sprint(tx.DMLoadDeltaID),
	}
}

// formatDecimal keeps the scale of d so the value parses back identically.
func formatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}

	return d.String()
}

// FormatLine renders tx in the headerless layout with the given delimiter.
func FormatLine(tx *transaction.Transaction, delim rune) string {
	values := Format(tx)
	cells := make([]string, len(DefaultLayout))

	for i, f := range DefaultLayout {
		cells[i] = values[string(f)]
	}

	return strings.Join(cells, string(delim))
}
