package record

import "strings"

// Field is a canonical column name.
type Field string

const (
	FieldStoreCode        Field = "store_code"
	FieldStoreDisplayName Field = "store_display_name"
	FieldTransDate        Field = "trans_date"
	FieldTransTime        Field = "trans_time"
	FieldTransNo          Field = "trans_no"
	FieldTillNo           Field = "till_no"
	FieldDiscountHeader   Field = "discount_header"
	FieldTaxHeader        Field = "tax_header"
	FieldNetSales         Field = "net_sales_header_values"
	FieldQuantity         Field = "quantity"
	FieldTransType        Field = "trans_type"
	FieldIDKey            Field = "id_key"
	FieldTender           Field = "tender"
	FieldDMLoadDate       Field = "dm_load_date"
	FieldDMLoadDeltaID    Field = "dm_load_delta_id"
)

// DefaultLayout is the column order of headerless exports.
var DefaultLayout = []Field{
	FieldStoreCode,
	FieldStoreDisplayName,
	FieldTransDate,
	FieldTransTime,
	FieldTransNo,
	FieldTillNo,
	FieldDiscountHeader,
	FieldTaxHeader,
	FieldNetSales,
	FieldQuantity,
	FieldTransType,
	FieldIDKey,
	FieldTender,
	FieldDMLoadDate,
	FieldDMLoadDeltaID,
}

// Required lists the fields a row cannot be accepted without, in reporting order.
var Required = []Field{
	FieldStoreCode,
	FieldStoreDisplayName,
	FieldTransDate,
	FieldTransTime,
	FieldTransNo,
	FieldNetSales,
	FieldDiscountHeader,
	FieldTaxHeader,
	FieldIDKey,
}

// Aliases lists extra header spellings accepted for a field. The canonical name
// itself always matches.
type Aliases map[Field][]string

// DefaultAliases covers the spellings seen in vendor exports so far.
func DefaultAliases() Aliases {
	return Aliases{
		FieldStoreCode:        {"store", "store_id", "outlet_code"},
		FieldStoreDisplayName: {"store_name", "outlet_name", "display_name"},
		FieldTransDate:        {"date", "transaction_date", "bill_date"},
		FieldTransTime:        {"time", "transaction_time", "bill_time"},
		FieldTransNo:          {"transaction_no", "transaction_number", "bill_no", "receipt_no"},
		FieldTillNo:           {"till", "terminal", "terminal_no"},
		FieldDiscountHeader:   {"discount", "discount_amount"},
		FieldTaxHeader:        {"tax", "tax_amount"},
		FieldNetSales:         {"net_sales", "net_sales_value", "net_amount"},
		FieldQuantity:         {"qty"},
		FieldTransType:        {"type", "transaction_type"},
		FieldIDKey:            {"idkey", "id"},
		FieldTender:           {"tender_type", "payment_mode"},
		FieldDMLoadDate:       {"load_date"},
		FieldDMLoadDeltaID:    {"load_delta_id", "delta_id"},
	}
}

// Merge returns a copy of a with extra appended.
func (a Aliases) Merge(extra Aliases) Aliases {
	out := make(Aliases, len(a))
	for f, names := range a {
		out[f] = append([]string(nil), names...)
	}

	for f, names := range extra {
		out[f] = append(out[f], names...)
	}

	return out
}

// NormalizeHeader folds case and treats spaces and hyphens as underscores,
// so "Net Sales-Header Values" matches net_sales_header_values.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '\t' {
			return '_'
		}

		return r
	}, s)

	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	return s
}

// lookup builds the normalized-name index for a.
func (a Aliases) lookup() map[string]Field {
	idx := make(map[string]Field, len(DefaultLayout)*3)

	for _, f := range DefaultLayout {
		idx[string(f)] = f
	}

	for f, names := range a {
		for _, n := range names {
			key := NormalizeHeader(n)
			if _, taken := idx[key]; !taken {
				idx[key] = f
			}
		}
	}

	return idx
}
