package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

type transactionResponse struct {
	ID                   int64           `json:"id"`
	StoreCode            string          `json:"store_code"`
	StoreDisplayName     string          `json:"store_display_name"`
	TransDate            string          `json:"trans_date"`
	TransTime            string          `json:"trans_time"`
	TransNo              string          `json:"trans_no"`
	TillNo               string          `json:"till_no"`
	DiscountHeader       decimal.Decimal `json:"discount_header"`
	TaxHeader            decimal.Decimal `json:"tax_header"`
	NetSalesHeaderValues decimal.Decimal `json:"net_sales_header_values"`
	Quantity             int64           `json:"quantity"`
	TransType            string          `json:"trans_type"`
	IDKey                int64           `json:"id_key"`
	Tender               *string         `json:"tender"`
	DMLoadDate           string          `json:"dm_load_date"`
	DMLoadDeltaID        int64           `json:"dm_load_delta_id"`
	SourceSystem         string          `json:"source_system"`
	StoreRegion          *string         `json:"store_region"`
	TerminalType         *string         `json:"terminal_type"`
	DutyFree             bool            `json:"is_duty_free"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                   tx.ID,
		StoreCode:            tx.StoreCode,
		StoreDisplayName:     tx.StoreDisplayName,
		TransDate:            tx.TransDate.Format(time.DateOnly),
		TransTime:            tx.TransTime,
		TransNo:              tx.TransNo,
		TillNo:               tx.TillNo,
		DiscountHeader:       tx.DiscountHeader,
		TaxHeader:            tx.TaxHeader,
		NetSalesHeaderValues: tx.NetSalesHeaderValues,
		Quantity:             tx.Quantity,
		TransType:            tx.TransType,
		IDKey:                tx.IDKey,
		Tender:               tx.Tender,
		DMLoadDate:           tx.DMLoadDate,
		DMLoadDeltaID:        tx.DMLoadDeltaID,
		SourceSystem:         tx.SourceSystem,
		StoreRegion:          tx.StoreRegion,
		TerminalType:         tx.TerminalType,
		DutyFree:             tx.DutyFree,
		CreatedAt:            tx.CreatedAt,
		UpdatedAt:            tx.UpdatedAt,
	}
}
