package domain

import "time"

// ReportKind identifies a report template. The renderer owns the set of
// kinds it can materialize; the coordinator treats the value as opaque.
type ReportKind string

const (
	ReportKindOrderInvoice   ReportKind = "order_invoice"
	ReportKindSalesSummary   ReportKind = "sales_summary"
	ReportKindProductCatalog ReportKind = "product_catalog"
)

// JobState enumerates report job lifecycle states.
type JobState string

const (
	JobStatePending    JobState = "pending"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// ReportJob tracks one request to produce a PDF artifact. Job records live
// in the cache store under a bounded TTL and are never deleted explicitly.
type ReportJob struct {
	ID           string     `json:"id"`
	Kind         ReportKind `json:"kind"`
	State        JobState   `json:"state"`
	ArtifactKey  string     `json:"artifact_key"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// OrderInvoice is the model behind the order_invoice report.
type OrderInvoice struct {
	OrderID    string        `json:"order_id"`
	PlacedAt   time.Time     `json:"placed_at"`
	Customer   string        `json:"customer"`
	Email      string        `json:"email"`
	Currency   string        `json:"currency"`
	Lines      []InvoiceLine `json:"lines"`
	TotalCents int64         `json:"total_cents"`
	Locale     string        `json:"locale,omitempty"`
}

// InvoiceLine is one order line on an invoice.
type InvoiceLine struct {
	Product    string `json:"product"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// SalesSummary is the model behind the sales_summary report.
type SalesSummary struct {
	Day           string     `json:"day"`
	OrderCount    int        `json:"order_count"`
	ItemCount     int        `json:"item_count"`
	RevenueCents  int64      `json:"revenue_cents"`
	TopProducts   []TopEntry `json:"top_products"`
	GeneratedAt   time.Time  `json:"generated_at"`
}

// TopEntry is one row of a grouped sales breakdown.
type TopEntry struct {
	Product      string `json:"product"`
	UnitsSold    int    `json:"units_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}
