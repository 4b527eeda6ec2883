package domain

import "context"

// ReportDataRepository builds report models from the commerce schema. The
// business tables themselves (orders, products, carts) are owned elsewhere;
// this is the pipeline's only read path into them.
type ReportDataRepository interface {
	OrderInvoice(ctx context.Context, orderID string) (*OrderInvoice, error)
	DailySalesSummary(ctx context.Context, day string) (*SalesSummary, error)
}
