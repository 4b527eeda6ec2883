package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/sqlinline"
)

// ReportDataPG builds report models from the commerce schema. It implements
// domain.ReportDataRepository.
type ReportDataPG struct {
	pool *pgxpool.Pool
}

// NewReportData creates a report data repository backed by PostgreSQL.
func NewReportData(pool *pgxpool.Pool) *ReportDataPG {
	return &ReportDataPG{pool: pool}
}

// OrderInvoice loads everything the order_invoice template needs.
func (r *ReportDataPG) OrderInvoice(ctx context.Context, orderID string) (*domain.OrderInvoice, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QSelectOrderHeader, orderID)
	inv := domain.OrderInvoice{}
	if err := row.Scan(&inv.OrderID, &inv.PlacedAt, &inv.Currency, &inv.Customer, &inv.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	rows, err := r.pool.Query(ctx, sqlinline.QSelectOrderLines, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines %s: %w", orderID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(&line.Product, &line.Quantity, &line.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		inv.Lines = append(inv.Lines, line)
		inv.TotalCents += line.PriceCents * int64(line.Quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return &inv, nil
}

// DailySalesSummary aggregates one day of completed orders. day is a
// YYYY-MM-DD date string.
func (r *ReportDataPG) DailySalesSummary(ctx context.Context, day string) (*domain.SalesSummary, error) {
	summary := domain.SalesSummary{Day: day, GeneratedAt: time.Now().UTC()}

	row := r.pool.QueryRow(ctx, sqlinline.QAggregateDailySales, day)
	if err := row.Scan(&summary.OrderCount, &summary.ItemCount, &summary.RevenueCents); err != nil {
		return nil, fmt.Errorf("aggregate sales for %s: %w", day, err)
	}

	rows, err := r.pool.Query(ctx, sqlinline.QSelectTopProducts, day)
	if err != nil {
		return nil, fmt.Errorf("top products for %s: %w", day, err)
	}
	defer rows.Close()
	for rows.Next() {
		var entry domain.TopEntry
		if err := rows.Scan(&entry.Product, &entry.UnitsSold, &entry.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		summary.TopProducts = append(summary.TopProducts, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}
	return &summary, nil
}

var _ domain.ReportDataRepository = (*ReportDataPG)(nil)
