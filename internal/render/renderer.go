// Package render turns a report kind plus a serialized model into document
// bytes. The coordinator only sees the Renderer contract; the Chromium
// backend is the production implementation.
package render

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"path"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFiles = map[domain.ReportKind]string{
	domain.ReportKindOrderInvoice:   "templates/order_invoice.html",
	domain.ReportKindSalesSummary:   "templates/sales_summary.html",
	domain.ReportKindProductCatalog: "templates/product_catalog.html",
}

// Renderer produces document bytes for a report kind and a JSON-encoded
// model. Implementations may take seconds and may fail; callers own the
// timeout and the failure handling.
type Renderer interface {
	Render(ctx context.Context, kind domain.ReportKind, model []byte) ([]byte, error)
}

// Registry holds the parsed report templates.
type Registry struct {
	templates map[domain.ReportKind]*template.Template
}

// NewRegistry parses the embedded report templates.
func NewRegistry() (*Registry, error) {
	funcs := template.FuncMap{
		"money": formatCents,
	}
	parsed := make(map[domain.ReportKind]*template.Template, len(templateFiles))
	for kind, file := range templateFiles {
		// ParseFS registers templates under their base name, so the root
		// template must carry the base name too or it stays empty.
		tpl, err := template.New(path.Base(file)).Funcs(funcs).ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("render: parse template for %s: %w", kind, err)
		}
		parsed[kind] = tpl
	}
	return &Registry{templates: parsed}, nil
}

// Known reports whether kind has a registered template.
func (r *Registry) Known(kind domain.ReportKind) bool {
	_, ok := r.templates[kind]
	return ok
}

// HTML renders the report body for kind from the JSON-encoded model.
func (r *Registry) HTML(kind domain.ReportKind, model []byte) ([]byte, error) {
	tpl, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("render: %w: %s", domain.ErrUnknownReportKind, kind)
	}
	var data any
	if len(model) > 0 {
		if err := json.Unmarshal(model, &data); err != nil {
			return nil, fmt.Errorf("render: %w: %v", domain.ErrInvalidModel, err)
		}
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: execute template for %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// HTMLRenderer emits the rendered HTML itself instead of a PDF. It serves
// development environments without a Chrome install, and tests.
type HTMLRenderer struct {
	registry *Registry
}

// NewHTMLRenderer wraps a template registry.
func NewHTMLRenderer(registry *Registry) *HTMLRenderer {
	return &HTMLRenderer{registry: registry}
}

func (r *HTMLRenderer) Render(ctx context.Context, kind domain.ReportKind, model []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.registry.HTML(kind, model)
}

// formatCents renders a cent amount as a decimal string. Models arrive as
// decoded JSON, so numeric values may be float64 rather than int64.
func formatCents(v any) string {
	var cents int64
	switch n := v.(type) {
	case int64:
		cents = n
	case int:
		cents = int64(n)
	case float64:
		cents = int64(n)
	case json.Number:
		cents, _ = n.Int64()
	default:
		return fmt.Sprintf("%v", v)
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

var _ Renderer = (*HTMLRenderer)(nil)
