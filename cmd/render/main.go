// Command render produces a single report PDF without going through the
// HTTP pipeline. It is handy for template work and for regenerating an
// artifact from an archived model:
//
//	go run ./cmd/render -kind order_invoice -model invoice.json -out invoice.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Logged1n/SharpBuy-sub000/internal/domain"
	"github.com/Logged1n/SharpBuy-sub000/internal/render"
)

func main() {
	var (
		kind      = flag.String("kind", "", "report kind (order_invoice, sales_summary, product_catalog)")
		modelPath = flag.String("model", "-", "path to the model JSON, '-' for stdin")
		outPath   = flag.String("out", "report.pdf", "output file")
		htmlOnly  = flag.Bool("html", false, "emit rendered HTML instead of a PDF")
		timeout   = flag.Duration("timeout", render.DefaultRenderTimeout, "render timeout")
	)
	flag.Parse()
	_ = godotenv.Load()

	if err := run(*kind, *modelPath, *outPath, *htmlOnly, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

func run(kind, modelPath, outPath string, htmlOnly bool, timeout time.Duration) error {
	registry, err := render.NewRegistry()
	if err != nil {
		return err
	}
	if !registry.Known(domain.ReportKind(kind)) {
		return fmt.Errorf("unknown report kind %q", kind)
	}

	model, err := readModel(modelPath)
	if err != nil {
		return err
	}

	var renderer render.Renderer
	if htmlOnly {
		renderer = render.NewHTMLRenderer(registry)
	} else {
		renderer = render.NewChromium(registry, timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()

	output, err := renderer.Render(ctx, domain.ReportKind(kind), model)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, output, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", outPath, len(output))
	return nil
}

func readModel(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
