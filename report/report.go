// Package report renders the catalog for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"gpustats/models"
)

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Catalog is a snapshot of the product table
type Catalog struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Attributes  []string         `json:"attributes"`
	Products    []models.Product `json:"products"`
}

// Writer writes a catalog in one format
type Writer interface {
	Write(catalog *Catalog) error
}

// NewWriter returns the writer for format
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatMarkdown, "md", "":
		return &MarkdownWriter{output: output}, nil
	case FormatJSON:
		return &JSONWriter{output: output}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MarkdownWriter renders the catalog as a table with one column per attribute
type MarkdownWriter struct {
	output io.Writer
}

func (w *MarkdownWriter) Write(catalog *Catalog) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("GPU Catalog")
	md.PlainTextf("Generated %s, %d products.", catalog.GeneratedAt.Format("2006-01-02 15:04:05 MST"), len(catalog.Products))
	md.PlainText("")

	if len(catalog.Products) == 0 {
		md.PlainText("The catalog is empty.")
		return md.Build()
	}

	header := append([]string{"Name"}, catalog.Attributes...)
	rows := make([][]string, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		row := make([]string, 0, len(header))
		row = append(row, p.Name)
		for _, attr := range catalog.Attributes {
			row = append(row, cell(p.Attributes[attr]))
		}
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{Header: header, Rows: rows})
	return md.Build()
}

// cell formats one attribute value; NULL renders as "no data"
func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return models.Absent().String()
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// JSONWriter renders the catalog as indented JSON
type JSONWriter struct {
	output io.Writer
}

func (w *JSONWriter) Write(catalog *Catalog) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog)
}
