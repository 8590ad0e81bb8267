package pipeline

import (
	"time"

	"salesloader/internal/dedup"
	"salesloader/internal/records"
	"salesloader/internal/resolve"
	"salesloader/internal/sanitize"
	"salesloader/internal/source"
)

// SalesSource describes the total-sales export. Unlike the accounting
// reports it is a plain table: labels on the first row, no footer, no
// trailing spaces in the labels.
func SalesSource() source.Options {
	return source.Options{
		Rename: map[string]string{
			"Company Name":    "nombre_cliente",
			"Date":            "fecha",
			"Document Number": "document_number",
			"Type":            "tipo",
			"Item":            "item",
			"Description":     "descripcion",
			"Class":           "clase",
			"Quantity":        "cantidad_producto",
			"UOM":             "presentacion",
			"Amount":          "amount",
			"Created From":    "created_from",
		},
		Drop: []string{"Status"},
		Required: []string{
			"nombre_cliente", "fecha", "document_number", "item", "amount",
		},
	}
}

// TotalSales loads sales transactions. Sales accumulate across export
// windows that overlap, so rows are deduped against the warehouse on the
// transaction's natural key. Names in this export are copied from the
// reference and only drift in case, hence the lighter matcher.
func TotalSales() *Pipeline {
	return &Pipeline{
		Name:  "total-sales",
		Table: "Ventas_Totales",
		Columns: []string{
			"fecha", "document_number", "tipo", "item", "descripcion",
			"clase", "cantidad_producto", "presentacion", "amount",
			"created_from", "id_cliente",
		},
		Resolve: resolve.Options{
			NameColumn: "nombre_cliente",
		},
		Match: resolve.CaseFold,
		KeyFields: []dedup.Field{
			{Column: "id_cliente", Kind: dedup.Int},
			{Column: "fecha", Kind: dedup.Date},
			{Column: "document_number", Kind: dedup.String},
			{Column: "item", Kind: dedup.String},
		},
		Shape: func(rec records.Record, id resolve.Identity, now time.Time) ([]any, bool) {
			return []any{
				sanitize.Date(rec.String("fecha"), sanitize.ExportDateLayouts...),
				sanitize.Text(rec.String("document_number"), 20, ""),
				sanitize.Text(rec.String("tipo"), 0, ""),
				sanitize.Text(rec.String("item"), 0, ""),
				sanitize.Text(rec.String("descripcion"), 0, ""),
				sanitize.Text(rec.String("clase"), 0, ""),
				sanitize.Quantity(rec.String("cantidad_producto")),
				sanitize.Text(rec.String("presentacion"), 0, ""),
				sanitize.Money(rec.String("amount")),
				sanitize.Text(rec.String("created_from"), 0, ""),
				id.CustomerID,
			}, true
		},
	}
}
