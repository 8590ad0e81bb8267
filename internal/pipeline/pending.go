package pipeline

import (
	"time"

	"salesloader/internal/records"
	"salesloader/internal/resolve"
	"salesloader/internal/sanitize"
	"salesloader/internal/source"
)

// PendingSource describes the pending-orders export. It shares the
// balances export's physical shape. Depending on who ran the report the
// status column is labeled "Validated Status " or "Status "; both map to
// estado and at most one appears per file.
func PendingSource() source.Options {
	return source.Options{
		HeaderOffset: 6,
		FooterTrim:   1,
		Rename: map[string]string{
			"Customer ":         "nombre_cliente",
			"Class Item ":       "class_item",
			"Quantity ":         "cantidad",
			"Amount (Net) ":     "amount_net",
			"Document Number ":  "document_number",
			"Validated Status ": "estado",
			"Status ":           "estado",
			"Date ":             "fecha",
		},
		Required: []string{
			"nombre_cliente", "class_item", "cantidad",
			"amount_net", "document_number", "fecha",
		},
	}
}

// PendingOrders loads the pending-orders snapshot. Like balances it is an
// append stamped with the load date, no dedup key.
func PendingOrders() *Pipeline {
	return &Pipeline{
		Name:  "pending-orders",
		Table: "Pending_Orders",
		Columns: []string{
			"id_cliente", "class_item", "cantidad", "amount_net",
			"document_number", "estado", "fecha", "id_zone",
			"nombre_mes", "mes", "dia", "año", "FechaCarga",
		},
		Resolve: resolve.Options{
			NameColumn: "nombre_cliente",
		},
		Match: resolve.Normalized,
		Shape: func(rec records.Record, id resolve.Identity, now time.Time) ([]any, bool) {
			fecha := sanitize.Date(rec.String("fecha"), sanitize.ExportDateLayouts...)
			return []any{
				id.CustomerID,
				sanitize.Text(rec.String("class_item"), 50, "Descuento"),
				sanitize.Quantity(rec.String("cantidad")),
				sanitize.Money(rec.String("amount_net")),
				sanitize.Text(rec.String("document_number"), 20, ""),
				sanitize.Text(rec.String("estado"), 50, "Desconocido"),
				fecha,
				id.ZoneID,
				fecha.Month().String(),
				int64(fecha.Month()),
				int64(fecha.Day()),
				int64(fecha.Year()),
				sanitize.DateOnly(now),
			}, true
		},
	}
}
