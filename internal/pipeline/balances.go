package pipeline

import (
	"time"

	"salesloader/internal/domain"
	"salesloader/internal/records"
	"salesloader/internal/resolve"
	"salesloader/internal/sanitize"
	"salesloader/internal/source"
)

// channelRewrites translates the labels the accounting system books the
// e-commerce channels under into the names the customer reference uses.
var channelRewrites = []resolve.Rewrite{
	{Zone: "Walmart", Customer: "Ecommerce", NewZone: "E-Commerce", NewCustomer: "Walmart Ecommerce"},
	{Zone: "Amazon", Customer: "Ecommerce", NewZone: "E-Commerce", NewCustomer: "Amazon"},
}

// placeholderRenames replaces the export's marker for rows without a
// customer with the name the reference table carries for them.
var placeholderRenames = map[string]string{
	"- no customer/project -": "Sin Nombre",
}

// BalancesSource describes the open-balances export: six report-header rows
// before the labels, a totals line at the bottom, and labels with the
// trailing space the reporting tool emits.
func BalancesSource() source.Options {
	return source.Options{
		HeaderOffset: 6,
		FooterTrim:   1,
		Rename: map[string]string{
			"Zones for Financial Reporting ": "zona",
			"Customer:Project ":              "nombre_cliente",
			"Transaction Type ":              "tipo_transaccion",
			"Date ":                          "fecha_facturacion",
			"Document Number ":               "document_number",
			"Due Date ":                      "fecha_pago",
			"Open Balance ":                  "open_balance",
		},
		Drop: []string{"P.O. No. ", "Age "},
		Required: []string{
			"zona", "nombre_cliente", "tipo_transaccion",
			"fecha_facturacion", "document_number", "fecha_pago", "open_balance",
		},
	}
}

// Balances loads the open customer balances snapshot. The table is replaced
// in spirit by stamping every row with the load date; there is no natural
// key to dedup on.
func Balances() *Pipeline {
	return &Pipeline{
		Name:  "balances",
		Table: "Cartera",
		Columns: []string{
			"tipo_transaccion", "fecha_facturacion", "document_number",
			"fecha_pago", "open_balance", "id_cliente", "id_zone", "FechaCarga",
		},
		Resolve: resolve.Options{
			NameColumn: "nombre_cliente",
			ZoneColumn: "zona",
			Rewrites:   channelRewrites,
			Renames:    placeholderRenames,
		},
		Match: resolve.Normalized,
		Shape: func(rec records.Record, id resolve.Identity, now time.Time) ([]any, bool) {
			// A customer the reference has not zoned yet falls back to
			// the zone label on the export itself.
			zone := id.ZoneID
			if !id.HasZone {
				zone = domain.ZoneID(rec.String("zona"))
			}
			return []any{
				sanitize.Text(rec.String("tipo_transaccion"), 50, ""),
				sanitize.Date(rec.String("fecha_facturacion"), sanitize.ExportDateLayouts...),
				sanitize.Text(rec.String("document_number"), 20, ""),
				sanitize.Date(rec.String("fecha_pago"), sanitize.ExportDateLayouts...),
				sanitize.Money(rec.String("open_balance")),
				id.CustomerID,
				zone,
				sanitize.DateOnly(now),
			}, true
		},
	}
}
