package pipeline

import (
	"regexp"
	"strings"
	"time"

	"salesloader/internal/dedup"
	"salesloader/internal/domain"
	"salesloader/internal/records"
	"salesloader/internal/resolve"
	"salesloader/internal/sanitize"
	"salesloader/internal/source"

	sq "github.com/Masterminds/squirrel"
)

// The planning workbook holds one named table per (dataset, zone, month).
// The tables arrive as extracted CSVs whose file names are the workbook
// table names, so everything about a table except its cells is encoded in
// its name.

// TableKind classifies a workbook table by its name prefix.
type TableKind int

const (
	// KindCategory tables hold per-product quotas.
	KindCategory TableKind = iota
	// KindZoneQuota tables hold the zone-level sales projection; only
	// their aggregate row is loaded.
	KindZoneQuota
	// KindForecast tables hold per-customer weekly projections.
	KindForecast
)

// TableMeta is what a workbook table name encodes.
type TableMeta struct {
	Kind      TableKind
	Zone      string
	Month     int
	MonthName string
	Year      int
}

var tableNamePattern = regexp.MustCompile(
	`(?i)^(Avancedeventa_Category|Proyeccion_Vendedor|Forecast)_(Zone[1-6]|KamEast|KamCentral)_([A-Za-zñÑ]+)$`)

// spanishMonths maps the month names the workbook uses to calendar months.
var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// ParseTableName decodes a workbook table name. The workbook does not state
// a year anywhere, so the caller supplies the planning year. The month name
// is translated to English on the way through, which is what the warehouse
// stores.
func ParseTableName(name string, year int) (TableMeta, bool) {
	m := tableNamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return TableMeta{}, false
	}
	month, ok := spanishMonths[strings.ToLower(m[3])]
	if !ok {
		return TableMeta{}, false
	}
	meta := TableMeta{
		Zone:      zoneLabel(m[2]),
		Month:     int(month),
		MonthName: month.String(),
		Year:      year,
	}
	switch strings.ToLower(m[1]) {
	case "avancedeventa_category":
		meta.Kind = KindCategory
	case "proyeccion_vendedor":
		meta.Kind = KindZoneQuota
	default:
		meta.Kind = KindForecast
	}
	return meta, true
}

// zoneLabel converts the compact zone token in a table name to the label
// the zone taxonomy uses ("Zone3" becomes "Zone 3").
func zoneLabel(token string) string {
	lower := strings.ToLower(token)
	switch {
	case strings.HasPrefix(lower, "zone"):
		return "Zone " + token[len(token)-1:]
	case lower == "kameast":
		return "KamEast"
	case lower == "kamcentral":
		return "KamCentral"
	}
	return token
}

// ForecastTableSource describes the column layout of one extracted table.
func ForecastTableSource(kind TableKind) source.Options {
	if kind == KindCategory {
		return source.Options{
			Rename: map[string]string{
				"Negocio.": "nombre_producto",
				"Vta $":    "cuota_dinero",
				"Vta Vol":  "cuota_volumen",
			},
			Required: []string{"nombre_producto", "cuota_dinero", "cuota_volumen"},
		}
	}
	// Projection tables (forecast and zone quota) share a layout.
	return source.Options{
		Rename: map[string]string{
			"ZONA/CLIENTE": "nombre_cliente",
			"WEEK 1":       "semana_1",
			"WEEK 2":       "semana_2",
			"WEEK 3":       "semana_3",
			"WEEK 4":       "semana_4",
			"WEEK 5":       "semana_5",
			"TOTAL":        "total",
		},
		Drop:     []string{"Py %"},
		Required: []string{"nombre_cliente"},
	}
}

// Extract is one parsed workbook table plus its decoded name.
type Extract struct {
	Meta  TableMeta
	Table *source.Table
}

// stamp writes a table's name-derived metadata onto one of its records.
func stamp(rec records.Record, meta TableMeta) records.Record {
	rec["zona"] = meta.Zone
	rec["nombre_mes"] = meta.MonthName
	rec["mes"] = int64(meta.Month)
	rec["año"] = int64(meta.Year)
	return rec
}

func metaColumns(cols []string) []string {
	return append(append([]string(nil), cols...), "zona", "nombre_mes", "mes", "año")
}

// MergeForecast stacks the per-customer rows of the projection tables into
// one source table. The first data row of each table is the zone aggregate
// and subtotal rows carry "Total" labels; neither is a customer, so both
// are dropped here rather than left to clutter the unmapped-name report.
func MergeForecast(extracts []Extract) *source.Table {
	out := &source.Table{}
	for _, ex := range extracts {
		if out.Columns == nil {
			out.Columns = metaColumns(ex.Table.Columns)
		}
		for i, rec := range ex.Table.Rows {
			name := rec.String("nombre_cliente")
			if i == 0 || name == "" || strings.Contains(name, "Total") {
				continue
			}
			out.Rows = append(out.Rows, stamp(rec, ex.Meta))
		}
		out.Skipped += ex.Table.Skipped
	}
	return out
}

// MergeZoneQuotas takes the aggregate row of each projection table, which
// carries the zone's monthly quota in its TOTAL cell.
func MergeZoneQuotas(extracts []Extract) *source.Table {
	out := &source.Table{}
	for _, ex := range extracts {
		if out.Columns == nil {
			out.Columns = metaColumns(ex.Table.Columns)
		}
		if len(ex.Table.Rows) > 0 {
			out.Rows = append(out.Rows, stamp(ex.Table.Rows[0], ex.Meta))
		}
		out.Skipped += ex.Table.Skipped
	}
	return out
}

// MergeCategory stacks the category quota tables.
func MergeCategory(extracts []Extract) *source.Table {
	out := &source.Table{}
	for _, ex := range extracts {
		if out.Columns == nil {
			out.Columns = metaColumns(ex.Table.Columns)
		}
		for _, rec := range ex.Table.Rows {
			out.Rows = append(out.Rows, stamp(rec, ex.Meta))
		}
		out.Skipped += ex.Table.Skipped
	}
	return out
}

// ZoneQuotas loads the zone-level monthly quotas. The rows share their
// table with per-customer quotas, so both the sentinel customer id and the
// key scan filter keep the two populations apart.
func ZoneQuotas() *Pipeline {
	return &Pipeline{
		Name:    "zone-quotas",
		Table:   "Cuota_forecast",
		Columns: []string{"id_zone", "id_cliente", "cuota", "nombre_mes", "mes", "año"},
		KeyFields: []dedup.Field{
			{Column: "id_zone", Kind: dedup.Int},
			{Column: "mes", Kind: dedup.Int},
			{Column: "año", Kind: dedup.Int},
		},
		KeyFilter: sq.Eq{"id_cliente": domain.ZoneQuotaCustomerID},
		Shape: func(rec records.Record, _ resolve.Identity, _ time.Time) ([]any, bool) {
			cuota := sanitize.Money(rec.String("total"))
			if !cuota.IsPositive() {
				return nil, false
			}
			return []any{
				domain.ZoneID(rec.String("zona")),
				domain.ZoneQuotaCustomerID,
				cuota,
				rec.String("nombre_mes"),
				rec.Int("mes"),
				rec.Int("año"),
			}, true
		},
	}
}

// Forecast loads the per-customer weekly projections. The zone comes from
// the workbook table the row was found in, not from the customer reference:
// a customer can be projected under a zone they are not filed under.
func Forecast() *Pipeline {
	return &Pipeline{
		Name:  "forecast",
		Table: "Forecast",
		Columns: []string{
			"semana_1", "semana_2", "semana_3", "semana_4", "semana_5",
			"mes", "año", "id_cliente", "id_zone", "nombre_mes",
		},
		Resolve: resolve.Options{
			NameColumn: "nombre_cliente",
		},
		Match: resolve.CaseFold,
		KeyFields: []dedup.Field{
			{Column: "id_cliente", Kind: dedup.Int},
			{Column: "id_zone", Kind: dedup.Int},
			{Column: "mes", Kind: dedup.Int},
			{Column: "año", Kind: dedup.Int},
		},
		Shape: func(rec records.Record, id resolve.Identity, _ time.Time) ([]any, bool) {
			return []any{
				sanitize.Money(rec.String("semana_1")),
				sanitize.Money(rec.String("semana_2")),
				sanitize.Money(rec.String("semana_3")),
				sanitize.Money(rec.String("semana_4")),
				sanitize.Money(rec.String("semana_5")),
				rec.Int("mes"),
				rec.Int("año"),
				id.CustomerID,
				domain.ZoneID(rec.String("zona")),
				rec.String("nombre_mes"),
			}, true
		},
	}
}

// CategoryQuotas loads the per-product monthly quotas. Rows whose product
// line the taxonomy does not know are skipped, matching how the quota
// tables mix product rows with free-form annotation rows.
func CategoryQuotas() *Pipeline {
	return &Pipeline{
		Name:    "category-quotas",
		Table:   "Cuotas_Avance_Categoria",
		Columns: []string{"cuota_dinero", "cuota_volumen", "id_producto", "id_zone", "nombre_mes", "mes", "año"},
		KeyFields: []dedup.Field{
			{Column: "id_producto", Kind: dedup.Int},
			{Column: "id_zone", Kind: dedup.Int},
			{Column: "mes", Kind: dedup.Int},
			{Column: "año", Kind: dedup.Int},
		},
		Shape: func(rec records.Record, _ resolve.Identity, _ time.Time) ([]any, bool) {
			productID, ok := domain.ProductID(rec.String("nombre_producto"))
			if !ok {
				return nil, false
			}
			return []any{
				sanitize.Money(rec.String("cuota_dinero")),
				sanitize.Quantity(rec.String("cuota_volumen")),
				productID,
				domain.ZoneID(rec.String("zona")),
				rec.String("nombre_mes"),
				rec.Int("mes"),
				rec.Int("año"),
			}, true
		},
	}
}
