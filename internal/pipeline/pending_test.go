package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const pendingExport = "Company Report\n" +
	"Pending Sales Orders\n" +
	"\n" +
	"As of 08/01/2025\n" +
	"\n" +
	"\n" +
	"Customer ,Class Item ,Quantity ,Amount (Net) ,Document Number ,Status ,Date \n" +
	"Acme Inc,Retail,\"1,200\",\"$1,500.00\",SO-1,Pendiente,03/14/2025\n" +
	"Beta LLC,,,$20.00,SO-2,,bad-date\n" +
	"Total,,\"1,200\",\"$1,520.00\",,,\n"

func TestPendingOrdersEndToEnd(t *testing.T) {
	db := newFakeWarehouse()
	db.customerRows = [][]any{
		{int64(1), "Acme Inc", int64(2)},
		{int64(2), "Beta LLC", nil},
	}

	rep, err := PendingOrders().Run(context.Background(), testEnv(db), parse(t, pendingExport, PendingSource()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Outcome != Completed || rep.RowsRead != 2 || rep.Resolved != 2 {
		t.Fatalf("report = %+v", rep)
	}
	if len(db.batches) != 1 || db.tables[0] != "Pending_Orders" {
		t.Fatalf("batches=%d tables=%v", len(db.batches), db.tables)
	}
	rows := db.batches[0]
	if len(rows) != 2 {
		t.Fatalf("inserted %d rows, want 2", len(rows))
	}

	// columns: id_cliente, class_item, cantidad, amount_net, document_number,
	// estado, fecha, id_zone, nombre_mes, mes, dia, año, FechaCarga
	first := rows[0]
	if first[0] != int64(1) || first[1] != "Retail" || first[2] != int64(1200) {
		t.Fatalf("first row = %v", first)
	}
	if amt := first[3].(decimal.Decimal); amt.String() != "1500" {
		t.Fatalf("amount_net = %s", amt)
	}
	if first[4] != "SO-1" || first[5] != "Pendiente" || first[7] != int64(2) {
		t.Fatalf("first row = %v", first)
	}
	if first[8] != "March" || first[9] != int64(3) || first[10] != int64(14) || first[11] != int64(2025) {
		t.Fatalf("date parts = %v", first[8:12])
	}
	if !first[12].(time.Time).Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("FechaCarga = %v", first[12])
	}

	// empty class and status take their defaults, the unzoned customer
	// falls back to the configured zone, and the malformed date becomes
	// the sentinel along with its derived parts
	second := rows[1]
	if second[0] != int64(2) || second[1] != "Descuento" || second[2] != int64(0) {
		t.Fatalf("second row = %v", second)
	}
	if second[5] != "Desconocido" || second[7] != int64(1) {
		t.Fatalf("defaults = %v %v", second[5], second[7])
	}
	if !second[6].(time.Time).Equal(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("sentinel date = %v", second[6])
	}
	if second[8] != "January" || second[9] != int64(1) || second[10] != int64(1) || second[11] != int64(1900) {
		t.Fatalf("sentinel date parts = %v", second[8:12])
	}
}
