package domain

import "strings"

// FallbackZoneID is assigned when a zone label is missing or unknown.
const FallbackZoneID int64 = 1

// zoneIDs maps the zone labels used by the planning workbook and the
// accounting exports to warehouse zone ids.
var zoneIDs = map[string]int64{
	"Zone 1":            1,
	"Zone 2":            2,
	"Zone 3":            3,
	"Zone 4":            4,
	"Zone 5":            5,
	"Zone 6":            6,
	"Zone 7":            7,
	"KamCentral":        8,
	"KamEast":           9,
	"E-Commerce":        10,
	"Outlet & Donation": 11,
}

// productIDs maps planning workbook product lines to warehouse product ids.
var productIDs = map[string]int64{
	"Ricky Joy Yogurt": 1,
	"Mellow Cones":     2,
	"Crazy Legs":       3,
	"Ricky Joy Gels":   4,
	"Jelly Fruits":     5,
	"Plis":             6,
	"SSC Roll On":      7,
	"Freeze Dried":     8,
	"3D Gummies":       9,
	"SC Gel":           10,
	"Cotton Candy":     11,
}

// ZoneID resolves a zone label, falling back to FallbackZoneID for labels
// the taxonomy does not know.
func ZoneID(label string) int64 {
	if id, ok := zoneIDs[strings.TrimSpace(label)]; ok {
		return id
	}
	return FallbackZoneID
}

// ProductID resolves a product line label. Unknown labels are not defaulted;
// quota rows for unknown products are skipped by the caller.
func ProductID(label string) (int64, bool) {
	id, ok := productIDs[strings.TrimSpace(label)]
	return id, ok
}
