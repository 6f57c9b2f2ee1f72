package institutionstore

import (
	"github.com/dalemusser/admithub/internal/domain/curriculum"
	"go.mongodb.org/mongo-driver/bson"
)

// The filters below query the stored aggregates, so they match both records
// written by SaveConfig and legacy records that only carry
// boards_by_standard.

// FilterByBoard matches institutions offering board.
func FilterByBoard(board string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"boards_offered": board},
		bson.M{"boards_by_standard.1-5": board},
		bson.M{"boards_by_standard.6-10": board},
		bson.M{"boards_by_standard.11-12": board},
	}}
}

// FilterByStandard matches institutions where at least one board covers r.
func FilterByStandard(r curriculum.StandardRange) bson.M {
	return bson.M{"boards_by_standard." + string(r) + ".0": bson.M{"$exists": true}}
}

// FilterAdmissionsOpen matches on the institution-level admissions flag.
// Records written before the flag existed count as open.
func FilterAdmissionsOpen(open bool) bson.M {
	if open {
		return bson.M{"admissions_open": bson.M{"$ne": false}}
	}
	return bson.M{"admissions_open": false}
}

// FilterType matches an institution type.
func FilterType(t string) bson.M {
	return bson.M{"type": t}
}

// And combines filters; empty filters are skipped.
func And(filters ...bson.M) bson.M {
	var parts bson.A
	for _, f := range filters {
		if len(f) > 0 {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	}
	return bson.M{"$and": parts}
}
