// server/internal/repository/filters.go
package repository

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"fsic-records-api-server/internal/compliance"
	"fsic-records-api-server/internal/models"
)

// DueFilter selects active establishments due this month that have not been
// issued this calendar year. The month regex is compliance.MonthPattern, the
// same one compliance.IsDueListed evaluates.
func DueFilter(now time.Time) bson.M {
	return bson.M{
		"dueDate.month":    bson.M{"$regex": compliance.MonthPattern(now.Month()), "$options": "i"},
		"isActive":         true,
		"lastIssuanceDate": bson.M{"$lt": compliance.StartOfYear(now)},
	}
}

// InspectionsTodayFilter mirrors compliance.HasInspectionToday.
func InspectionsTodayFilter(now time.Time) bson.M {
	start, end := compliance.DayBounds(now)
	return bson.M{
		"inspectionDate": bson.M{"$gte": start, "$lt": end},
		"isActive":       true,
	}
}

// ListFilter builds the establishment listing query.
func ListFilter(f models.EstablishmentFilter) bson.M {
	filter := bson.M{}
	if f.Active != nil {
		filter["isActive"] = *f.Active
	}
	if f.Search != "" {
		pattern := primitiveRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"fsicNumber": pattern},
			bson.M{"establishmentName": pattern},
			bson.M{"ownerName": pattern},
		}
	}
	return filter
}

func primitiveRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
