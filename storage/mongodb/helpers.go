package mongodb

import (
	"regexp"
	"time"

	"github.com/volatiletech/null/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/darasa/core"
)

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func prefixFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s), Options: "i"}
}

// sortBy renders ordering using the fields allowed by fields; unknown fields are skipped.
func sortBy(ordering []core.DBOrdering, fields map[string]string, fallback bson.D) bson.D {
	sort := make(bson.D, 0, len(ordering))
	for _, ord := range ordering {
		field, ok := fields[ord.Field]
		if !ok {
			continue
		}
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		sort = append(sort, bson.E{Key: field, Value: dir})
	}
	if len(sort) == 0 {
		return fallback
	}
	return sort
}

func intPtr(n null.Int) *int {
	return n.Ptr()
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func float64Ptr(f null.Float64) *float64 {
	return f.Ptr()
}
