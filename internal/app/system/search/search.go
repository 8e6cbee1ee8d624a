// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxLen bounds the length of a search term.
const MaxLen = 100

// Clean trims and truncates a raw search term.
func Clean(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > MaxLen {
		q = q[:MaxLen]
	}
	return q
}

// Contains is a case-insensitive substring regex for q with metacharacters
// escaped.
func Contains(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

// Prefix matches folded values (the *_ci fields) starting with q.
func Prefix(q string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(text.Fold(q))}
}

// AnyField adds an $or of case-insensitive substring matches on fields to
// filter. An empty q leaves filter unchanged.
func AnyField(filter bson.M, q string, fields ...string) bson.M {
	q = Clean(q)
	if q == "" || len(fields) == 0 {
		return filter
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: Contains(q)})
	}
	filter["$or"] = or
	return filter
}

// MatchesAny reports whether q occurs case-insensitively in any of vals.
// Used for in-memory filtering of embedded arrays.
func MatchesAny(q string, vals ...string) bool {
	q = strings.ToLower(Clean(q))
	if q == "" {
		return true
	}
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}
