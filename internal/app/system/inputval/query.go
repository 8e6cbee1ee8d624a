package inputval

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID parses a path or query id. what names the resource in the
// error message ("group", "activity").
func ParseObjectID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, apierr.Validationf("invalid %s id", what)
	}
	return id, nil
}

// OptionalObjectID parses an optional id query parameter.
func OptionalObjectID(r *http.Request, key string) (*primitive.ObjectID, error) {
	s := query.Get(r, key)
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, apierr.Validationf("invalid %s: must be a valid id", key)
	}
	return &id, nil
}

// Bool parses a boolean query parameter, returning def when absent.
func Bool(r *http.Request, key string, def bool) (bool, error) {
	s := query.Get(r, key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, apierr.Validationf("invalid %s: must be true or false", key)
	}
	return b, nil
}

// Int parses an integer query parameter within [lo, hi], returning def when
// absent.
func Int(r *http.Request, key string, def, lo, hi int) (int, error) {
	s := query.Get(r, key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, apierr.Validationf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

// Enum parses an optional enum query parameter against its allow-list.
func Enum[T ~string](r *http.Request, key string, allowed []T) (T, error) {
	s := query.Get(r, key)
	if s == "" {
		return "", nil
	}
	for _, a := range allowed {
		if string(a) == s {
			return a, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", apierr.Validationf("invalid %s %q: must be one of %s", key, s, strings.Join(names, ", "))
}

// ObjectIDs parses a list of ids from a payload, dropping duplicates.
func ObjectIDs(ss []string, what string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ss))
	seen := make(map[primitive.ObjectID]bool, len(ss))
	for _, s := range ss {
		id, err := ParseObjectID(s, what)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
