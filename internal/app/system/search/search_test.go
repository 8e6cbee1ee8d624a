package search

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestContains_EscapesMeta(t *testing.T) {
	re := Contains("a.b*(c)")
	if re.Pattern != `a\.b\*\(c\)` || re.Options != "i" {
		t.Errorf("Contains = %+v", re)
	}
}

func TestAnyField(t *testing.T) {
	f := AnyField(bson.M{"church_id": 1}, "  Easter  ", "title", "content")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("$or = %#v", f["$or"])
	}
	if f["church_id"] != 1 {
		t.Error("existing keys dropped")
	}

	f = AnyField(bson.M{}, "   ", "title")
	if _, ok := f["$or"]; ok {
		t.Error("blank search should not add $or")
	}
}

func TestClean_Truncates(t *testing.T) {
	if got := Clean(strings.Repeat("x", 150)); len(got) != MaxLen {
		t.Errorf("len = %d", len(got))
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		q    string
		vals []string
		want bool
	}{
		{"", []string{"anything"}, true},
		{"YOUTH", []string{"Youth outreach"}, true},
		{"choir", []string{"Youth outreach", "camp"}, false},
	}
	for _, tt := range tests {
		if got := MatchesAny(tt.q, tt.vals...); got != tt.want {
			t.Errorf("MatchesAny(%q, %v) = %v", tt.q, tt.vals, got)
		}
	}
}
