package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	got, err := Render("# Sunday\n\nBring your **Bible**.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "<strong>Bible</strong>") {
		t.Errorf("Render = %q", got)
	}
}

func TestRender_EscapesRawHTML(t *testing.T) {
	got, err := Render("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw script survived: %q", got)
	}
}

func TestRender_DropsJavascriptLinks(t *testing.T) {
	got, _ := Render("[click](javascript:alert(1))")
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript link survived: %q", got)
	}
}

func TestRender_Empty(t *testing.T) {
	if got, err := Render("  \n"); got != "" || err != nil {
		t.Errorf("Render(blank) = %q, %v", got, err)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Walking in Faith":          "walking-in-faith",
		"  Easter -- Sunday 2025! ": "easter-sunday-2025",
		"¿?":                        "untitled",
		strings.Repeat("a", 100):    strings.Repeat("a", 80),
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
