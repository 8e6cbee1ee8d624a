// Package markdown renders content bodies to HTML.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/htmlsanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is escaped (no WithUnsafe); the output is still
// passed through htmlsanitize so link schemes are checked too.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts markdown to sanitized HTML.
func Render(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return htmlsanitize.Sanitize(buf.String()), nil
}

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	maxSlugLn = 80
)

// Slugify turns a title into a lowercase, hyphen-separated URL segment.
func Slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLn {
		s = strings.TrimRight(s[:maxSlugLn], "-")
	}
	if s == "" {
		s = "untitled"
	}
	return s
}
