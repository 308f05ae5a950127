package scrape

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDetectGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		html    string
		want    Generator
		wantRaw string
	}{
		{
			name:    "osclass",
			html:    `<html><head><meta name="generator" content="Osclass 3.8.0"></head></html>`,
			want:    GeneratorOsclass,
			wantRaw: "Osclass 3.8.0",
		},
		{
			name:    "joomla maps to dj-classifieds",
			html:    `<html><head><meta name="generator" content="Joomla! - Open Source Content Management"></head></html>`,
			want:    GeneratorDJClassifieds,
			wantRaw: "Joomla! - Open Source Content Management",
		},
		{
			name:    "unrecognized generator",
			html:    `<html><head><meta name="generator" content="WordPress 6.4"></head></html>`,
			want:    GeneratorUnknown,
			wantRaw: "WordPress 6.4",
		},
		{
			name: "no generator meta",
			html: `<html><head><title>bare</title></head></html>`,
			want: GeneratorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, raw := DetectGenerator(docFrom(t, tt.html))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestGeneratorString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "osclass", GeneratorOsclass.String())
	assert.Equal(t, "dj-classifieds", GeneratorDJClassifieds.String())
	assert.Equal(t, "unknown", GeneratorUnknown.String())
}
