package htmltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "removes tags",
			in:   "<p>Hello <b>World</b></p>",
			want: "Hello World",
		},
		{
			name: "decodes nbsp to plain space",
			in:   "1.500&nbsp;€",
			want: "1.500 €",
		},
		{
			name: "tolerates unclosed tags",
			in:   "<div><span>broken markup",
			want: "broken markup",
		},
		{
			name: "drops comments",
			in:   "before<!-- hidden -->after",
			want: "beforeafter",
		},
		{
			name: "plain text unchanged",
			in:   "LS4 for sale",
			want: "LS4 for sale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripTags(tt.in))
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "tidy", Sanitize("  <p> tidy </p>  "))
	})

	t.Run("caps long text with ellipsis", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("a", 5000)
		got := Sanitize(long)
		assert.Len(t, got, descriptionLimit-1+len("…"))
		assert.True(t, strings.HasSuffix(got, "…"))
	})

	t.Run("does not split multi-byte runes at the cap", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("ä", 3000) // 6000 bytes, boundary falls mid-rune
		got := Sanitize(long)
		assert.True(t, strings.HasSuffix(got, "…"))
		for _, r := range got {
			assert.NotEqual(t, '�', r)
		}
	})

	t.Run("short text passes through", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "short", Sanitize("short"))
	})
}

func TestFindImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "finds first src attribute",
			in:     `<p><img src="https://example.com/a.jpg"> <img src="https://example.com/b.jpg"></p>`,
			want:   "https://example.com/a.jpg",
			wantOK: true,
		},
		{
			name: "no image",
			in:   "<p>text only</p>",
		},
		{
			name: "src without leading space not matched",
			in:   `<img data-src="x"osrc="y">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := FindImageURL(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
