package notify

import (
	"fmt"
	"html"
	"strings"
)

// ConsoleSummary renders the plain-text announcement written to stdout.
func (p Payload) ConsoleSummary() string {
	var b strings.Builder

	fmt.Fprintf(&b, " - %s\n", p.Title)
	if p.Price != "" {
		fmt.Fprintf(&b, "   💶  %s\n", p.Price)
	}
	if seller := p.consoleSeller(); seller != "" {
		fmt.Fprintf(&b, "   👤  %s\n", seller)
	}
	fmt.Fprintf(&b, "   %s\n", p.Link)

	return b.String()
}

func (p Payload) consoleSeller() string {
	switch {
	case p.SellerName != "" && p.SellerLocation != "":
		return p.SellerName + ", " + p.SellerLocation
	case p.SellerName != "":
		return p.SellerName
	default:
		return p.SellerLocation
	}
}

// RichBody renders the full announcement in Telegram's HTML subset.
func (p Payload) RichBody() string {
	return p.body(true)
}

// ShortBody is RichBody without the description paragraph, used when the
// full body would exceed the endpoint's length ceiling.
func (p Payload) ShortBody() string {
	return p.body(false)
}

func (p Payload) body(withDescription bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<a href=%q><b>%s</b></a>\n", p.Link, html.EscapeString(p.Title))

	if p.Price != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(p.Price))
	}

	if seller := p.richSeller(); seller != "" {
		b.WriteString(seller + "\n")
	}

	if withDescription && p.Description != "" {
		b.WriteString("\n" + html.EscapeString(p.Description) + "\n")
	}

	b.WriteString("\n" + p.Link)

	return b.String()
}

// richSeller builds the seller line: a person marker with the name (linked
// to the profile when known), or a globe marker when only a location is
// known.
func (p Payload) richSeller() string {
	if p.SellerName != "" {
		name := html.EscapeString(p.SellerName)
		if p.SellerLink != "" {
			name = fmt.Sprintf("<a href=%q>%s</a>", p.SellerLink, name)
		}
		if p.SellerLocation != "" {
			return fmt.Sprintf("👤 %s, %s", name, html.EscapeString(p.SellerLocation))
		}
		return "👤 " + name
	}

	if p.SellerLocation != "" {
		return "🌍 " + html.EscapeString(p.SellerLocation)
	}

	return ""
}
