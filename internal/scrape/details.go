package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// siteOrigin resolves site-relative seller links. Both generators serve
// from the same origin.
const siteOrigin = "https://www.segelflug.de"

// Placeholder values the site emits when a field was never filled in.
const (
	noPhotoSuffix    = "/no_photo.gif"
	noAirfield       = "not available"
	noRegionSentinel = "Antarktis, Antarktis"
)

// Details is the enrichment extracted from a listing's detail page. Every
// field is best-effort; a missing selector match leaves the field empty.
type Details struct {
	Price      string
	Location   string
	PhotoURLs  []string
	SellerLink string
}

// ExtractDetails pulls price, photos, location, and the seller profile link
// out of a detail page. Unknown generators are handled with the
// DJ-Classifieds rules; the caller is responsible for logging that fallback.
func ExtractDetails(doc *goquery.Document, gen Generator) Details {
	if gen == GeneratorOsclass {
		return extractOsclassDetails(doc)
	}
	return extractDJDetails(doc)
}

func extractOsclassDetails(doc *goquery.Document) Details {
	var d Details

	// The price value and currency unit live in sibling fragments next to
	// the money icon; the parent's text joins them.
	if icon := doc.Find(".fa-money").First(); icon.Length() > 0 {
		d.Price = normalizePrice(icon.Parent().Text())
	}

	doc.Find(".item-photos .thumbs a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.HasSuffix(href, noPhotoSuffix) {
			return
		}
		d.PhotoURLs = append(d.PhotoURLs, href)
	})

	if loc := doc.Find("#item_location").First(); loc.Length() > 0 {
		text := strings.TrimPrefix(collapseSpace(loc.Text()), "Standort:")
		d.Location = strings.TrimSpace(text)
	}

	d.SellerLink = sellerLink(doc, `a[href*="action=pub_profile"]`)

	return d
}

func extractDJDetails(doc *goquery.Document) Details {
	var d Details

	if price := doc.Find(".djc-price").First(); price.Length() > 0 {
		d.Price = normalizePrice(price.Text())
	}

	doc.Find(".djc-image-gallery img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			d.PhotoURLs = append(d.PhotoURLs, src)
		}
	})

	d.Location = combineLocation(djAirfield(doc.Selection), djRegion(doc.Selection))
	d.SellerLink = sellerLink(doc, `a[href*="/profil/"]`)

	return d
}

func sellerLink(doc *goquery.Document, selector string) string {
	href, ok := doc.Find(selector).First().Attr("href")
	if !ok {
		return ""
	}
	return absoluteURL(href)
}

// djAirfield reads the airfield name next to the map-marker icon.
func djAirfield(root *goquery.Selection) string {
	icon := root.Find(".fa-map-marker").First()
	if icon.Length() == 0 {
		return ""
	}

	text := collapseSpace(icon.Parent().Text())
	text = strings.TrimSpace(strings.TrimPrefix(text, "Flugplatz:"))
	if text == "" || text == noAirfield {
		return ""
	}
	return text
}

// djRegion reads the region breadcrumb, dropping the redundant continent
// prefix.
func djRegion(root *goquery.Selection) string {
	marker := root.Find(".reg_path").First()
	if marker.Length() == 0 {
		return ""
	}

	text := collapseSpace(marker.Text())
	if text == "" {
		text = collapseSpace(marker.Parent().Text())
	}
	text = strings.TrimPrefix(text, "Europa, ")
	if text == "" || text == noRegionSentinel {
		return ""
	}
	return text
}

func combineLocation(airfield, region string) string {
	switch {
	case airfield != "" && region != "":
		return airfield + ", " + region
	case airfield != "":
		return airfield
	default:
		return region
	}
}

func normalizePrice(text string) string {
	text = collapseSpace(text)
	text = strings.ReplaceAll(text, "Euro €", "€")
	return strings.TrimSpace(text)
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// absoluteURL resolves a possibly site-relative href against the site
// origin. Unparseable hrefs are returned as-is.
func absoluteURL(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(siteOrigin + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
