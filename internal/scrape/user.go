package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Seller is the enrichment extracted from a seller's profile page. All
// fields are best-effort; Address and Website only exist on Osclass
// profiles.
type Seller struct {
	Name     string
	Location string
	Address  string
	Website  string
}

// ExtractSeller pulls the seller's name and location out of a profile page.
// Unknown generators are handled with the DJ-Classifieds rules.
func ExtractSeller(doc *goquery.Document, gen Generator) Seller {
	if gen == GeneratorOsclass {
		return extractOsclassSeller(doc)
	}
	return extractDJSeller(doc)
}

func extractOsclassSeller(doc *goquery.Document) Seller {
	return Seller{
		Name:     profileField(doc, "li.name", ""),
		Location: profileField(doc, "li.location", "Standort:"),
		Address:  profileField(doc, "li.address", "Adresse:"),
		Website:  profileField(doc, "li.website", ""),
	}
}

func profileField(doc *goquery.Document, selector, label string) string {
	el := doc.Find(selector).First()
	if el.Length() == 0 {
		return ""
	}

	text := collapseSpace(el.Text())
	if label != "" {
		text = strings.TrimSpace(strings.TrimPrefix(text, label))
	}
	return text
}

func extractDJSeller(doc *goquery.Document) Seller {
	var s Seller

	if name := doc.Find(".djc-profile-box h3.el-title").First(); name.Length() > 0 {
		s.Name = collapseSpace(name.Text())
	}

	s.Location = djProfileLocation(doc)

	return s
}

// djProfileLocation walks the profile page heuristically: the location data
// sits in loose elements after the "Standort" heading, ended by the next
// heading of the same level.
func djProfileLocation(doc *goquery.Document) string {
	header := doc.Find("h2.uk-h4").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return strings.Contains(h.Text(), "Standort")
	}).First()
	if header.Length() == 0 {
		return ""
	}

	var airfield, region string

	for sib := header.Next(); sib.Length() > 0; sib = sib.Next() {
		if goquery.NodeName(sib) == "h2" {
			break
		}

		text := strings.TrimPrefix(collapseSpace(sib.Text()), "Europa, ")

		switch {
		case strings.HasPrefix(text, "Flugplatz:"):
			v := strings.TrimSpace(strings.TrimPrefix(text, "Flugplatz:"))
			if v != "" && v != noAirfield {
				airfield = v
			}
		case sib.HasClass("reg_path") || sib.Find(".reg_path").Length() > 0:
			if text != "" && text != noRegionSentinel {
				region = text
			}
		}
	}

	return combineLocation(airfield, region)
}
