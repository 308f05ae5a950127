package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const osclassProfilePage = `<html>
<head><meta name="generator" content="Osclass 3.8.0"></head>
<body>
  <ul>
    <li class="name">Max Mustermann</li>
    <li class="address">Adresse: Flugplatzstraße 1</li>
    <li class="location">Standort: Aalen-Elchingen</li>
    <li class="website"><a href="https://example.com">example.com</a></li>
  </ul>
</body>
</html>`

const djProfilePage = `<html>
<head><meta name="generator" content="Joomla! - Open Source Content Management"></head>
<body>
  <div class="djc-profile-box"><h3 class="el-title">Segelflugverein Musterstadt</h3></div>
  <h2 class="uk-h4">Standort</h2>
  <p>Flugplatz: Musterstadt-Süd</p>
  <p><span class="reg_path">Europa, Deutschland, Bayern</span></p>
  <h2 class="uk-h4">Kontakt</h2>
  <p>Flugplatz: should not be picked up</p>
</body>
</html>`

func TestExtractSeller_Osclass(t *testing.T) {
	t.Parallel()

	s := ExtractSeller(docFrom(t, osclassProfilePage), GeneratorOsclass)

	assert.Equal(t, "Max Mustermann", s.Name)
	assert.Equal(t, "Aalen-Elchingen", s.Location)
	assert.Equal(t, "Flugplatzstraße 1", s.Address)
	assert.Equal(t, "example.com", s.Website)
}

func TestExtractSeller_DJClassifieds(t *testing.T) {
	t.Parallel()

	s := ExtractSeller(docFrom(t, djProfilePage), GeneratorDJClassifieds)

	assert.Equal(t, "Segelflugverein Musterstadt", s.Name)
	// The scan stops at the next heading, so the Kontakt section's text is
	// ignored.
	assert.Equal(t, "Musterstadt-Süd, Deutschland, Bayern", s.Location)
	assert.Empty(t, s.Address)
	assert.Empty(t, s.Website)
}

func TestExtractSeller_UnknownGeneratorUsesDJRules(t *testing.T) {
	t.Parallel()

	s := ExtractSeller(docFrom(t, djProfilePage), GeneratorUnknown)

	assert.Equal(t, "Segelflugverein Musterstadt", s.Name)
	assert.Equal(t, "Musterstadt-Süd, Deutschland, Bayern", s.Location)
}

func TestExtractSeller_DJLocationSentinels(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<h2 class="uk-h4">Standort</h2>
		<p>Flugplatz: not available</p>
		<p><span class="reg_path">Antarktis, Antarktis</span></p>
	</body></html>`

	s := ExtractSeller(docFrom(t, page), GeneratorDJClassifieds)
	assert.Empty(t, s.Location)
}

func TestExtractSeller_DJNoStandortHeading(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<div class="djc-profile-box"><h3 class="el-title">Verein</h3></div>
		<h2 class="uk-h4">Kontakt</h2>
	</body></html>`

	s := ExtractSeller(docFrom(t, page), GeneratorDJClassifieds)
	assert.Equal(t, "Verein", s.Name)
	assert.Empty(t, s.Location)
}

func TestExtractSeller_EmptyPage(t *testing.T) {
	t.Parallel()

	for _, gen := range []Generator{GeneratorOsclass, GeneratorDJClassifieds} {
		s := ExtractSeller(docFrom(t, "<html><body></body></html>"), gen)
		assert.Equal(t, Seller{}, s)
	}
}
