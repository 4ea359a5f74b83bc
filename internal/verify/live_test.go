package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

const iecHTML = `<html><head><title>IEC 60068-2-1:2007 | IEC Webstore</title><script>var x = "Edition 99";</script></head>
<body>
  <h1>IEC 60068-2-1:2007</h1>
  <div class="details">
    <p>Publication date 2007-03-29</p>
    <p>Stability date 2027</p>
    <p>Edition 6.0</p>
    <p>Edition amended 2.1</p>
  </div>
  <div class="price-container"><span class="price">CHF 140.-</span></div>
</body></html>`

func TestVisibleTextDropsScriptsAndBreaksBlocks(t *testing.T) {
	text := visibleText(parseHTML(iecHTML))
	assert.NotContains(t, text, "Edition 99")
	assert.Contains(t, text, "Publication date 2007-03-29\nStability date 2027\nEdition 6.0")
}

func TestParseIEC(t *testing.T) {
	page := Page{HTML: iecHTML, Text: visibleText(parseHTML(iecHTML))}
	live := parseIEC(page)
	assert.Equal(t, "2007-03-29", live.PublicationDate)
	assert.Equal(t, "2027", live.StabilityYear)
	assert.Equal(t, "6.0", live.Edition)
	assert.Equal(t, "CHF 140.-", live.Price)
}

func TestParseIECPriceFallsBackToText(t *testing.T) {
	live := parseIEC(Page{Text: "Buy now\nCHF 1'234.- excl. VAT"})
	assert.Equal(t, "CHF 1'234.-", live.Price)
}

func TestParseIEEE(t *testing.T) {
	live := parseIEEE(Page{HTML: `<html><head><title>IEEE 1613-2009 - IEEE Standard Environmental</title></head></html>`})
	assert.Equal(t, "2009", live.Version)
}

func TestParseAccuristechPrefersCenturyYear(t *testing.T) {
	html := `<html><body><h1>NEMA TS 2-2021 Traffic Controller Assemblies</h1><div class="product-price">$ 1,065.00</div></body></html>`
	live := parseAccuristech(Page{HTML: html})
	assert.Equal(t, "2021", live.Version)
	assert.Equal(t, "$1,065.00", live.Price)
}

func TestParseBSI(t *testing.T) {
	live := parseBSI(Page{HTML: `<h1>BS EN 50155:2021 Railway applications</h1>`, Text: "Status: Withdrawn"})
	assert.Equal(t, "2021", live.Version)
	assert.True(t, live.Withdrawn)
}

func TestParseGenericPatternPriority(t *testing.T) {
	live := parseGeneric(Page{Text: "GR-63-CORE Issue 5, Version 2.0, price $ 990"})
	assert.Equal(t, "Issue 5", live.Version)
	assert.Equal(t, "5", live.Edition)
	assert.Equal(t, "$ 990", live.Price)

	live = parseGeneric(Page{Text: "ISTA 2A: 2011 overview, 120 USD"})
	assert.Equal(t, "2011", live.Version)
	assert.Equal(t, "120 USD", live.Price)

	assert.Equal(t, LiveData{}, parseGeneric(Page{Text: "nothing here"}))
}

func TestCompareLive(t *testing.T) {
	local := standard.Standard{
		Version:       "Ed. 6.0",
		EffectiveDate: "2007/3/29",
		Cost:          "CHF 140",
		ExpiryDate:    standard.StabilityExpiry(2026),
	}
	live := LiveData{Edition: "6", PublicationDate: "2007-03-29", Price: "CHF 140.-", StabilityYear: "2027"}

	issues := compareLive(local, live)
	assert.Equal(t, []feed.Issue{{Field: feed.FieldStability, Local: "2026 (Stability)", Live: "2027"}}, issues)

	issues = compareLive(standard.Standard{}, LiveData{Edition: "7.0", Price: "CHF 155"})
	assert.Equal(t, []string{
		"Edition: Local='(empty)' vs Live='7.0'",
		"Cost: Local='(empty)' vs Live='CHF 155'",
	}, issueStrings(issues))

	assert.Empty(t, compareLive(local, LiveData{}))
}

func TestSameEdition(t *testing.T) {
	assert.True(t, sameEdition("7", "7.0"))
	assert.False(t, sameEdition("7.1", "7.0"))
	assert.True(t, sameEdition("A", "a"))

	same, ok := sameMajor("Ed. 7.1", "Edition 7")
	assert.True(t, ok)
	assert.True(t, same)
	_, ok = sameMajor("", "7")
	assert.False(t, ok)
}

func issueStrings(issues []feed.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.String())
	}
	return out
}
