package verify

import (
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
)

// Page is a fetched publisher page.
type Page struct {
	URL  string
	Text string
	HTML string
}

// LiveData is what a scraper could read off a publisher page. Empty fields
// were not found.
type LiveData struct {
	PublicationDate string
	StabilityYear   string
	Edition         string
	Version         string
	Price           string
	Withdrawn       bool
}

var (
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	yearPattern        = regexp.MustCompile(`\d{4}`)
	editionPattern     = regexp.MustCompile(`\d+\.?\d*`)
	chfPricePattern    = regexp.MustCompile(`CHF\s*([\d,']+\.?-?)`)
	ieeeTitlePattern   = regexp.MustCompile(`IEEE\s+\d+[A-Za-z]*-(\d{4})`)
	centuryYearPattern = regexp.MustCompile(`20\d{2}`)
	symbolPricePattern = regexp.MustCompile(`[\$€£]\s*[\d,]+\.?\d*`)
	bsiYearPattern     = regexp.MustCompile(`:(\d{4})`)
)

// parseIEC reads an IEC webstore product page.
func parseIEC(page Page) LiveData {
	var data LiveData
	for _, line := range strings.Split(page.Text, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if strings.Contains(lower, "publication date") {
			if m := isoDatePattern.FindString(line); m != "" {
				data.PublicationDate = m
			}
		}
		if strings.Contains(lower, "stability date") {
			if m := yearPattern.FindString(line); m != "" {
				data.StabilityYear = m
			}
		}
		if strings.HasPrefix(lower, "edition") && !strings.Contains(lower, "amended") {
			if m := editionPattern.FindString(line); m != "" {
				data.Edition = m
			}
		}
	}

	priceText := page.Text
	el := selectFirst(parseHTML(page.HTML), byClassContains("price-container"), byClassContains("product-price"), byAttr("itemprop", "price"))
	if t := textOf(el); chfPricePattern.MatchString(t) {
		priceText = t
	}
	if m := chfPricePattern.FindStringSubmatch(priceText); m != nil {
		data.Price = "CHF " + m[1]
	}
	return data
}

// parseIEEE reads the publication year from an IEEE standard page title.
func parseIEEE(page Page) LiveData {
	var data LiveData
	if title := selectFirst(parseHTML(page.HTML), byTag(atom.Title)); title != nil {
		if m := ieeeTitlePattern.FindStringSubmatch(textOf(title)); m != nil {
			data.Version = m[1]
		}
	}
	return data
}

// parseAccuristech reads an Accuris (NEMA, DNV) store page. The year is taken
// from a 20xx run so the document number is never mistaken for it.
func parseAccuristech(page Page) LiveData {
	var data LiveData
	doc := parseHTML(page.HTML)
	if title := selectFirst(doc, byTag(atom.H1), byClassContains("product-title"), byTag(atom.Title)); title != nil {
		data.Version = centuryYearPattern.FindString(textOf(title))
	}
	if price := selectFirst(doc, byClassContains("price")); price != nil {
		data.Price = symbolPricePattern.FindString(strings.Join(strings.Fields(textOf(price)), ""))
	}
	return data
}

// parseBSI reads a BSI Knowledge page.
func parseBSI(page Page) LiveData {
	var data LiveData
	if h1 := selectFirst(parseHTML(page.HTML), byTag(atom.H1)); h1 != nil {
		if m := bsiYearPattern.FindStringSubmatch(textOf(h1)); m != nil {
			data.Version = m[1]
		}
	}
	data.Withdrawn = strings.Contains(page.Text, "Withdrawn")
	return data
}

var genericVersionPatterns = []struct {
	pattern *regexp.Regexp
	prefix  string
}{
	{regexp.MustCompile(`(?i)Issue\s+(\d+)`), "Issue"},
	{regexp.MustCompile(`(?i)Edition\s+(\d+\.?\d*)`), "Ed."},
	{regexp.MustCompile(`(?i)Version\s+(\d+\.?\d*)`), "Ver."},
	{regexp.MustCompile(`(?i)Rev\.?\s*(\d+)`), "Rev."},
	{regexp.MustCompile(`(?i):\s*(20\d{2})\b`), ""},
}

var genericPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\$€£¥]\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`([\d,]+\.?\d*)\s*(?:USD|EUR|GBP)`),
}

// parseGeneric recognises common edition markers and prices on any page.
func parseGeneric(page Page) LiveData {
	var data LiveData
	for _, vp := range genericVersionPatterns {
		if m := vp.pattern.FindStringSubmatch(page.Text); m != nil {
			data.Edition = m[1]
			data.Version = strings.TrimSpace(vp.prefix + " " + m[1])
			break
		}
	}
	for _, pattern := range genericPricePatterns {
		if m := pattern.FindString(page.Text); m != "" {
			data.Price = m
			break
		}
	}
	return data
}
