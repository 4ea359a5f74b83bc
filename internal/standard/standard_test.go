package standard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "IEC 60068-2-1", NormalizeName("  iec 60068-2-1 "))
	assert.Equal(t, NormalizeName("IEC 60068-2-1"), NormalizeName("ＩＥＣ 60068-2-1"))
}

func TestNormalizeSearch(t *testing.T) {
	assert.Equal(t, "iec6006821", NormalizeSearch("IEC 60068-2-1"))
	assert.Equal(t, "saltmist", NormalizeSearch("Salt_Mist"))
}

func TestMatchesCoversSubcategoryLabel(t *testing.T) {
	item := Standard{Name: "IEC 60068-2-52", Description: "Salt mist, cyclic", StressType: "salt-mist"}

	assert.True(t, item.Matches("60068 2 52"))
	assert.True(t, item.Matches("saltmist"))
	assert.True(t, item.Matches("鹽霧"))
	assert.True(t, item.Matches("other"), "blank category should match the default label")
	assert.False(t, item.Matches("vibration"))
	assert.True(t, item.Matches("   "))
}

func TestParseExpiryVariants(t *testing.T) {
	stability := ParseExpiry("2027 (Stability)")
	assert.Equal(t, ExpiryStability, stability.Kind)
	assert.Equal(t, 2027, stability.Year)
	assert.Equal(t, "2027 (Stability)", stability.String())

	compact := ParseExpiry("2029(Stability)")
	assert.Equal(t, "2029 (Stability)", compact.String())

	exact := ParseExpiry("2026/5/1")
	assert.Equal(t, ExpiryExact, exact.Kind)
	assert.Equal(t, "2026-05-01", exact.String())

	raw := ParseExpiry("until withdrawn")
	assert.Equal(t, ExpiryUnparsed, raw.Kind)
	assert.Equal(t, "until withdrawn", raw.String())

	assert.True(t, ParseExpiry("  ").IsZero())
}

func TestExpiryJSONKeepsWireForm(t *testing.T) {
	var item Standard
	require.NoError(t, json.Unmarshal([]byte(`{"id":"s1","expiryDate":"2027 (Stability)"}`), &item))
	assert.Equal(t, ExpiryStability, item.ExpiryDate.Kind)

	encoded, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"expiryDate":"2027 (Stability)"`)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"s2","expiryDate":null}`), &item))
	assert.True(t, item.ExpiryDate.IsZero())
}

func TestExpiredAndExpiring(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	assert.False(t, StabilityExpiry(2026).Expired(now))
	assert.True(t, StabilityExpiry(2025).Expired(now))
	assert.True(t, StabilityExpiry(2026).ExpiringBy(now))
	assert.False(t, StabilityExpiry(2027).ExpiringBy(now))

	assert.True(t, ParseExpiry("2026-10-18").Expired(now))
	assert.False(t, ParseExpiry("2026-10-19").Expired(now))
	assert.True(t, ParseExpiry("2026-12-31").ExpiringBy(now))

	assert.False(t, ParseExpiry("garbage").Expired(now))
	assert.False(t, Expiry{}.ExpiringBy(now))
}

func TestFormatDateNeverFails(t *testing.T) {
	assert.Equal(t, "-", FormatDate(""))
	assert.Equal(t, "2027", FormatDate("2027 (Stability)"))
	assert.Equal(t, "2024/3/9", FormatDate("2024-03-09"))
	assert.Equal(t, "2019", FormatDate("sometime in 2019"))
	assert.Equal(t, "n/a", FormatDate("n/a"))
	assert.Equal(t, "Stability", FormatDate("Stability"))
}

func TestCostInTWD(t *testing.T) {
	assert.InDelta(t, 140*39.60, CostInTWD("CHF 140"), 0.001)
	assert.InDelta(t, 60*31.47, CostInTWD("USD 60"), 0.001)
	assert.InDelta(t, 334*39.80, CostInTWD("£334"), 0.001)
	assert.InDelta(t, 1234.5*39.60, CostInTWD("CHF 1'234.50"), 0.001)
	assert.Zero(t, CostInTWD("Free"))
	assert.Zero(t, CostInTWD(""))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	items := []Standard{
		{ID: "a", Cost: "CHF 100", ExpiryDate: StabilityExpiry(2026)},
		{ID: "b", Cost: "USD 10", ExpiryDate: StabilityExpiry(2025)},
		{ID: "c", Cost: "CHF 999", ExpiryDate: StabilityExpiry(2030)},
		{ID: "d", Cost: "free", ExpiryDate: ParseExpiry("2026-01-01")},
	}

	stats := Summarize(items, now)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Expired)
	assert.Equal(t, 3, stats.ExpiringThisYear)
	assert.InDelta(t, 100*39.60+10*31.47, stats.RenewalCostTWD, 0.001)
	assert.Equal(t, "NT$ 4,275 (Est.)", stats.RenewalCostLabel)
}

func TestSearchURL(t *testing.T) {
	cases := map[string]string{
		"IEC 60068-2-1": "IEC+60068-2-1+IEC+webstore",
		"ISO 2248":      "ISO+2248+ISO+standard",
		"IEEE 1613":     "IEEE+1613+IEEE+standard",
		"EN 50155":      "EN+50155+EN+standard+latest+version",
		"NEMA TS 2":     "NEMA+TS+2+standard",
		"DQA-MOXA-001":  "DQA-MOXA-001+standard",
		"ISTA 2A":       "ISTA+2A+standard+latest+version",
	}
	for name, query := range cases {
		assert.Equal(t, "https://www.google.com/search?q="+query, SearchURL(name), name)
	}

	withSource := Standard{Name: "IEC 60529", SourceURL: "https://webstore.iec.ch/en/publication/2452"}
	assert.Equal(t, withSource.SourceURL, withSource.LookupURL())
}

func TestTaxonomy(t *testing.T) {
	assert.Equal(t, "溫度類", ResolveSubcategory("temperature-cyclic").Name)
	assert.Equal(t, "機構類", ResolveSubcategory("shock").Name)
	assert.Equal(t, "其他", ResolveSubcategory("").Name)
	assert.Equal(t, 99, ResolveSubcategory("unknown").Order)

	order := DefaultSubcategoryOrder()
	require.Len(t, order, 11)
	assert.Equal(t, "溫度類", order[0])
	assert.Equal(t, "其他", order[len(order)-1])

	assert.Equal(t, []string{"MOXA Standard", "Marine Standard", "Railway Standard", "Power Station", "Other"}, DefaultCategoryOrder())

	sub, ok := SubcategoryByName("防護類")
	require.True(t, ok)
	assert.Equal(t, 7, sub.Order)
}

func TestSeedIsConsistent(t *testing.T) {
	items, err := Seed()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	ids := map[string]bool{}
	names := map[string]bool{}
	for _, item := range items {
		assert.False(t, ids[item.ID], "duplicate id %s", item.ID)
		assert.False(t, names[NormalizeName(item.Name)], "duplicate name %s", item.Name)
		ids[item.ID] = true
		names[NormalizeName(item.Name)] = true
	}

	first := items[0]
	assert.Equal(t, ExpiryStability, first.ExpiryDate.Kind)
}
