package scraper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpustats/models"
	"gpustats/scraper"
)

func candidate(text, label, value string) models.RawCandidate {
	return models.RawCandidate{Text: text, Label: label, ValueText: value, HasValue: value != ""}
}

func TestCollect(t *testing.T) {
	filter := newAmazonFilter()

	t.Run("screens and parses in page order", func(t *testing.T) {
		cands := []models.RawCandidate{
			candidate("RTX 4080 Founders Edition $1099.00", "RTX 4080 Founders Edition", "$1,099.00"),
			candidate("RTX 4080 (Renewed) $899.00", "RTX 4080 (Renewed)", "$899.00"),
			candidate("RTX 4070 Ti $799.00", "RTX 4070 Ti", "$799.00"),
			candidate("RTX 4080 Gaming OC", "RTX 4080 Gaming OC", ""),
			candidate("RTX 4080 Ventus See options", "RTX 4080 Ventus", "See options"),
			candidate("ASUS RTX 4080 TUF $1199.00", "ASUS RTX 4080 TUF", "$1,199.00"),
		}

		c := scraper.Collect("RTX 4080", cands, scraper.CollectOptions{Filter: filter})

		assert.Equal(t, []float64{1099, 1199}, c.Values())
		require.Len(t, c.Skips, 4)
		assert.Equal(t, models.SkipMarker, c.Skips[0].Reason)
		assert.Equal(t, 1, c.Skips[0].Index)
		assert.Equal(t, models.SkipTokens, c.Skips[1].Reason)
		assert.Equal(t, models.SkipNoValue, c.Skips[2].Reason)
		assert.Equal(t, models.SkipUnparsable, c.Skips[3].Reason)
	})

	t.Run("stops at the cap", func(t *testing.T) {
		var cands []models.RawCandidate
		for i := 0; i < 8; i++ {
			cands = append(cands, candidate("RTX 4080", "RTX 4080", "$100"))
		}

		c := scraper.Collect("RTX 4080", cands, scraper.CollectOptions{Filter: filter, Cap: 5})
		assert.Len(t, c.Observations, 5)
		assert.Empty(t, c.Skips)
	})

	t.Run("label matching skips candidates without a title", func(t *testing.T) {
		cands := []models.RawCandidate{
			candidate("RTX 4080 $900", "", "$900"),
			candidate("Shop on eBay RTX 4080", "Lot of cables", "$20"),
			candidate("whatever", "RTX 4080 16GB", "$950"),
		}

		c := scraper.Collect("RTX 4080", cands, scraper.CollectOptions{Filter: filter, MatchLabel: true})

		assert.Equal(t, []float64{950}, c.Values())
		require.Len(t, c.Skips, 2)
		assert.Equal(t, models.SkipNoLabel, c.Skips[0].Reason)
		assert.Equal(t, models.SkipTokens, c.Skips[1].Reason)
	})

	t.Run("no candidates", func(t *testing.T) {
		c := scraper.Collect("RTX 4080", nil, scraper.CollectOptions{Filter: filter})
		assert.Empty(t, c.Observations)
		assert.Empty(t, c.Values())
	})
}
