package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cedar-sandal", Slugify("  Cedar Sandal "))
	assert.Equal(t, "vines-branches-2024", Slugify("Vines & Branches -- 2024!"))
	assert.Equal(t, "", Slugify("***"))
}

func TestDefaultSKU(t *testing.T) {
	sku := DefaultSKU("4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a", "Olive Grove Leather Sandal")
	assert.Equal(t, "VNB-4E7D4E5C-olive-grov", sku)
}

func TestNormalizeKeepsExplicitFields(t *testing.T) {
	p := Product{ID: "abc", Name: "Fig Tote", Slug: "custom", SKU: "SKU-1"}
	p.Normalize()
	assert.Equal(t, "custom", p.Slug)
	assert.Equal(t, "SKU-1", p.SKU)

	q := Product{ID: "abc", Name: "Fig Tote"}
	q.Normalize()
	assert.Equal(t, "fig-tote", q.Slug)
	assert.Equal(t, "VNB-ABC-fig-tote", q.SKU)
}

func TestQueryNormalize(t *testing.T) {
	q := Query{Limit: 500, Offset: -3, Ordering: "drop table"}.Normalize()
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, "-created_at", q.Ordering)

	q = Query{Limit: 5, Ordering: "-price"}.Normalize()
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, "-price", q.Ordering)
}
