package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"momo/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageResolver_URL(t *testing.T) {
	r := catalog.NewImageResolver(map[string]string{"veg_steam.jpg": "https://cdn.example.com/momo_images/veg_steam.jpg"}, "/static/")

	assert.Equal(t, "", r.URL(""))
	assert.Equal(t, "https://elsewhere.example.com/a.jpg", r.URL("https://elsewhere.example.com/a.jpg"))
	assert.Equal(t, "http://plain.example.com/a.jpg", r.URL("http://plain.example.com/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/momo_images/veg_steam.jpg", r.URL("veg_steam.jpg"))
	assert.Equal(t, "/static/kothey.jpg", r.URL("kothey.jpg"))
}

func TestLoadImageResolver(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "cloudinary_map.json")
	require.NoError(t, os.WriteFile(mapPath, []byte(`{"kothey.jpg": "https://cdn.example.com/kothey.jpg"}`), 0o644))

	r := catalog.LoadImageResolver(mapPath, "/static")
	assert.Equal(t, "https://cdn.example.com/kothey.jpg", r.URL("kothey.jpg"))

	missing := catalog.LoadImageResolver(filepath.Join(dir, "absent.json"), "/static")
	assert.Equal(t, "/static/kothey.jpg", missing.URL("kothey.jpg"))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))
	assert.Equal(t, "/static/kothey.jpg", catalog.LoadImageResolver(bad, "/static").URL("kothey.jpg"))
}

func TestLoad(t *testing.T) {
	c, err := catalog.Load(catalog.NewImageResolver(nil, "/static"))
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	for _, item := range all {
		assert.NotEmpty(t, item.ImageURL, item.ID)
		assert.Greater(t, item.Price, 0.0, item.ID)
	}

	veg := c.ByCategory("veg")
	require.NotEmpty(t, veg)
	for _, item := range veg {
		assert.Equal(t, "veg", item.Category)
	}
	assert.NotEmpty(t, c.Featured())
	assert.Empty(t, c.ByCategory("dessert"))
}

func TestParse_RejectsBadMenus(t *testing.T) {
	images := catalog.NewImageResolver(nil, "/static")

	_, err := catalog.Parse([]byte("categories: [{id: veg}]\nitems: [{id: a, category: veg}, {id: a, category: veg}]"), images)
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("categories: [{id: veg}]\nitems: [{id: a, category: meat}]"), images)
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("items: ["), images)
	assert.Error(t, err)
}
