package i18n

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/en.json": {Data: []byte(`{"nav.home":"Home","card.isps":"ISP data"}`)},
		"locales/ar.json": {Data: []byte(`{"nav.home":"الرئيسية"}`)},
	}
}

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Load(testFS(), "locales", "en", []string{"en", "ar"})
	require.NoError(t, err)
	require.Equal(t, "ar", b.Resolve("en;q=0.8, ar;q=0.9"))
	require.Equal(t, "en", b.Resolve("fr-FR"))
	require.Equal(t, "en", b.Resolve(""))
	require.Equal(t, "ar", b.Resolve("ar-EG,ar;q=0.9"))
}

func TestTFallsBackToDefaultThenKey(t *testing.T) {
	b, err := Load(testFS(), "locales", "en", nil)
	require.NoError(t, err)
	require.Equal(t, "الرئيسية", b.T("ar", "nav.home"))
	require.Equal(t, "ISP data", b.T("ar", "card.isps"))
	require.Equal(t, "missing.key", b.T("en", "missing.key"))
}

func TestLoadRequiresFallback(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "locales", "en", []string{"en"})
	require.Error(t, err)
}

func TestShippedLocalesLoad(t *testing.T) {
	b, err := Load(os.DirFS("../.."), "locales", "en", []string{"en", "ar"})
	require.NoError(t, err)
	require.Equal(t, []string{"ar", "en"}, b.Supported())
	require.Equal(t, "Growth", b.T("en", "nav.growth"))
}
