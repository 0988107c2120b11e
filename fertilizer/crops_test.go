package fertilizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCropTable(t *testing.T) {
	tbl := DefaultCropTable()
	assert.Equal(t, []string{"corn", "rice", "tomato", "wheat"}, tbl.Crops())

	wheat, err := tbl.Lookup("wheat")
	require.NoError(t, err)
	assert.Equal(t, OptimalLevels{Nitrogen: 80, Phosphorus: 40, Potassium: 40, PH: PHRange{Low: 6.5, High: 7.5}}, wheat)
}

func TestNewCropTable_CopiesInput(t *testing.T) {
	src := map[string]OptimalLevels{"oat": {Nitrogen: 30}}
	tbl := NewCropTable(src)
	src["oat"] = OptimalLevels{Nitrogen: 99}
	delete(src, "oat")

	got, err := tbl.Lookup("oat")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Nitrogen)
}

func TestLoadCropTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crops:
  potato:
    nitrogen: 90
    phosphorus: 45
    potassium: 110
    ph: {low: 5.0, high: 6.0}
`), 0o600))

	tbl, err := LoadCropTable(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	potato, err := tbl.Lookup("potato")
	require.NoError(t, err)
	assert.Equal(t, 110.0, potato.Potassium)
	assert.Equal(t, PHRange{Low: 5, High: 6}, potato.PH)
}

func TestParseCropTable_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":        "crops: {}\n",
		"inverted ph":  "crops:\n  a: {nitrogen: 1, ph: {low: 7, high: 6}}\n",
		"negative":     "crops:\n  a: {nitrogen: -1, ph: {low: 6, high: 7}}\n",
		"not yaml map": "crops: [1, 2]\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCropTable([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadCropTable_MissingFile(t *testing.T) {
	_, err := LoadCropTable(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
