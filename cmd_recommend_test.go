package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"fertadvisor/fertilizer"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns stdout. Flag values
// are reset first since cobra keeps them between runs.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	recommendCmd.Flags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRecommendCmd_ClampsReadings(t *testing.T) {
	out, err := runCLI(t, "recommend", "--crop", "tomato", "--stage", "seedling",
		"-n", "150", "--phosphorus=-5", "-k", "52", "--ph", "11")
	require.NoError(t, err)

	raw := fertilizer.SoilReading{Nitrogen: 150, Phosphorus: -5, Potassium: 52, PH: 11}
	clamped := raw.Clamped()
	assert.NotEqual(t, raw, clamped)

	want, err := fertilizer.Recommend(clamped, "tomato", fertilizer.StageSeedling)
	require.NoError(t, err)

	var got fertilizer.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want, got)
}

func TestRecommendCmd_TomatoExample(t *testing.T) {
	out, err := runCLI(t, "recommend", "--crop", "tomato", "-n", "45", "-p", "38", "-k", "52", "--ph", "6.8")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Equal(t, "26.62", raw["synthetic"].(map[string]any)["cost"])
}

func TestRecommendCmd_CropTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crops:
  barley: {nitrogen: 50, phosphorus: 30, potassium: 30, ph: {low: 6.0, high: 7.5}}
`), 0o600))

	out, err := runCLI(t, "recommend", "--crop-table", path, "--crop", "barley",
		"-n", "20", "-p", "30", "-k", "30", "--ph", "6.5")
	require.NoError(t, err)

	var got fertilizer.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 30, got.Deficiencies.Nitrogen, 1e-9)
	assert.InDelta(t, 65.1, got.Synthetic.Urea, 1e-9)

	// The custom table replaces the built-in crops.
	_, err = runCLI(t, "recommend", "--crop-table", path, "--crop", "tomato")
	assert.ErrorIs(t, err, fertilizer.ErrUnknownCrop)
}

func TestRecommendCmd_Errors(t *testing.T) {
	_, err := runCLI(t, "recommend", "--crop", "barley", "-n", "10")
	assert.ErrorIs(t, err, fertilizer.ErrUnknownCrop)

	_, err = runCLI(t, "recommend", "-n", "10")
	assert.Error(t, err)

	_, err = runCLI(t, "recommend", "--crop", "tomato", "--crop-table", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
