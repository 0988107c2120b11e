package fertilizer

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// PHRange is the closed interval of acceptable soil pH for a crop.
type PHRange struct {
	Low  float64 `json:"low"  yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// OptimalLevels are a crop's target nutrient levels.
type OptimalLevels struct {
	Nitrogen   float64 `json:"nitrogen"   yaml:"nitrogen"`
	Phosphorus float64 `json:"phosphorus" yaml:"phosphorus"`
	Potassium  float64 `json:"potassium"  yaml:"potassium"`
	PH         PHRange `json:"ph"         yaml:"ph"`
}

// CropTable maps crop keys to their optimal levels. It is built once and
// never mutated, so one table can be shared by any number of engines.
type CropTable struct {
	levels map[string]OptimalLevels
}

// NewCropTable copies levels into a new table.
func NewCropTable(levels map[string]OptimalLevels) *CropTable {
	m := make(map[string]OptimalLevels, len(levels))
	for k, v := range levels {
		m[k] = v
	}
	return &CropTable{levels: m}
}

// DefaultCropTable returns the built-in tomato/wheat/rice/corn profiles.
func DefaultCropTable() *CropTable {
	return NewCropTable(map[string]OptimalLevels{
		"tomato": {Nitrogen: 60, Phosphorus: 50, Potassium: 60, PH: PHRange{Low: 6.0, High: 7.0}},
		"wheat":  {Nitrogen: 80, Phosphorus: 40, Potassium: 40, PH: PHRange{Low: 6.5, High: 7.5}},
		"rice":   {Nitrogen: 70, Phosphorus: 35, Potassium: 35, PH: PHRange{Low: 5.5, High: 6.5}},
		"corn":   {Nitrogen: 85, Phosphorus: 45, Potassium: 50, PH: PHRange{Low: 6.0, High: 7.0}},
	})
}

// Lookup returns the levels for crop, or a *ConfigurationError.
func (t *CropTable) Lookup(crop string) (OptimalLevels, error) {
	lv, ok := t.levels[crop]
	if !ok {
		return OptimalLevels{}, &ConfigurationError{Crop: crop}
	}
	return lv, nil
}

// Crops returns the known crop keys in lexical order.
func (t *CropTable) Crops() []string {
	out := make([]string, 0, len(t.levels))
	for k := range t.levels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of crops in the table.
func (t *CropTable) Len() int { return len(t.levels) }

type cropFile struct {
	Crops map[string]OptimalLevels `yaml:"crops"`
}

// LoadCropTable reads a YAML crop table of the form
//
//	crops:
//	  tomato: {nitrogen: 60, phosphorus: 50, potassium: 60, ph: {low: 6.0, high: 7.0}}
func LoadCropTable(path string) (*CropTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crop table: %w", err)
	}
	return ParseCropTable(raw)
}

// ParseCropTable decodes and checks a YAML crop table.
func ParseCropTable(raw []byte) (*CropTable, error) {
	var f cropFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse crop table: %w", err)
	}
	if len(f.Crops) == 0 {
		return nil, fmt.Errorf("crop table has no crops")
	}
	for name, lv := range f.Crops {
		if lv.PH.Low > lv.PH.High {
			return nil, fmt.Errorf("crop %q: ph.low %.2f above ph.high %.2f", name, lv.PH.Low, lv.PH.High)
		}
		if lv.Nitrogen < 0 || lv.Phosphorus < 0 || lv.Potassium < 0 {
			return nil, fmt.Errorf("crop %q: negative target level", name)
		}
	}
	return NewCropTable(f.Crops), nil
}
