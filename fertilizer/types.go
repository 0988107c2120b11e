package fertilizer

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// SoilReading is one soil test as entered by the farmer. Nutrients are
// ppm-like values the UI keeps in 0..100; pH is expected in 4..9.
type SoilReading struct {
	Nitrogen   float64 `json:"nitrogen"   yaml:"nitrogen"   validate:"gte=0,lte=100"`
	Phosphorus float64 `json:"phosphorus" yaml:"phosphorus" validate:"gte=0,lte=100"`
	Potassium  float64 `json:"potassium"  yaml:"potassium"  validate:"gte=0,lte=100"`
	PH         float64 `json:"ph"         yaml:"ph"         validate:"gte=4,lte=9"`
}

// Clamped returns a copy with nutrients limited to [0,100] and pH to [4,9].
// The engine itself never clamps; callers taking raw input use this.
func (s SoilReading) Clamped() SoilReading {
	return SoilReading{
		Nitrogen:   clamp(s.Nitrogen, 0, 100),
		Phosphorus: clamp(s.Phosphorus, 0, 100),
		Potassium:  clamp(s.Potassium, 0, 100),
		PH:         clamp(s.PH, 4, 9),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GrowthStage labels the crop's phenological stage. Any label is accepted.
type GrowthStage string

const (
	StageSeedling   GrowthStage = "seedling"
	StageVegetative GrowthStage = "vegetative"
	StageFlowering  GrowthStage = "flowering"
	StageFruiting   GrowthStage = "fruiting"
)

// Recommendation is the full engine output for one request.
type Recommendation struct {
	Synthetic           Synthetic           `json:"synthetic"`
	Organic             []string            `json:"organic"`
	Schedule            string              `json:"schedule"`
	Deficiencies        Deficiencies        `json:"deficiencies"`
	PHAdjustment        string              `json:"phAdjustment"`
	EnvironmentalImpact EnvironmentalImpact `json:"environmentalImpact"`
}

// Synthetic dosages are kg/hectare, rounded to one decimal.
type Synthetic struct {
	Urea float64 `json:"urea"`
	DAP  float64 `json:"dap"`
	MOP  float64 `json:"mop"`
	Cost Cost    `json:"cost"`
}

type Deficiencies struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
}

type EnvironmentalImpact struct {
	CO2Saved     float64 `json:"co2Saved"`
	WaterQuality string  `json:"waterQuality"`
}

// Cost is a currency amount. It is encoded as a two-decimal string ("26.62"),
// which is what existing dashboard callers expect, and decodes from either a
// string or a number.
type Cost float64

func (c Cost) String() string {
	return strconv.FormatFloat(float64(c), 'f', 2, 64)
}

func (c Cost) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cost) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("cost %q: %w", s, err)
		}
		*c = Cost(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("cost: %w", err)
	}
	*c = Cost(f)
	return nil
}

// Request is the remote scoring payload; it mirrors the dashboard's
// POST /api/recommend body.
type Request struct {
	SoilData    SoilReading `json:"soilData"    validate:"required"`
	CropType    string      `json:"cropType"    validate:"required"`
	GrowthStage GrowthStage `json:"growthStage"`
}
