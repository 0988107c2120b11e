// Package fertilizer computes fertilizer recommendations from a soil test.
//
// The engine is a pure function of (soil reading, crop, growth stage): it
// derives nutrient deficits against the crop's optimal levels, converts them
// into urea/DAP/MOP dosages and cost, suggests organic alternatives for large
// deficits, and adds pH and environmental notes. The dosage factors are fixed
// heuristics and are reproduced exactly.
package fertilizer

import "math"

// Conversion factors from nutrient deficit to kg/ha of product.
const (
	ureaPerDeficit = 2.17
	dapPerDeficit  = 1.8
	mopPerDeficit  = 1.67
)

// Price per kg of product.
const (
	ureaPrice = 0.30
	dapPrice  = 0.45
	mopPrice  = 0.35
)

const (
	// organicThreshold is exclusive: a deficit of exactly 10 gets no suggestion.
	organicThreshold = 10
	co2PerUreaKg     = 0.9
)

const (
	OrganicNitrogen   = "Compost (5 kg/m²), Vermicompost (3 kg/m²)"
	OrganicPhosphorus = "Bone meal (2 kg/m²), Rock phosphate (1.5 kg/m²)"
	OrganicPotassium  = "Wood ash (1 kg/m²), Kelp meal (0.5 kg/m²)"

	ScheduleSeedling   = "Split application: 40% at planting, 30% at 3 weeks, 30% at 6 weeks"
	ScheduleVegetative = "Weekly light applications for steady growth"
	ScheduleDefault    = "Reduce nitrogen, increase potassium for fruit development"

	PHAddLime    = "Add lime to increase pH"
	PHAddSulfur  = "Add sulfur to decrease pH"
	PHOptimal    = "pH is optimal"
	WaterQuality = "Precision application reduces runoff by 40%"
)

// Engine computes recommendations against one crop table.
type Engine struct {
	crops *CropTable
}

// NewEngine returns an engine over crops. A nil table means DefaultCropTable.
func NewEngine(crops *CropTable) *Engine {
	if crops == nil {
		crops = DefaultCropTable()
	}
	return &Engine{crops: crops}
}

// Crops exposes the engine's crop table.
func (e *Engine) Crops() *CropTable { return e.crops }

var defaultEngine = NewEngine(nil)

// Recommend runs the default engine.
func Recommend(soil SoilReading, crop string, stage GrowthStage) (Recommendation, error) {
	return defaultEngine.Recommend(soil, crop, stage)
}

// Recommend computes the recommendation for soil on crop at stage. The only
// error is a *ConfigurationError when crop is not in the table. Soil values
// are used as given; see SoilReading.Clamped.
func (e *Engine) Recommend(soil SoilReading, crop string, stage GrowthStage) (Recommendation, error) {
	target, err := e.crops.Lookup(crop)
	if err != nil {
		return Recommendation{}, err
	}

	def := Deficiencies{
		Nitrogen:   deficit(target.Nitrogen, soil.Nitrogen),
		Phosphorus: deficit(target.Phosphorus, soil.Phosphorus),
		Potassium:  deficit(target.Potassium, soil.Potassium),
	}

	urea := round1(def.Nitrogen * ureaPerDeficit)
	dap := round1(math.Max(def.Nitrogen, def.Phosphorus) * dapPerDeficit)
	mop := round1(def.Potassium * mopPerDeficit)
	// Explicit conversions keep each product rounded before the sum (no FMA).
	cost := round2(float64(urea*ureaPrice) + float64(dap*dapPrice) + float64(mop*mopPrice))

	organic := organicOptions(def)

	var co2 float64
	if len(organic) > 0 {
		co2 = round1(urea * co2PerUreaKg)
	}

	return Recommendation{
		Synthetic:    Synthetic{Urea: urea, DAP: dap, MOP: mop, Cost: Cost(cost)},
		Organic:      organic,
		Schedule:     schedule(stage),
		Deficiencies: def,
		PHAdjustment: phAdjustment(soil.PH, target.PH),
		EnvironmentalImpact: EnvironmentalImpact{
			CO2Saved:     co2,
			WaterQuality: WaterQuality,
		},
	}, nil
}

func deficit(target, actual float64) float64 {
	return math.Max(0, target-actual)
}

// organicOptions is always ordered nitrogen, phosphorus, potassium.
func organicOptions(d Deficiencies) []string {
	out := make([]string, 0, 3)
	if d.Nitrogen > organicThreshold {
		out = append(out, OrganicNitrogen)
	}
	if d.Phosphorus > organicThreshold {
		out = append(out, OrganicPhosphorus)
	}
	if d.Potassium > organicThreshold {
		out = append(out, OrganicPotassium)
	}
	return out
}

// schedule has three outcomes; flowering, fruiting and unknown stages share one.
func schedule(stage GrowthStage) string {
	switch stage {
	case StageSeedling:
		return ScheduleSeedling
	case StageVegetative:
		return ScheduleVegetative
	default:
		return ScheduleDefault
	}
}

func phAdjustment(ph float64, want PHRange) string {
	switch {
	case ph < want.Low:
		return PHAddLime
	case ph > want.High:
		return PHAddSulfur
	default:
		return PHOptimal
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }
