package models

import (
	"time"

	"fertadvisor/fertilizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendationRecord is one saved recommendation in the
// "fertilizer_recommendations" collection.
type RecommendationRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"   json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId"         json:"ownerId"`
	Label     string             `bson:"label,omitempty" json:"label,omitempty"` // farmer's note, e.g. "north plot"
	CreatedAt time.Time          `bson:"createdAt"       json:"createdAt"`

	// Inputs as submitted
	Soil        fertilizer.SoilReading `bson:"soil"        json:"soilData"`
	CropType    string                 `bson:"cropType"    json:"cropType"`
	GrowthStage string                 `bson:"growthStage" json:"growthStage"`

	Source         fertilizer.Source `bson:"source" json:"source"` // remote | local
	Recommendation RecommendationDoc `bson:"recommendation" json:"-"`
}

// RecommendationDoc is the bson form of fertilizer.Recommendation. Cost is
// stored as a number so it can be aggregated.
type RecommendationDoc struct {
	Urea         float64  `bson:"urea"`
	DAP          float64  `bson:"dap"`
	MOP          float64  `bson:"mop"`
	Cost         float64  `bson:"cost"`
	Organic      []string `bson:"organic"`
	Schedule     string   `bson:"schedule"`
	DeficitN     float64  `bson:"deficitN"`
	DeficitP     float64  `bson:"deficitP"`
	DeficitK     float64  `bson:"deficitK"`
	PHAdjustment string   `bson:"phAdjustment"`
	CO2Saved     float64  `bson:"co2Saved"`
	WaterQuality string   `bson:"waterQuality"`
}

// NewRecommendationDoc flattens r for storage.
func NewRecommendationDoc(r fertilizer.Recommendation) RecommendationDoc {
	organic := r.Organic
	if organic == nil {
		organic = []string{}
	}
	return RecommendationDoc{
		Urea:         r.Synthetic.Urea,
		DAP:          r.Synthetic.DAP,
		MOP:          r.Synthetic.MOP,
		Cost:         float64(r.Synthetic.Cost),
		Organic:      organic,
		Schedule:     r.Schedule,
		DeficitN:     r.Deficiencies.Nitrogen,
		DeficitP:     r.Deficiencies.Phosphorus,
		DeficitK:     r.Deficiencies.Potassium,
		PHAdjustment: r.PHAdjustment,
		CO2Saved:     r.EnvironmentalImpact.CO2Saved,
		WaterQuality: r.EnvironmentalImpact.WaterQuality,
	}
}

// Recommendation rebuilds the API shape.
func (d RecommendationDoc) Recommendation() fertilizer.Recommendation {
	organic := d.Organic
	if organic == nil {
		organic = []string{}
	}
	return fertilizer.Recommendation{
		Synthetic: fertilizer.Synthetic{
			Urea: d.Urea,
			DAP:  d.DAP,
			MOP:  d.MOP,
			Cost: fertilizer.Cost(d.Cost),
		},
		Organic:  organic,
		Schedule: d.Schedule,
		Deficiencies: fertilizer.Deficiencies{
			Nitrogen:   d.DeficitN,
			Phosphorus: d.DeficitP,
			Potassium:  d.DeficitK,
		},
		PHAdjustment: d.PHAdjustment,
		EnvironmentalImpact: fertilizer.EnvironmentalImpact{
			CO2Saved:     d.CO2Saved,
			WaterQuality: d.WaterQuality,
		},
	}
}

// RecommendationView is the JSON form returned by the history endpoints.
type RecommendationView struct {
	ID             primitive.ObjectID        `json:"id"`
	Label          string                    `json:"label,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
	SoilData       fertilizer.SoilReading    `json:"soilData"`
	CropType       string                    `json:"cropType"`
	GrowthStage    string                    `json:"growthStage"`
	Source         fertilizer.Source         `json:"source"`
	Recommendation fertilizer.Recommendation `json:"recommendation"`
}

// View converts a stored record to its API form.
func (r RecommendationRecord) View() RecommendationView {
	return RecommendationView{
		ID:             r.ID,
		Label:          r.Label,
		CreatedAt:      r.CreatedAt,
		SoilData:       r.Soil,
		CropType:       r.CropType,
		GrowthStage:    r.GrowthStage,
		Source:         r.Source,
		Recommendation: r.Recommendation.Recommendation(),
	}
}
