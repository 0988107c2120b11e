package main

import (
	"fertadvisor/fertilizer"
	"fertadvisor/models"
)

// Request/response DTOs. Keep them minimal and explicit.

type registerReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResp struct {
	Token string `json:"token"`
}

// recommendReq is the POST /api/recommend body the dashboard sends.
type recommendReq struct {
	SoilData    *fertilizer.SoilReading `json:"soilData"    validate:"required"`
	CropType    string                  `json:"cropType"    validate:"required,max=64"`
	GrowthStage string                  `json:"growthStage" validate:"max=64"`
}

func (r recommendReq) toRequest() fertilizer.Request {
	return fertilizer.Request{
		SoilData:    *r.SoilData,
		CropType:    r.CropType,
		GrowthStage: fertilizer.GrowthStage(r.GrowthStage),
	}
}

// saveRecommendationReq is a recommend request plus an optional label.
type saveRecommendationReq struct {
	SoilData    *fertilizer.SoilReading `json:"soilData"        validate:"required"`
	CropType    string                  `json:"cropType"        validate:"required,max=64"`
	GrowthStage string                  `json:"growthStage"     validate:"max=64"`
	Label       string                  `json:"label,omitempty" validate:"max=120"`
}

func (r saveRecommendationReq) toRequest() fertilizer.Request {
	return recommendReq{SoilData: r.SoilData, CropType: r.CropType, GrowthStage: r.GrowthStage}.toRequest()
}

type cropResp struct {
	Name string `json:"name"`
	fertilizer.OptimalLevels
}

type listRecommendationsResp struct {
	Items  []models.RecommendationView `json:"items"`
	Total  int64                       `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}
