package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fertadvisor/fertilizer"
	"fertadvisor/logging"
	"fertadvisor/models"
	"fertadvisor/store"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sourceHeader tells dashboard callers which stage answered.
const sourceHeader = "X-Recommendation-Source"

// handleRecommend is the public mirror of the dashboard's recommendation
// call: same body, same Recommendation JSON back.
func (a *App) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendReq
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validateRequest(&req); errs != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid recommendation request", errs)
		return
	}

	res, ok := a.resolve(w, r, req.toRequest())
	if !ok {
		return
	}
	w.Header().Set(sourceHeader, string(res.Source))
	respondJSON(w, http.StatusOK, res.Recommendation)
}

// handleSaveRecommendation resolves a recommendation and stores it in the
// caller's history.
func (a *App) handleSaveRecommendation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)

	var req saveRecommendationReq
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validateRequest(&req); errs != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid recommendation request", errs)
		return
	}

	in := req.toRequest()
	res, ok := a.resolve(w, r, in)
	if !ok {
		return
	}

	rec := models.RecommendationRecord{
		OwnerID:        uid,
		Label:          req.Label,
		CreatedAt:      time.Now().UTC(),
		Soil:           in.SoilData,
		CropType:       in.CropType,
		GrowthStage:    string(in.GrowthStage),
		Source:         res.Source,
		Recommendation: models.NewRecommendationDoc(res.Recommendation),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := a.store.InsertRecommendation(ctx, &rec); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("insert recommendation")
		respondError(w, r, http.StatusInternalServerError, "DB_ERROR", "db error", nil)
		return
	}
	w.Header().Set(sourceHeader, string(res.Source))
	respondJSON(w, http.StatusCreated, rec.View())
}

// handleListRecommendations returns the caller's history, newest first.
func (a *App) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	q := r.URL.Query()

	f := store.ListFilter{CropType: q.Get("crop")}
	var err error
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 1 {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer", nil)
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil || f.Offset < 0 {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "offset must be a non-negative integer", nil)
			return
		}
	}
	if f.Limit == 0 {
		f.Limit = store.DefaultLimit
	}
	if f.Limit > store.MaxLimit {
		f.Limit = store.MaxLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	recs, total, err := a.store.ListRecommendations(ctx, uid, f)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list recommendations")
		respondError(w, r, http.StatusInternalServerError, "DB_ERROR", "db error", nil)
		return
	}

	out := listRecommendationsResp{
		Items:  make([]models.RecommendationView, 0, len(recs)),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	}
	for _, rec := range recs {
		out.Items = append(out.Items, rec.View())
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetRecommendation returns one saved recommendation owned by the user.
func (a *App) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := a.store.GetRecommendation(ctx, uid, oid)
	if err != nil {
		a.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec.View())
}

// handleDeleteRecommendation removes a saved recommendation by id.
func (a *App) handleDeleteRecommendation(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	oid, ok := parseID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := a.store.DeleteRecommendation(ctx, uid, oid); err != nil {
		a.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleListCrops lists the crop table the engine runs against.
func (a *App) handleListCrops(w http.ResponseWriter, r *http.Request) {
	table := a.resolver.Engine().Crops()
	out := make([]cropResp, 0, table.Len())
	for _, name := range table.Crops() {
		lv, _ := table.Lookup(name)
		out = append(out, cropResp{Name: name, OptimalLevels: lv})
	}
	respondJSON(w, http.StatusOK, out)
}

// handleHealth reports liveness and storage reachability.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{"status": "ok", "scoring": "disabled"}
	if a.breaker != nil {
		body["scoring"] = a.breaker.State().String()
	}
	if err := a.store.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["storage"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	respondJSON(w, http.StatusOK, body)
}

// ---- helpers ----

// resolve runs the resolver, records metrics and writes the error response
// itself when it returns false.
func (a *App) resolve(w http.ResponseWriter, r *http.Request, in fertilizer.Request) (fertilizer.Result, bool) {
	res, err := a.resolver.Resolve(r.Context(), in)
	if res.RemoteErr != nil {
		remoteFailuresTotal.Inc()
	}
	if err != nil {
		if errors.Is(err, fertilizer.ErrUnknownCrop) {
			configurationErrorsTotal.Inc()
			logging.Ctx(r.Context()).Error().Err(err).Str("crop", in.CropType).Msg("crop missing from crop table")
			respondError(w, r, http.StatusUnprocessableEntity, "CONFIGURATION_ERROR", err.Error(),
				map[string]any{"cropType": in.CropType, "knownCrops": a.resolver.Engine().Crops().Crops()})
			return res, false
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("resolve recommendation")
		respondError(w, r, http.StatusInternalServerError, "INTERNAL", "recommendation failed", nil)
		return res, false
	}
	recommendationsTotal.WithLabelValues(string(res.Source), a.cropLabel(in.CropType)).Inc()
	return res, true
}

// otherCrop labels crops the local table does not know, which only a remote
// scorer can answer for.
const otherCrop = "other"

// cropLabel keeps the crop metric label within the crop table.
func (a *App) cropLabel(crop string) string {
	if _, err := a.resolver.Engine().Crops().Lookup(crop); err != nil {
		return otherCrop
	}
	return crop
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "BAD_ID", "bad id", nil)
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (a *App) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "not found", nil)
		return
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("store")
	respondError(w, r, http.StatusInternalServerError, "DB_ERROR", "db error", nil)
}
