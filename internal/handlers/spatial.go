package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/spatial-data/internal/db"
	"github.com/ukydev/spatial-data/internal/models"
	"github.com/ukydev/spatial-data/internal/service"
)

// SpatialService is the query layer the handlers delegate to.
type SpatialService interface {
	StorePoint(ctx context.Context, record models.SpatialRecord) (string, error)
	StorePolygon(ctx context.Context, record models.SpatialRecord) (string, error)
	ListByType(ctx context.Context, geometryType, name string) ([]models.SpatialRecord, error)
	UpdatePoint(ctx context.Context, name string, record models.SpatialRecord) (*db.MatchResult, error)
	UpdatePolygon(ctx context.Context, name string, record models.SpatialRecord) (*db.MatchResult, error)
	FindNear(ctx context.Context, loc models.Location, maxDistance int) ([]models.SpatialRecord, error)
	FindContaining(ctx context.Context, loc models.Location) ([]models.SpatialRecord, error)
	Ping(ctx context.Context) error
}

// SpatialHandler handles spatial data requests
type SpatialHandler struct {
	service SpatialService
}

// NewSpatialHandler creates a new spatial data handler
func NewSpatialHandler(svc SpatialService) *SpatialHandler {
	return &SpatialHandler{service: svc}
}

type storeResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type dataResponse struct {
	Data []models.SpatialRecord `json:"data"`
}

// StorePoint handles POST /spatial_data/point
func (h *SpatialHandler) StorePoint(w http.ResponseWriter, r *http.Request) {
	h.store(w, r, models.GeometryPoint, h.service.StorePoint)
}

// StorePolygon handles POST /spatial_data/polygon
func (h *SpatialHandler) StorePolygon(w http.ResponseWriter, r *http.Request) {
	h.store(w, r, models.GeometryPolygon, h.service.StorePolygon)
}

func (h *SpatialHandler) store(w http.ResponseWriter, r *http.Request, gt models.GeometryType,
	storeFn func(context.Context, models.SpatialRecord) (string, error)) {
	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	id, err := storeFn(r.Context(), record)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, r, http.StatusOK, storeResponse{
		Message: fmt.Sprintf("%s data stored", gt),
		ID:      id,
	})
}

// List handles GET /spatial_data/{type}
func (h *SpatialHandler) List(w http.ResponseWriter, r *http.Request) {
	geometryType := chi.URLParam(r, "type")
	name := r.URL.Query().Get("name")

	records, err := h.service.ListByType(r.Context(), geometryType, name)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}
	if len(records) == 0 {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("No %s data found", geometryType))
		return
	}

	writeJSON(w, r, http.StatusOK, dataResponse{Data: records})
}

// UpdatePoint handles PUT /spatial_data/point/{name}
func (h *SpatialHandler) UpdatePoint(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, models.GeometryPoint, h.service.UpdatePoint)
}

// UpdatePolygon handles PUT /spatial_data/polygon/{name}
func (h *SpatialHandler) UpdatePolygon(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, models.GeometryPolygon, h.service.UpdatePolygon)
}

func (h *SpatialHandler) update(w http.ResponseWriter, r *http.Request, gt models.GeometryType,
	updateFn func(context.Context, string, models.SpatialRecord) (*db.MatchResult, error)) {
	name := chi.URLParam(r, "name")

	record, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	if _, err := updateFn(r.Context(), name, record); err != nil {
		writeServiceError(w, r, err, fmt.Sprintf("%s data not found", gt))
		return
	}

	writeJSON(w, r, http.StatusOK, messageResponse{Message: fmt.Sprintf("%s data updated", gt)})
}

// NearPoint handles GET /spatial_data/near_point
func (h *SpatialHandler) NearPoint(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	maxDistance := service.DefaultMaxDistance
	if raw := strings.TrimSpace(r.URL.Query().Get("max_distance")); raw != "" {
		maxDistance, err = strconv.Atoi(raw)
		if err != nil || maxDistance < 0 {
			writeError(w, r, http.StatusUnprocessableEntity, "max_distance must be a non-negative integer")
			return
		}
	}

	records, err := h.service.FindNear(r.Context(), loc, maxDistance)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, r, http.StatusOK, dataResponse{Data: records})
}

// ContainingPoint handles GET /spatial_data/containing_point
func (h *SpatialHandler) ContainingPoint(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	records, err := h.service.FindContaining(r.Context(), loc)
	if err != nil {
		writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, r, http.StatusOK, dataResponse{Data: records})
}

// Health handles GET /health
func (h *SpatialHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		log.WithError(err).Warn("Health check failed")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRecord reads the request body into a record. It writes the error
// response itself and reports false when the body is unusable.
func decodeRecord(w http.ResponseWriter, r *http.Request) (models.SpatialRecord, bool) {
	var record models.SpatialRecord

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Failed to read request body")
		return record, false
	}

	if err := json.Unmarshal(body, &record); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, http.StatusUnprocessableEntity, verr.Error())
			return record, false
		}
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return record, false
	}
	return record, true
}

func parseLocation(r *http.Request) (models.Location, error) {
	lon, err := parseFloatParam(r, "longitude")
	if err != nil {
		return models.Location{}, err
	}
	lat, err := parseFloatParam(r, "latitude")
	if err != nil {
		return models.Location{}, err
	}
	return models.Location{Lon: lon, Lat: lat}, nil
}

func parseFloatParam(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter: %s", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

// writeServiceError maps a service error to a response. notFoundMsg is used
// for service.ErrNotFound.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, r, http.StatusNotFound, notFoundMsg)
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Spatial store operation failed")
		writeError(w, r, http.StatusBadRequest, "Bad request")
	}
}
