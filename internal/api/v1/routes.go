// Package v1 provides the REST API handlers for the festival catalog.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/festquest/festquest-server/internal/api/common"
	"github.com/festquest/festquest-server/internal/service"
)

// Meta is the pagination and filter metadata attached to list responses
type Meta struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	SortBy     string `json:"sortBy,omitempty"`
	SortDir    string `json:"sortDir,omitempty"`
	Filters    any    `json:"filters"`
}

// ListResponse is the {data, meta} envelope used by all list endpoints
type ListResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// DetailResponse is the {data} envelope used by all detail endpoints
type DetailResponse struct {
	Data any `json:"data"`
}

// festivalFilters echoes the resolved festival filter values so callers
// can distinguish "no filter applied" from an empty value
type festivalFilters struct {
	From         *string `json:"from"`
	To           *string `json:"to"`
	Departamento *string `json:"departamento"`
	MunicipioID  *int64  `json:"municipioId"`
	OnlyHolidays bool    `json:"onlyHolidays"`
}

type municipalityFilters struct {
	Departamento *string `json:"departamento"`
	Query        *string `json:"q"`
}

type holidayFilters struct {
	Country *string `json:"country"`
	From    *string `json:"from"`
	To      *string `json:"to"`
}

// Routes handles HTTP requests for the catalog API endpoints.
type Routes struct {
	service service.CatalogService
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.CatalogService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates and configures the HTTP router for the catalog API.
func Router(svc service.CatalogService) http.Handler {
	r := chi.NewRouter()

	r.Mount("/festivals", FestivalsRouter(svc))
	r.Mount("/municipalities", MunicipalitiesRouter(svc))
	r.Mount("/holidays", HolidaysRouter(svc))
	r.Mount("/analytics", AnalyticsRouter(svc))

	return r
}

// FestivalsRouter creates a router for the festival listing and detail endpoints.
func FestivalsRouter(svc service.CatalogService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/", routes.listFestivals)
	r.Get("/{id}", routes.getFestival)

	return r
}

// MunicipalitiesRouter creates a router for the municipality endpoints.
func MunicipalitiesRouter(svc service.CatalogService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/", routes.listMunicipalities)
	r.Get("/{id}", routes.getMunicipality)

	return r
}

// HolidaysRouter creates a router for the holiday endpoints.
func HolidaysRouter(svc service.CatalogService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/", routes.listHolidays)

	return r
}

// AnalyticsRouter creates a router for the analytics endpoints.
func AnalyticsRouter(svc service.CatalogService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Post("/event", routes.recordEvent)
	r.Get("/festival/{id}", routes.festivalStats)

	return r
}

// listFestivals handles GET /api/v1/festivals
//
// Invalid dates are rejected; unrecognized sortBy/sortDir/page/pageSize
// values silently fall back to defaults.
func (routes *Routes) listFestivals(w http.ResponseWriter, r *http.Request) {
	params, err := service.ParseListFestivalsParams(r.URL.Query())
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := routes.service.ListFestivals(r.Context(), params)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, ListResponse{
		Data: page.Festivals,
		Meta: Meta{
			Page:       params.Page,
			PageSize:   params.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			SortBy:     params.SortBy,
			SortDir:    params.SortDir,
			Filters: festivalFilters{
				From:         optString(params.From),
				To:           optString(params.To),
				Departamento: optString(params.Departamento),
				MunicipioID:  params.MunicipioID,
				OnlyHolidays: params.OnlyHolidays,
			},
		},
	}, http.StatusOK)
}

// getFestival handles GET /api/v1/festivals/{id}
func (routes *Routes) getFestival(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	festival, err := routes.service.GetFestival(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFestivalNotFound) {
			common.WriteErrorResponse(w, "Festival no encontrado", http.StatusNotFound)
			return
		}
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, DetailResponse{Data: festival}, http.StatusOK)
}

// listMunicipalities handles GET /api/v1/municipalities
func (routes *Routes) listMunicipalities(w http.ResponseWriter, r *http.Request) {
	params := service.ParseListMunicipalitiesParams(r.URL.Query())

	page, err := routes.service.ListMunicipalities(r.Context(), params)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, ListResponse{
		Data: page.Municipalities,
		Meta: Meta{
			Page:       params.Page,
			PageSize:   params.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			Filters: municipalityFilters{
				Departamento: optString(params.Departamento),
				Query:        optString(params.Query),
			},
		},
	}, http.StatusOK)
}

// getMunicipality handles GET /api/v1/municipalities/{id}
func (routes *Routes) getMunicipality(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	municipality, err := routes.service.GetMunicipality(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMunicipalityNotFound) {
			common.WriteErrorResponse(w, "Municipio no encontrado", http.StatusNotFound)
			return
		}
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, DetailResponse{Data: municipality}, http.StatusOK)
}

// listHolidays handles GET /api/v1/holidays
func (routes *Routes) listHolidays(w http.ResponseWriter, r *http.Request) {
	params, err := service.ParseListHolidaysParams(r.URL.Query())
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := routes.service.ListHolidays(r.Context(), params)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, ListResponse{
		Data: page.Holidays,
		Meta: Meta{
			Page:       params.Page,
			PageSize:   params.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			Filters: holidayFilters{
				Country: optString(params.Country),
				From:    optString(params.From),
				To:      optString(params.To),
			},
		},
	}, http.StatusOK)
}

// recordEvent handles POST /api/v1/analytics/event
func (routes *Routes) recordEvent(w http.ResponseWriter, r *http.Request) {
	var event service.AnalyticsEvent
	if err := common.DecodeJSONBody(r, &event); err != nil {
		common.WriteErrorResponse(w, "Cuerpo JSON inválido", http.StatusBadRequest)
		return
	}

	id, err := routes.service.RecordEvent(r.Context(), event)
	if err != nil {
		if errors.Is(err, service.ErrFestivalNotFound) {
			common.WriteErrorResponse(w, "Festival no encontrado", http.StatusNotFound)
			return
		}
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, map[string]any{"ok": true, "id": id}, http.StatusCreated)
}

// festivalStats handles GET /api/v1/analytics/festival/{id}
func (routes *Routes) festivalStats(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	stats, err := routes.service.FestivalStats(r.Context(), id)
	if err != nil {
		routes.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, stats, http.StatusOK)
}

// writeServiceError maps service errors to HTTP responses. Validation
// errors are client errors; everything else is a server error.
func (*Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if service.IsValidationError(err) {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)
	common.WriteErrorResponse(w, "Error interno del servidor", http.StatusInternalServerError)
}

// parseID extracts the numeric {id} path parameter, writing a 400 on
// malformed input.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		common.WriteErrorResponse(w, "ID inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// optString returns nil for the empty string so absent filters serialize
// as JSON null.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
