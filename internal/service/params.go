package service

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the page applied when the parameter is absent or
	// non-numeric
	DefaultPage = 1
	// DefaultPageSize is the page size applied when the parameter is
	// absent or non-numeric
	DefaultPageSize = 20
	// MaxPage caps the page parameter
	MaxPage = 1_000_000
	// MaxPageSize caps the pageSize parameter
	MaxPageSize = 100

	// SortDirAsc is the default sort direction
	SortDirAsc = "asc"
	// SortDirDesc sorts in descending order
	SortDirDesc = "desc"

	defaultSortBy = "fecha_inicio"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// festivalSortColumns maps the accepted sortBy keys to their SQL columns.
// Unrecognized keys silently fall back to fecha_inicio.
var festivalSortColumns = map[string]string{
	"fecha_inicio": "f.fecha_inicio",
	"fecha_fin":    "f.fecha_fin",
	"nombre":       "f.nombre",
	"municipio":    "m.nombre",
	"departamento": "m.departamento",
	"id":           "f.id",
}

// ListFestivalsParams holds the resolved festival listing parameters.
// All fields are already validated and clamped.
type ListFestivalsParams struct {
	From         string
	To           string
	Departamento string
	MunicipioID  *int64
	OnlyHolidays bool
	SortBy       string
	SortDir      string
	Page         int
	PageSize     int
}

// HasRange reports whether a date range filter is active.
func (p *ListFestivalsParams) HasRange() bool {
	return p.From != ""
}

// SortColumn returns the SQL column the resolved SortBy maps to.
func (p *ListFestivalsParams) SortColumn() string {
	return festivalSortColumns[p.SortBy]
}

// ListMunicipalitiesParams holds the resolved municipality search
// parameters.
type ListMunicipalitiesParams struct {
	Departamento string
	Query        string
	Page         int
	PageSize     int
}

// ListHolidaysParams holds the resolved holiday listing parameters.
type ListHolidaysParams struct {
	Country  string
	From     string
	To       string
	Page     int
	PageSize int
}

// ParseListFestivalsParams validates and resolves the festival listing
// query parameters.
//
// Dates are strict: from and to must be given together, match YYYY-MM-DD
// and satisfy from <= to, otherwise a ValidationError is returned. All
// other parameters are permissive: unrecognized sortBy/sortDir values and
// non-numeric page/pageSize fall back to defaults without error.
func ParseListFestivalsParams(query url.Values) (ListFestivalsParams, error) {
	params := ListFestivalsParams{
		SortBy:   defaultSortBy,
		SortDir:  SortDirAsc,
		Page:     clampInt(query.Get("page"), DefaultPage, 1, MaxPage),
		PageSize: clampInt(query.Get("pageSize"), DefaultPageSize, 1, MaxPageSize),
	}

	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return ListFestivalsParams{}, err
	}
	params.From = from
	params.To = to

	params.Departamento = query.Get("departamento")

	if raw := query.Get("municipioId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ListFestivalsParams{}, NewValidationError("municipioId inválido")
		}
		params.MunicipioID = &id
	}

	params.OnlyHolidays = truthy(query.Get("onlyHolidays"))

	if sortBy := query.Get("sortBy"); sortBy != "" {
		if _, ok := festivalSortColumns[sortBy]; ok {
			params.SortBy = sortBy
		}
	}
	if strings.EqualFold(query.Get("sortDir"), SortDirDesc) {
		params.SortDir = SortDirDesc
	}

	return params, nil
}

// ParseListMunicipalitiesParams resolves the municipality search query
// parameters. The free-text query is kept verbatim; normalization happens
// at match time on both sides.
func ParseListMunicipalitiesParams(query url.Values) ListMunicipalitiesParams {
	return ListMunicipalitiesParams{
		Departamento: query.Get("departamento"),
		Query:        strings.TrimSpace(query.Get("q")),
		Page:         clampInt(query.Get("page"), DefaultPage, 1, MaxPage),
		PageSize:     clampInt(query.Get("pageSize"), DefaultPageSize, 1, MaxPageSize),
	}
}

// ParseListHolidaysParams validates and resolves the holiday listing
// query parameters. The date range follows the same strict policy as the
// festival listing.
func ParseListHolidaysParams(query url.Values) (ListHolidaysParams, error) {
	from, to, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return ListHolidaysParams{}, err
	}

	return ListHolidaysParams{
		Country:  query.Get("country"),
		From:     from,
		To:       to,
		Page:     clampInt(query.Get("page"), DefaultPage, 1, MaxPage),
		PageSize: clampInt(query.Get("pageSize"), DefaultPageSize, 1, MaxPageSize),
	}, nil
}

// parseDateRange enforces the both-or-neither date range policy.
func parseDateRange(from, to string) (string, string, error) {
	hasFrom := strings.TrimSpace(from) != ""
	hasTo := strings.TrimSpace(to) != ""

	if hasFrom != hasTo {
		return "", "", NewValidationError("Debes enviar ambos parámetros: from y to (YYYY-MM-DD).")
	}
	if !hasFrom {
		return "", "", nil
	}
	if !isoDatePattern.MatchString(from) || !isoDatePattern.MatchString(to) {
		return "", "", NewValidationError("Formato de fecha inválido. Usa YYYY-MM-DD en from y to.")
	}
	// ISO dates compare correctly as strings
	if from > to {
		return "", "", NewValidationError("Rango inválido: from no puede ser mayor que to.")
	}
	return from, to, nil
}

// truthy reports whether v is one of the accepted true spellings.
// Anything else, including "TRUE", is false.
func truthy(v string) bool {
	return v == "1" || v == "true"
}

// clampInt parses raw as an integer and clamps it into [min, max],
// returning fallback on non-numeric input.
func clampInt(raw string, fallback, min, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// TotalPages computes max(1, ceil(total/pageSize)).
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// Offset computes the row offset for the given page and page size.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// Paginate returns the slice of rows for the given page together with the
// total count taken before slicing.
func Paginate[T any](rows []T, page, pageSize int) ([]T, int, int) {
	total := len(rows)
	totalPages := TotalPages(total, pageSize)

	start := Offset(page, pageSize)
	if start >= total {
		return []T{}, total, totalPages
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return rows[start:end], total, totalPages
}
