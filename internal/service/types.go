package service

// Festival is a festival row joined with its municipality's name and
// department. Dates are ISO 8601 calendar dates (YYYY-MM-DD); FechaFin is
// nil for single-day festivals.
type Festival struct {
	ID              int64   `db:"id" json:"id"`
	MunicipioID     int64   `db:"municipio_id" json:"municipio_id"`
	Nombre          string  `db:"nombre" json:"nombre"`
	FechaInicio     string  `db:"fecha_inicio" json:"fecha_inicio"`
	FechaFin        *string `db:"fecha_fin" json:"fecha_fin"`
	Descripcion     string  `db:"descripcion" json:"descripcion"`
	MunicipioNombre string  `db:"municipio_nombre" json:"municipio_nombre"`
	Departamento    string  `db:"departamento" json:"departamento"`
}

// EffectiveEnd returns the festival's end date when present, else its
// start date.
func (f *Festival) EffectiveEnd() string {
	if f.FechaFin != nil && *f.FechaFin != "" {
		return *f.FechaFin
	}
	return f.FechaInicio
}

// Municipality is a municipality row including the optional profile fields.
type Municipality struct {
	ID              int64    `db:"id" json:"id"`
	Nombre          string   `db:"nombre" json:"nombre"`
	Departamento    string   `db:"departamento" json:"departamento"`
	Descripcion     string   `db:"descripcion" json:"descripcion"`
	Subregion       *string  `db:"subregion" json:"subregion"`
	AltitudMsnm     *int64   `db:"altitud_msnm" json:"altitud_msnm"`
	TemperaturaProm *float64 `db:"temperatura_prom" json:"temperatura_prom"`
	AreaKm2         *float64 `db:"area_km2" json:"area_km2"`
	Habitantes      *int64   `db:"habitantes" json:"habitantes"`
	Fundacion       *int64   `db:"fundacion" json:"fundacion"`
	BanderaURL      *string  `db:"bandera_url" json:"bandera_url"`
}

// MunicipalityDetail is a municipality with its festival count.
type MunicipalityDetail struct {
	Municipality
	FestivalsCount int64 `db:"festivals_count" json:"festivalsCount"`
}

// Holiday is a public holiday. The (country, fecha) pair is unique.
type Holiday struct {
	ID      int64  `db:"id" json:"id"`
	Country string `db:"country" json:"country"`
	Fecha   string `db:"fecha" json:"fecha"`
	Nombre  string `db:"nombre" json:"nombre"`
}

// AnalyticsEvent is a single analytics event to record.
type AnalyticsEvent struct {
	FestivalID  int64  `json:"festivalId"`
	MunicipioID *int64 `json:"municipioId"`
	Event       string `json:"event"`
	Source      string `json:"source"`
}

// FestivalStats aggregates analytics counts for one festival.
type FestivalStats struct {
	FestivalID int64            `json:"festivalId"`
	Visitas    int64            `json:"visitas"`
	Guardados  int64            `json:"guardados"`
	Conversion int64            `json:"conversion"`
	Eventos    map[string]int64 `json:"eventos"`
}

// FestivalPage is an ordered, paginated festival listing with the resolved
// filter values and totals computed before slicing.
type FestivalPage struct {
	Festivals  []Festival
	Total      int
	TotalPages int
	Params     ListFestivalsParams
}

// MunicipalityPage is an ordered, paginated municipality listing.
type MunicipalityPage struct {
	Municipalities []Municipality
	Total          int
	TotalPages     int
	Params         ListMunicipalitiesParams
}

// HolidayPage is an ordered, paginated holiday listing.
type HolidayPage struct {
	Holidays   []Holiday
	Total      int
	TotalPages int
	Params     ListHolidaysParams
}
