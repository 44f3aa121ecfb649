package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accented_lowercase", input: "Cáceres", want: "caceres"},
		{name: "plain", input: "caceres", want: "caceres"},
		{name: "uppercase_with_padding", input: "  CACERES  ", want: "caceres"},
		{name: "interior_whitespace_collapsed", input: "San   Pedro \t de   Urabá", want: "san pedro de uraba"},
		{name: "enye_is_kept", input: "El Peñol", want: "el peñol"},
		{name: "empty", input: "", want: ""},
		{name: "only_whitespace", input: "   ", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	t.Parallel()

	// All spellings of the same name resolve to one comparison key.
	spellings := []string{"Cáceres", "caceres", "  CACERES  ", "cÁceres"}
	for _, s := range spellings {
		assert.Equal(t, "caceres", Normalize(s), "spelling %q", s)
	}
}

func TestFilterMunicipalities(t *testing.T) {
	t.Parallel()

	subregion := "Oriente"
	rows := []Municipality{
		{ID: 1, Nombre: "Guatapé", Departamento: "Antioquia", Subregion: &subregion},
		{ID: 2, Nombre: "El Peñol", Departamento: "Antioquia"},
		{ID: 3, Nombre: "Necoclí", Departamento: "Antioquia"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{name: "empty_query_keeps_all", query: "", wantIDs: []int64{1, 2, 3}},
		{name: "accent_insensitive_name", query: "guatape", wantIDs: []int64{1}},
		{name: "accented_query", query: "necoclí", wantIDs: []int64{3}},
		{name: "substring", query: "peñol", wantIDs: []int64{2}},
		{name: "subregion_match", query: "oriente", wantIDs: []int64{1}},
		{name: "no_match", query: "cartagena", wantIDs: []int64{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			filtered := FilterMunicipalities(rows, tt.query)

			ids := make([]int64, 0, len(filtered))
			for _, m := range filtered {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEffectiveEnd(t *testing.T) {
	t.Parallel()

	fin := "2026-06-15"
	multiDay := Festival{FechaInicio: "2026-06-12", FechaFin: &fin}
	assert.Equal(t, "2026-06-15", multiDay.EffectiveEnd())

	singleDay := Festival{FechaInicio: "2026-06-12"}
	assert.Equal(t, "2026-06-12", singleDay.EffectiveEnd())
}
