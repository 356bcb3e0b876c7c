package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Nombre":               "nombre",
		"¿Cuántos asistieron?": "cuantos_asistieron",
		"Ofrenda  del   día":   "ofrenda_del_dia",
		"Año de conversión":    "ano_de_conversion",
		"  Teléfono ":          "telefono",
		"":                     "",
		"123 Niños":            "123_ninos",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, in := range []string{"Nombre", "¿Cuántos asistieron?", "ya_es_clave", "Ofrenda del día"} {
		once := Slugify(in)
		assert.Equal(t, once, Slugify(once), "Slugify not idempotent for %q", in)
	}
}
