package textsearch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "devolucion g-2024-0001", textsearch.Fold("  Devolución   G-2024-0001 "))
	assert.Equal(t, "almacen central", textsearch.Fold("ALMACÉN Central"))
	assert.Equal(t, "", textsearch.Fold("   "))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "cable utp satra", textsearch.Join("Cable UTP", "", "Satra"))
}

func TestContains(t *testing.T) {
	assert.True(t, textsearch.Contains("crimpeadora", "Crimpeadora RJ45", "Stanley"))
	assert.True(t, textsearch.Contains("ALMACEN", "Almacén Central"))
	assert.True(t, textsearch.Contains("", "cualquier cosa"))
	assert.False(t, textsearch.Contains("router", "Cable UTP"))
}
