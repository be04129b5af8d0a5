package memory

import (
	"context"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_DescartaClavesVencidas(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)
	s := NewIdempotencyStore(time.Minute)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		ok, err := s.Reserve(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, 3, s.Len())

	now = now.Add(2 * time.Minute)
	ok, err := s.Reserve(ctx, "d")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len(), "las claves vencidas se descartan")

	ok, err = s.Reserve(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok, "una clave vencida puede reservarse de nuevo")
}

// La clave guardada no depende del buffer del llamador (fasthttp entrega headers sin copiar).
func TestIdempotencyStore_CopiaLaClave(t *testing.T) {
	s := NewIdempotencyStore(time.Minute)
	ctx := context.Background()

	buf := []byte("clave-A")
	ok, err := s.Reserve(ctx, unsafe.String(&buf[0], len(buf)))
	require.NoError(t, err)
	require.True(t, ok)
	copy(buf, "clave-B")

	ok, err = s.Reserve(ctx, "clave-A")
	require.NoError(t, err)
	assert.False(t, ok)
}
