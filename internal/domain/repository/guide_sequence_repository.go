package repository

import "context"

// GuideSequenceRepository numeración correlativa de guías por prefijo y año.
// Next debe ejecutarse dentro de la transacción del commit: si ésta hace rollback el número no se consume.
type GuideSequenceRepository interface {
	Next(ctx context.Context, prefix string, year int) (int64, error)
}
