package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatGuideNumber arma el número de guía: <prefijo>-<año>-<secuencia con 4 dígitos>.
// Ej: FormatGuideNumber("G", 2024, 3) = "G-2024-0003".
func FormatGuideNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// IndividualGuideNumber sufijo determinístico para el modo individual (index empieza en 1).
func IndividualGuideNumber(base string, index int) string {
	return base + "-" + strconv.Itoa(index)
}

// NormalizeGuideNumber limpia espacios y unifica mayúsculas ("g-2024-0003 " → "G-2024-0003").
func NormalizeGuideNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
