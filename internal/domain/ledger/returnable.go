package ledger

import "github.com/jhoicas/Insumos-api/internal/domain/entity"

// ReturnLine cantidades de un insumo respecto de una guía de salida.
type ReturnLine struct {
	ItemID    string
	Original  int // entregado por la guía (movimientos Salida activos)
	Returned  int // devuelto por guías de devolución activas
	Remaining int
}

// ReturnableByItem calcula, por insumo, lo pendiente de devolver de una guía de salida.
// issued son los movimientos de la guía origen; returns los movimientos de entrada cuyo
// OriginGuideNumber es esa guía. Solo cuentan los movimientos activos. El orden del resultado
// sigue el de la primera aparición en issued.
func ReturnableByItem(issued, returns []*entity.Movement) []ReturnLine {
	index := make(map[string]int)
	var lines []ReturnLine
	for _, m := range issued {
		if !m.IsActive() || m.Direction != entity.DirectionOut {
			continue
		}
		i, ok := index[m.ItemID]
		if !ok {
			i = len(lines)
			index[m.ItemID] = i
			lines = append(lines, ReturnLine{ItemID: m.ItemID})
		}
		lines[i].Original += m.Quantity
	}
	for _, m := range returns {
		if !m.IsActive() || m.Direction != entity.DirectionIn {
			continue
		}
		if i, ok := index[m.ItemID]; ok {
			lines[i].Returned += m.Quantity
		}
	}
	for i := range lines {
		lines[i].Remaining = lines[i].Original - lines[i].Returned
		if lines[i].Remaining < 0 {
			lines[i].Remaining = 0
		}
	}
	return lines
}
