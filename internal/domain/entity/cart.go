package entity

// Modos de emisión de guía.
const (
	GuideModeConsolidated = "CONSOLIDADO"
	GuideModeIndividual   = "INDIVIDUAL"
)

// CartLine línea del carrito: insumo y cantidad solicitada.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Cart carrito de guía en construcción (estado del cliente; no reserva stock).
// Conserva el orden de inserción, que define el sufijo de las guías individuales.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Find devuelve el índice de la línea del insumo o -1.
func (c *Cart) Find(itemID string) int {
	for i, l := range c.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Remove quita la línea del insumo si existe.
func (c *Cart) Remove(itemID string) {
	if i := c.Find(itemID); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }
