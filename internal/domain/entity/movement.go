package entity

import "time"

// Dirección del movimiento.
const (
	DirectionOut = "Salida"
	DirectionIn  = "Entrada"
)

// Estado del movimiento.
const (
	MovementActive   = "Activo"
	MovementAnnulled = "Anulado"
)

// SingleGroupPrefix clave de agrupación para movimientos sin número de guía.
const SingleGroupPrefix = "single-"

// Movement representa un movimiento de insumo (salida o entrada) asociado a una guía.
// Inmutable salvo Status, AnnulledBy, AnnulledAt y EvidenceURL.
type Movement struct {
	ID                string
	ItemID            string
	Sequence          int64 // orden de creación
	MovedAt           time.Time
	Direction         string
	Quantity          int // siempre > 0
	QuantityBefore    int // stock del insumo antes de aplicar el movimiento
	QuantityAfter     int
	GuideNumber       string
	OriginGuideNumber string // guía de salida de la que proviene una devolución
	ResponsibleID     string // DNI de quien emite
	DestinationID     string // establecimiento destino (opcional)
	ReceiverName      string
	DelivererName     string
	EvidenceURL       string
	Observation       string
	Status            string
	AnnulledBy        string
	AnnulledAt        *time.Time
	CreatedAt         time.Time
}

// Date fecha del movimiento (YYYY-MM-DD).
func (m *Movement) Date() string { return m.MovedAt.Format("2006-01-02") }

// Time hora del movimiento (HH:MM:SS).
func (m *Movement) Time() string { return m.MovedAt.Format("15:04:05") }

// GroupKey devuelve la clave de agrupación: el número de guía o "single-<id>".
func (m *Movement) GroupKey() string {
	if m.GuideNumber != "" {
		return m.GuideNumber
	}
	return SingleGroupPrefix + m.ID
}

// IsActive indica si el movimiento no ha sido anulado.
func (m *Movement) IsActive() bool { return m.Status == MovementActive }

// StockDelta efecto del movimiento sobre la cantidad del insumo.
func (m *Movement) StockDelta() int {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// MovementDraft línea a confirmar en el libro de movimientos (aún sin ID ni estado).
type MovementDraft struct {
	ItemID            string
	Direction         string
	Quantity          int
	GuideNumber       string
	OriginGuideNumber string
	ResponsibleID     string
	DestinationID     string
	ReceiverName      string
	DelivererName     string
	Observation       string
}
