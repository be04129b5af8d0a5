package dto

import "time"

// CartLineDTO línea del carrito en requests y responses.
type CartLineDTO struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// CartAddRequest agrega un insumo al carrito que mantiene el cliente.
type CartAddRequest struct {
	Lines    []CartLineDTO `json:"lines" validate:"dive"`
	ItemID   string        `json:"item_id" validate:"required"`
	Quantity int           `json:"quantity" validate:"min=0"`
}

// CartSetQuantityRequest cambia la cantidad de una línea existente.
type CartSetQuantityRequest struct {
	Lines    []CartLineDTO `json:"lines" validate:"dive"`
	ItemID   string        `json:"item_id" validate:"required"`
	Quantity int           `json:"quantity"`
}

// CartRemoveRequest quita una línea del carrito.
type CartRemoveRequest struct {
	Lines  []CartLineDTO `json:"lines" validate:"dive"`
	ItemID string        `json:"item_id" validate:"required"`
}

// CartLineResponse línea del carrito con datos del catálogo.
type CartLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
}

// CartResponse carrito resultante; el cliente lo reenvía en la siguiente operación.
type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
}

// CommitGuideRequest confirma un carrito como guía.
type CommitGuideRequest struct {
	Lines         []CartLineDTO `json:"lines" validate:"required,min=1,dive"`
	Mode          string        `json:"mode" validate:"omitempty,oneof=CONSOLIDADO INDIVIDUAL"`
	Direction     string        `json:"direction" validate:"omitempty,oneof=Salida Entrada"`
	DestinationID string        `json:"destination_id" validate:"max=100"`
	ReceiverName  string        `json:"receiver_name" validate:"max=200"`
	DelivererName string        `json:"deliverer_name" validate:"max=200"`
	Observation   string        `json:"observation" validate:"max=500"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                string     `json:"id"`
	ItemID            string     `json:"item_id"`
	ItemName          string     `json:"item_name,omitempty"`
	Unit              string     `json:"unit,omitempty"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	Direction         string     `json:"direction"`
	Quantity          int        `json:"quantity"`
	QuantityBefore    int        `json:"quantity_before"`
	QuantityAfter     int        `json:"quantity_after"`
	GuideNumber       string     `json:"guide_number"`
	OriginGuideNumber string     `json:"origin_guide_number,omitempty"`
	ResponsibleID     string     `json:"responsible_id"`
	DestinationID     string     `json:"destination_id,omitempty"`
	ReceiverName      string     `json:"receiver_name,omitempty"`
	DelivererName     string     `json:"deliverer_name,omitempty"`
	EvidenceURL       string     `json:"evidence_url,omitempty"`
	Observation       string     `json:"observation,omitempty"`
	Status            string     `json:"status"`
	AnnulledBy        string     `json:"annulled_by,omitempty"`
	AnnulledAt        *time.Time `json:"annulled_at,omitempty"`
}

// CommitGuideResponse números de guía emitidos y sus movimientos.
type CommitGuideResponse struct {
	GuideNumbers []string           `json:"guide_numbers"`
	Movements    []MovementResponse `json:"movements"`
}

// GuideResponse guía con sus líneas (detalle o entrada del historial).
type GuideResponse struct {
	Key               string             `json:"key"`
	GuideNumber       string             `json:"guide_number,omitempty"`
	Date              string             `json:"date"`
	Time              string             `json:"time"`
	Direction         string             `json:"direction"`
	Status            string             `json:"status"`
	ResponsibleID     string             `json:"responsible_id"`
	DestinationID     string             `json:"destination_id,omitempty"`
	ReceiverName      string             `json:"receiver_name,omitempty"`
	DelivererName     string             `json:"deliverer_name,omitempty"`
	EvidenceURL       string             `json:"evidence_url,omitempty"`
	Observation       string             `json:"observation,omitempty"`
	OriginGuideNumber string             `json:"origin_guide_number,omitempty"`
	TotalUnits        int                `json:"total_units"`
	Lines             []MovementResponse `json:"lines"`
}

// GuideHistoryRequest filtros del historial (query string). From/To en formato YYYY-MM-DD.
type GuideHistoryRequest struct {
	Search    string `query:"search"`
	Direction string `query:"direction" validate:"omitempty,oneof=Salida Entrada"`
	Status    string `query:"status" validate:"omitempty,oneof=Activo Anulado"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PageRequest
}

// GuideHistoryResponse historial agrupado por guía.
type GuideHistoryResponse struct {
	Items []GuideResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AnnulGuideRequest motivo de la anulación.
type AnnulGuideRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// AttachEvidenceRequest URL de la evidencia (foto o escaneo de la guía firmada).
type AttachEvidenceRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// AttachEvidenceResponse movimientos actualizados.
type AttachEvidenceResponse struct {
	GuideNumber string `json:"guide_number"`
	Updated     int64  `json:"updated"`
}

// ReturnCandidateResponse línea devolvible de una guía de salida.
type ReturnCandidateResponse struct {
	ItemID              string `json:"item_id"`
	ItemName            string `json:"item_name"`
	Unit                string `json:"unit"`
	OriginalQuantity    int    `json:"original_quantity"`
	ReturnedQuantity    int    `json:"returned_quantity"`
	RemainingReturnable int    `json:"remaining_returnable"`
}

// ReturnSelectionDTO cantidad a devolver de un insumo.
type ReturnSelectionDTO struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// ProceedReturnRequest devolución parcial o total de una guía de salida.
type ProceedReturnRequest struct {
	Selections  []ReturnSelectionDTO `json:"selections" validate:"required,min=1,dive"`
	DeliveredBy string               `json:"delivered_by" validate:"required,max=200"`
	ReceivedBy  string               `json:"received_by" validate:"required,max=200"`
}

// AnnulGuideResponse movimientos anulados de la guía.
type AnnulGuideResponse struct {
	GuideNumber string             `json:"guide_number"`
	Movements   []MovementResponse `json:"movements"`
}
