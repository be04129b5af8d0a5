package http

import (
	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

func toSupplyResponse(s *entity.SupplyItem) dto.SupplyResponse {
	return dto.SupplyResponse{
		ID:           s.ID,
		Name:         s.Name,
		Category:     s.Category,
		Quantity:     s.Quantity,
		Unit:         s.Unit,
		State:        s.State,
		UnitValue:    s.UnitValue,
		StockValue:   s.StockValue(),
		Location:     s.Location,
		Description:  s.Description,
		Brand:        s.Brand,
		Model:        s.Model,
		Serial:       s.Serial,
		AssetCode:    s.AssetCode,
		AssetYear:    s.AssetYear,
		RegisteredAt: s.RegisteredAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toSupplyResponses(list []*entity.SupplyItem) []dto.SupplyResponse {
	out := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSupplyResponse(s))
	}
	return out
}

func toValuationResponse(v *ledger.Valuation) dto.ValuationResponse {
	out := dto.ValuationResponse{
		Items:      v.Items,
		Units:      v.Units,
		TotalValue: v.TotalValue,
		ByCategory: make([]dto.CategoryValuationResponse, 0, len(v.ByCategory)),
	}
	for _, c := range v.ByCategory {
		out.ByCategory = append(out.ByCategory, dto.CategoryValuationResponse{
			Category:   c.Category,
			Items:      c.Items,
			Units:      c.Units,
			TotalValue: c.TotalValue,
		})
	}
	return out
}

func toCartResponse(lines []ledger.CartLineView) dto.CartResponse {
	out := dto.CartResponse{Lines: make([]dto.CartLineResponse, 0, len(lines))}
	for _, l := range lines {
		r := dto.CartLineResponse{ItemID: l.Line.ItemID, Quantity: l.Line.Quantity}
		if l.Item != nil {
			r.Name = l.Item.Name
			r.Unit = l.Item.Unit
			r.Available = l.Item.Quantity
		}
		out.Lines = append(out.Lines, r)
	}
	return out
}

func toCart(lines []dto.CartLineDTO) entity.Cart {
	cart := entity.Cart{Lines: make([]entity.CartLine, 0, len(lines))}
	for _, l := range lines {
		cart.Lines = append(cart.Lines, entity.CartLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return cart
}

// toMovementResponse item puede ser nil.
func toMovementResponse(m *entity.Movement, item *entity.SupplyItem) dto.MovementResponse {
	r := dto.MovementResponse{
		ID:                m.ID,
		ItemID:            m.ItemID,
		Date:              m.Date(),
		Time:              m.Time(),
		Direction:         m.Direction,
		Quantity:          m.Quantity,
		QuantityBefore:    m.QuantityBefore,
		QuantityAfter:     m.QuantityAfter,
		GuideNumber:       m.GuideNumber,
		OriginGuideNumber: m.OriginGuideNumber,
		ResponsibleID:     m.ResponsibleID,
		DestinationID:     m.DestinationID,
		ReceiverName:      m.ReceiverName,
		DelivererName:     m.DelivererName,
		EvidenceURL:       m.EvidenceURL,
		Observation:       m.Observation,
		Status:            m.Status,
		AnnulledBy:        m.AnnulledBy,
		AnnulledAt:        m.AnnulledAt,
	}
	if item != nil {
		r.ItemName = item.Name
		r.Unit = item.Unit
	}
	return r
}

func toMovementResponses(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m, nil))
	}
	return out
}

func toCommitResponse(res *ledger.CommitResult) dto.CommitGuideResponse {
	return dto.CommitGuideResponse{
		GuideNumbers: res.GuideNumbers,
		Movements:    toMovementResponses(res.Movements),
	}
}

func toGuideResponse(v *ledger.GuideView) dto.GuideResponse {
	head := v.Head()
	out := dto.GuideResponse{Key: v.Key, Lines: make([]dto.MovementResponse, 0, len(v.Lines))}
	if head != nil {
		out.GuideNumber = head.GuideNumber
		out.Date = head.Date()
		out.Time = head.Time()
		out.Direction = head.Direction
		out.Status = head.Status
		out.ResponsibleID = head.ResponsibleID
		out.DestinationID = head.DestinationID
		out.ReceiverName = head.ReceiverName
		out.DelivererName = head.DelivererName
		out.EvidenceURL = head.EvidenceURL
		out.Observation = head.Observation
		out.OriginGuideNumber = head.OriginGuideNumber
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, toMovementResponse(l.Movement, l.Item))
		out.TotalUnits += l.Movement.Quantity
	}
	return out
}

func toReturnCandidates(list []ledger.ReturnCandidate) []dto.ReturnCandidateResponse {
	out := make([]dto.ReturnCandidateResponse, 0, len(list))
	for _, c := range list {
		r := dto.ReturnCandidateResponse{
			ItemID:              c.ItemID,
			ItemName:            c.ItemID,
			OriginalQuantity:    c.OriginalQuantity,
			ReturnedQuantity:    c.ReturnedQuantity,
			RemainingReturnable: c.RemainingReturnable,
		}
		if c.Item != nil {
			r.ItemName = c.Item.Name
			r.Unit = c.Item.Unit
		}
		out = append(out, r)
	}
	return out
}
