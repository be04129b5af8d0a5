package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// Títulos de acta según la dirección de la guía.
const (
	DocumentDelivery = "Acta de Entrega"
	DocumentReturn   = "Acta de Devolución"
)

// DocumentLine línea del acta.
type DocumentLine struct {
	ItemID    string
	ItemName  string
	Category  string
	Unit      string
	AssetCode string
	Serial    string
	Quantity  int
	UnitValue decimal.Decimal
	Total     decimal.Decimal
}

// GuideDocument datos de una guía listos para renderizar (PDF o XML).
type GuideDocument struct {
	Title             string
	GuideNumber       string
	IssuedAt          time.Time
	Direction         string
	Status            string
	ResponsibleID     string
	DestinationID     string
	ReceiverName      string
	DelivererName     string
	Observation       string
	OriginGuideNumber string
	EvidenceURL       string
	AnnulledBy        string
	Lines             []DocumentLine
	TotalUnits        int
	TotalValue        decimal.Decimal
	VerificationCode  string // SHA-256 del XML canónico; lo completa el caso de uso antes del PDF
}

// GuideXMLRenderer genera la representación XML de la guía y su código de verificación.
type GuideXMLRenderer interface {
	RenderXML(doc *GuideDocument) (xmlBytes []byte, digest string, err error)
}

// GuidePDFGenerator genera el acta en PDF.
type GuidePDFGenerator interface {
	GenerateGuidePDF(ctx context.Context, doc *GuideDocument) ([]byte, error)
}

// GuideDocumentUseCase exporta (o reimprime) una guía existente. Nunca modifica el libro.
type GuideDocumentUseCase struct {
	ledger *MovementLedger
	xml    GuideXMLRenderer
	pdf    GuidePDFGenerator
}

// NewGuideDocumentUseCase construye el caso de uso.
func NewGuideDocumentUseCase(l *MovementLedger, xml GuideXMLRenderer, pdf GuidePDFGenerator) *GuideDocumentUseCase {
	return &GuideDocumentUseCase{ledger: l, xml: xml, pdf: pdf}
}

// XML retorna el XML de la guía, su código de verificación y el nombre de archivo sugerido.
func (uc *GuideDocumentUseCase) XML(ctx context.Context, guideNumber string) ([]byte, string, string, error) {
	doc, err := uc.document(ctx, guideNumber)
	if err != nil {
		return nil, "", "", err
	}
	out, digest, err := uc.xml.RenderXML(doc)
	if err != nil {
		return nil, "", "", fmt.Errorf("documento: xml: %w", err)
	}
	return out, digest, doc.GuideNumber + ".xml", nil
}

// PDF retorna el acta en PDF (con el código de verificación del XML) y el nombre de archivo sugerido.
func (uc *GuideDocumentUseCase) PDF(ctx context.Context, guideNumber string) ([]byte, string, error) {
	doc, err := uc.document(ctx, guideNumber)
	if err != nil {
		return nil, "", err
	}
	_, digest, err := uc.xml.RenderXML(doc)
	if err != nil {
		return nil, "", fmt.Errorf("documento: xml: %w", err)
	}
	doc.VerificationCode = digest
	out, err := uc.pdf.GenerateGuidePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("documento: pdf: %w", err)
	}
	return out, doc.GuideNumber + ".pdf", nil
}

func (uc *GuideDocumentUseCase) document(ctx context.Context, guideNumber string) (*GuideDocument, error) {
	view, err := uc.ledger.Guide(ctx, guideNumber)
	if err != nil {
		return nil, err
	}
	return BuildGuideDocument(view), nil
}

// BuildGuideDocument arma el documento a partir de la guía: cabecera del primer movimiento
// y una línea por movimiento, valorizada con el valor unitario actual del insumo.
func BuildGuideDocument(view *GuideView) *GuideDocument {
	head := view.Head()
	title := DocumentDelivery
	if head.Direction == entity.DirectionIn && head.OriginGuideNumber != "" {
		title = DocumentReturn
	}
	doc := &GuideDocument{
		Title:             title,
		GuideNumber:       head.GuideNumber,
		IssuedAt:          head.MovedAt,
		Direction:         head.Direction,
		Status:            head.Status,
		ResponsibleID:     head.ResponsibleID,
		DestinationID:     head.DestinationID,
		ReceiverName:      head.ReceiverName,
		DelivererName:     head.DelivererName,
		Observation:       head.Observation,
		OriginGuideNumber: head.OriginGuideNumber,
		EvidenceURL:       head.EvidenceURL,
		AnnulledBy:        head.AnnulledBy,
		TotalValue:        decimal.Zero,
	}
	for _, l := range view.Lines {
		dl := DocumentLine{
			ItemID:    l.Movement.ItemID,
			ItemName:  l.Movement.ItemID,
			Quantity:  l.Movement.Quantity,
			UnitValue: decimal.Zero,
		}
		if l.Item != nil {
			dl.ItemName = l.Item.Name
			dl.Category = l.Item.Category
			dl.Unit = l.Item.Unit
			dl.AssetCode = l.Item.AssetCode
			dl.Serial = l.Item.Serial
			dl.UnitValue = l.Item.UnitValue
		}
		dl.Total = dl.UnitValue.Mul(decimal.NewFromInt(int64(dl.Quantity)))
		doc.Lines = append(doc.Lines, dl)
		doc.TotalUnits += dl.Quantity
		doc.TotalValue = doc.TotalValue.Add(dl.Total)
	}
	return doc
}
