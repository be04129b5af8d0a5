// Package xmldoc serializa una guía a XML y calcula su código de verificación
// (SHA-256 de la forma canónica C14N del documento).
package xmldoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
)

// Namespace del documento de guía.
const NsGuide = "urn:insumos:guia:1"

var _ ledger.GuideXMLRenderer = (*GuideXMLRenderer)(nil)

// GuideXMLRenderer implementa ledger.GuideXMLRenderer con etree.
type GuideXMLRenderer struct{}

// NewGuideXMLRenderer crea el renderer.
func NewGuideXMLRenderer() *GuideXMLRenderer { return &GuideXMLRenderer{} }

// RenderXML genera el XML indentado y el digest hex de su forma canónica.
// VerificationCode no forma parte del documento: el digest se calcula sobre el resto.
func (r *GuideXMLRenderer) RenderXML(doc *ledger.GuideDocument) ([]byte, string, error) {
	if doc == nil {
		return nil, "", fmt.Errorf("xmldoc: documento nil")
	}
	out, err := build(doc).WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmldoc: serializar: %w", err)
	}
	digest, err := Digest(out)
	if err != nil {
		return nil, "", err
	}
	return out, digest, nil
}

// Digest canonicaliza el XML (C14N inclusivo) y devuelve su SHA-256 en hex.
// La indentación y el orden de atributos no alteran el resultado.
func Digest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canon, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xmldoc: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

func build(doc *ledger.GuideDocument) *etree.Document {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement("Guia")
	root.CreateAttr("xmlns", NsGuide)
	root.CreateAttr("numero", doc.GuideNumber)
	root.CreateAttr("estado", doc.Status)

	root.CreateElement("Titulo").SetText(doc.Title)
	root.CreateElement("FechaEmision").SetText(doc.IssuedAt.UTC().Format(time.RFC3339))
	root.CreateElement("Direccion").SetText(doc.Direction)
	if doc.OriginGuideNumber != "" {
		root.CreateElement("GuiaOrigen").SetText(doc.OriginGuideNumber)
	}

	resp := root.CreateElement("Responsable")
	resp.CreateAttr("dni", doc.ResponsibleID)
	optional(resp, "Establecimiento", doc.DestinationID)
	optional(resp, "Entrega", doc.DelivererName)
	optional(resp, "Recibe", doc.ReceiverName)

	optional(root, "Observacion", doc.Observation)
	optional(root, "Evidencia", doc.EvidenceURL)
	optional(root, "AnuladoPor", doc.AnnulledBy)

	lines := root.CreateElement("Lineas")
	for i, l := range doc.Lines {
		el := lines.CreateElement("Linea")
		el.CreateAttr("n", strconv.Itoa(i+1))
		el.CreateElement("InsumoID").SetText(l.ItemID)
		el.CreateElement("Nombre").SetText(l.ItemName)
		optional(el, "Categoria", l.Category)
		optional(el, "Unidad", l.Unit)
		optional(el, "CodigoPatrimonial", l.AssetCode)
		optional(el, "Serie", l.Serial)
		el.CreateElement("Cantidad").SetText(strconv.Itoa(l.Quantity))
		el.CreateElement("ValorUnitario").SetText(l.UnitValue.StringFixed(2))
		el.CreateElement("Total").SetText(l.Total.StringFixed(2))
	}

	totals := root.CreateElement("Totales")
	totals.CreateElement("Unidades").SetText(strconv.Itoa(doc.TotalUnits))
	totals.CreateElement("ValorReferencial").SetText(doc.TotalValue.StringFixed(2))

	x.Indent(2)
	return x
}

func optional(parent *etree.Element, tag, value string) {
	if value != "" {
		parent.CreateElement(tag).SetText(value)
	}
}
