package xmldoc_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/xmldoc"
)

func sampleDocument() *ledger.GuideDocument {
	return &ledger.GuideDocument{
		Title:             ledger.DocumentReturn,
		GuideNumber:       "DEV-2024-0002",
		IssuedAt:          time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		Direction:         "Entrada",
		Status:            "Activo",
		ResponsibleID:     "12345678",
		OriginGuideNumber: "G-2024-0007",
		ReceiverName:      "Luis Rojas & Cía",
		Lines: []ledger.DocumentLine{{
			ItemID:    "item-1",
			ItemName:  "Taladro <percutor>",
			Quantity:  1,
			UnitValue: decimal.RequireFromString("350"),
			Total:     decimal.RequireFromString("350"),
		}},
		TotalUnits: 1,
		TotalValue: decimal.RequireFromString("350"),
	}
}

func TestRenderXML_Estructura(t *testing.T) {
	out, digest, err := xmldoc.NewGuideXMLRenderer().RenderXML(sampleDocument())
	require.NoError(t, err)
	assert.Len(t, digest, 64)

	parsed := etree.NewDocument()
	require.NoError(t, parsed.ReadFromBytes(out))
	root := parsed.Root()
	require.NotNil(t, root)
	assert.Equal(t, "Guia", root.Tag)
	assert.Equal(t, "DEV-2024-0002", root.SelectAttrValue("numero", ""))
	assert.Equal(t, "G-2024-0007", root.SelectElement("GuiaOrigen").Text())
	assert.Equal(t, "Luis Rojas & Cía", root.FindElement("Responsable/Recibe").Text())
	assert.Equal(t, "Taladro <percutor>", root.FindElement("Lineas/Linea/Nombre").Text())
	assert.Equal(t, "350.00", root.FindElement("Totales/ValorReferencial").Text())
	assert.Nil(t, root.SelectElement("Evidencia"), "los campos vacíos se omiten")
}

func TestRenderXML_DigestDeterministico(t *testing.T) {
	r := xmldoc.NewGuideXMLRenderer()
	doc := sampleDocument()
	_, d1, err := r.RenderXML(doc)
	require.NoError(t, err)

	doc.VerificationCode = "ignorado"
	_, d2, err := r.RenderXML(doc)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	doc.Lines[0].Quantity = 2
	_, d3, err := r.RenderXML(doc)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestDigest_IgnoraFormatoDeAtributos(t *testing.T) {
	a, err := xmldoc.Digest([]byte(`<a y="2" x="1"><b/></a>`))
	require.NoError(t, err)
	b, err := xmldoc.Digest([]byte(`<a x='1' y='2'><b></b></a>`))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = xmldoc.Digest([]byte(`<a><b></a>`))
	assert.Error(t, err)
}
