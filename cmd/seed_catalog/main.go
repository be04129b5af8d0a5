// seed_catalog genera un script SQL para cargar el catálogo inicial de insumos
// a partir de un CSV exportado de la hoja de inventario del almacén.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual. Acepta UTF-8 o ISO-8859-1.
// Escribe: internal/infrastructure/postgres/seeds/catalog_seed.sql
//
// Columnas (con encabezado): nombre;categoria;cantidad;unidad;estado;valor_unitario;
// ubicacion;marca;modelo;serie;codigo_patrimonial;anio. Separador ';' o ','.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/pkg/logger"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

// catalogNamespace espacio de nombres para IDs deterministas: volver a generar el script no duplica insumos.
var catalogNamespace = uuid.MustParse("6f1c0c1e-3b7a-4e55-9d0e-2a4b8f1d7c90")

func main() {
	log := logger.New(logger.Config{Env: "development", Level: "info", Service: "seed_catalog"}).Component("seed")

	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}

	items, skipped, err := parseCatalog(raw)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}
	for _, s := range skipped {
		log.Warn().Msg(s)
	}

	outDir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "seeds")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("crear directorio de salida")
	}
	outPath := filepath.Join(outDir, "catalog_seed.sql")
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("crear archivo")
	}
	defer out.Close()

	if err := writeSeedSQL(out, filepath.Base(csvPath), items); err != nil {
		log.Fatal().Err(err).Msg("escribir SQL")
	}
	log.Info().Str("path", outPath).Int("insumos", len(items)).Int("omitidas", len(skipped)).Msg("script generado")
}

// parseCatalog decodifica el CSV y devuelve los insumos válidos y un aviso por cada fila omitida.
func parseCatalog(raw []byte) ([]*entity.SupplyItem, []string, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.Comma = detectComma(raw)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("encabezado: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"nombre", "categoria", "cantidad", "unidad"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var (
		items   []*entity.SupplyItem
		skipped []string
	)
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("línea %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		item, err := toItem(field)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("línea %d omitida: %v", line, err))
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func toItem(field func(string) string) (*entity.SupplyItem, error) {
	name := field("nombre")
	if name == "" {
		return nil, fmt.Errorf("nombre vacío")
	}
	category := field("categoria")
	if !entity.ValidCategory(category) {
		return nil, fmt.Errorf("categoría desconocida %q", category)
	}
	qty, err := strconv.Atoi(field("cantidad"))
	if err != nil || qty < 0 {
		return nil, fmt.Errorf("cantidad inválida %q", field("cantidad"))
	}
	unit := field("unidad")
	if unit == "" {
		return nil, fmt.Errorf("unidad vacía")
	}
	state := field("estado")
	if state == "" {
		state = entity.StateNew
	}
	if !entity.ValidState(state) {
		return nil, fmt.Errorf("estado desconocido %q", state)
	}
	value := decimal.Zero
	if v := field("valor_unitario"); v != "" {
		value, err = decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
		if err != nil || value.IsNegative() {
			return nil, fmt.Errorf("valor unitario inválido %q", v)
		}
	}
	year := 0
	if y := field("anio"); y != "" {
		if year, err = strconv.Atoi(y); err != nil {
			return nil, fmt.Errorf("año inválido %q", y)
		}
	}
	serial := field("serie")
	return &entity.SupplyItem{
		ID:        uuid.NewSHA1(catalogNamespace, []byte(strings.ToLower(name)+"|"+serial)).String(),
		Name:      name,
		Category:  category,
		Quantity:  qty,
		Unit:      unit,
		State:     state,
		UnitValue: value.Round(2),
		Location:  field("ubicacion"),
		Brand:     field("marca"),
		Model:     field("modelo"),
		Serial:    serial,
		AssetCode: field("codigo_patrimonial"),
		AssetYear: year,
	}, nil
}

// writeSeedSQL escribe un INSERT idempotente (ON CONFLICT DO NOTHING) por insumo.
func writeSeedSQL(w io.Writer, source string, items []*entity.SupplyItem) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial de insumos\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", escapeSQL(source))
	for _, it := range items {
		search := textsearch.Join(it.Name, it.Brand, it.Model, it.Serial, it.AssetCode, it.Location)
		b.WriteString("INSERT INTO supply_items (id, name, category, quantity, unit, state, unit_value, location, brand, model, serial, asset_code, asset_year, search_text)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %d, '%s', '%s', %s, '%s', '%s', '%s', '%s', '%s', %d, '%s')\n",
			it.ID, escapeSQL(it.Name), it.Category, it.Quantity, escapeSQL(it.Unit), it.State,
			it.UnitValue.StringFixed(2), escapeSQL(it.Location), escapeSQL(it.Brand), escapeSQL(it.Model),
			escapeSQL(it.Serial), escapeSQL(it.AssetCode), it.AssetYear, escapeSQL(search))
		b.WriteString("ON CONFLICT (id) DO NOTHING;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// detectComma elige ';' si la primera línea lo usa (exportaciones de hojas de cálculo en español).
func detectComma(raw []byte) rune {
	first, _, _ := bytes.Cut(raw, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
