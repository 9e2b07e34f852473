package etl

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"prodexport/internal/domain"
)

// ── Transformer ────────────────────────────────────────────
// Turns one raw product document into zero, one or many export rows.
// Malformed or incomplete documents are skipped, never reported as errors,
// so one bad upstream record cannot abort the batch.

// Transformer decodes, validates, enriches and expands raw records.
type Transformer struct {
	names  *NameCache
	logger *slog.Logger
}

// NewTransformer creates a Transformer that resolves names through cache.
func NewTransformer(cache *NameCache) *Transformer {
	return &Transformer{names: cache, logger: slog.Default()}
}

// SetLogger routes the transformer's and its cache's logs to l.
func (t *Transformer) SetLogger(l *slog.Logger) {
	t.logger = l
	if t.names != nil {
		t.names.SetLogger(l)
	}
}

// Names returns the cache the transformer resolves through.
func (t *Transformer) Names() *NameCache { return t.names }

// Transform returns the rows for raw: empty when the record is skipped,
// otherwise alternate-part rows first and the canonical row last.
func (t *Transformer) Transform(ctx context.Context, raw RawRecord) []Row {
	doc, err := decodeDocument(raw)
	if err != nil {
		t.logger.Debug("skip undecodable record", "error", err)
		return nil
	}
	p := doc.Product
	if blank(p.ProductID) {
		return nil
	}

	ean := joinEANCodes(doc.EANCodes)
	title, hasTitle := internationalTitle(doc.SummaryTitles)

	supplierID := toID(p.SupplierID)
	supplierName, hasSupplier := t.names.Supplier(ctx, supplierID)
	categoryName, hasCategory := t.names.Category(ctx, toID(p.CategoryID))
	// Family is looked up but does not gate emission.
	familyName, _ := t.names.Family(ctx, toID(p.FamilyID))

	if blank(p.ProdID) || blank(p.Name) || p.Active == nil || p.Quality == nil ||
		!hasTitle || !hasCategory || !hasSupplier {
		t.logger.Debug("skip incomplete record", "product_id", text(p.ProductID))
		return nil
	}

	var row Row
	row[ColPartNumber] = text(p.ProdID)
	row[ColBrand] = supplierName
	row[ColQuality] = text(p.Quality)
	row[ColCategory] = categoryName
	row[ColModelName] = text(p.Name)
	row[ColEAN] = ean
	row[ColMarketPresence] = text(p.Active)
	row[ColFamily] = familyName
	row[ColTitle] = title

	if len(doc.ProductMap) == 0 {
		return []Row{row}
	}
	return t.expandAlternates(ctx, row, doc.ProductMap, supplierID)
}

// expandAlternates clones canonical once per alternate part number that
// differs from it. Duplicate part numbers collapse to the last entry.
func (t *Transformer) expandAlternates(ctx context.Context, canonical Row, parts []domain.AlternatePart, supplierID int64) []Row {
	var order []string
	suppliers := make(map[string]int64, len(parts))
	for _, part := range parts {
		if part.ProdID == nil || part.SupplierID == nil {
			continue
		}
		mpn := text(part.ProdID)
		if _, seen := suppliers[mpn]; !seen {
			order = append(order, mpn)
		}
		suppliers[mpn] = toID(part.SupplierID)
	}

	rows := make([]Row, 0, len(order)+1)
	for _, mpn := range order {
		if mpn == canonical[ColPartNumber] {
			continue
		}
		clone := canonical
		clone[ColPartNumber] = mpn
		if altSupplier := suppliers[mpn]; altSupplier != supplierID {
			// An unresolved alternate supplier leaves the brand empty.
			clone[ColBrand], _ = t.names.Supplier(ctx, altSupplier)
		}
		rows = append(rows, clone)
	}
	if len(rows) == 0 {
		return []Row{canonical}
	}
	return append(rows, canonical)
}

func decodeDocument(raw RawRecord) (*domain.ProductDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc domain.ProductDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func joinEANCodes(codes []domain.EANCode) string {
	values := lo.FilterMap(codes, func(c domain.EANCode, _ int) (string, bool) {
		if c.Code == nil {
			return "", false
		}
		return text(c.Code), true
	})
	return strings.Join(values, CellContentSeparator)
}

func internationalTitle(titles domain.SummaryTitles) (string, bool) {
	st, ok := titles[domain.LanguageIDInt]
	if !ok || blank(st.Title) {
		return "", false
	}
	return text(st.Title), true
}

// text renders a loosely typed scalar the way it appears in the file.
// Booleans render as "1" and "".
func text(v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case json.Number:
		return b.String()
	case bool:
		if b {
			return "1"
		}
		return ""
	}
	return cast.ToString(v)
}

// blank reports whether v is missing or an empty value ("", "0", 0, false).
func blank(v any) bool {
	s := text(v)
	return s == "" || s == "0"
}

// toID converts an id field to int64. Strings and JSON numbers are read as
// base-10 integers ("010" is 10); integral floats such as "1.0" are accepted.
// Anything else becomes 0, which no reference store resolves.
func toID(v any) int64 {
	var s string
	switch n := v.(type) {
	case nil:
		return 0
	case json.Number:
		s = n.String()
	case string:
		s = n
	default:
		id, err := cast.ToInt64E(v)
		if err != nil {
			return 0
		}
		return id
	}

	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}
