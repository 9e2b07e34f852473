package etl_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodexport/internal/domain"
	"prodexport/internal/etl"
)

func transform(t *testing.T, store *refStore, doc string) []etl.Row {
	t.Helper()
	tr := etl.NewTransformer(etl.NewNameCache(store))
	return tr.Transform(context.Background(), etl.RawRecord(doc))
}

const fullDoc = `{
	"product": {"product_id": 100, "prod_id": "P1", "name": "LaserJet", "quality": "ICECAT",
		"active": 1, "supplier_id": 1, "catid": 10, "family_id": 5},
	"product_ean_codes": [{"ean_code": "A1"}, {"ean_code": "B2"}],
	"product_summary_title": {"0": {"summary_title": "Mono laser printer"}, "1": {"summary_title": "EN title"}}
}`

func TestTransform_CanonicalRow(t *testing.T) {
	rows := transform(t, newRefStore(), fullDoc)
	require.Len(t, rows, 1)
	assert.Equal(t, etl.Row{
		"P1", "HP", "ICECAT", "Printers", "LaserJet", "A1,B2", "1", "LaserJet Pro", "Mono laser printer",
	}, rows[0])
}

func TestTransform_SkipsIncompleteRecords(t *testing.T) {
	cases := map[string]string{
		"undecodable": `{"product": `,
		"no product id": `{"product": {"prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"zero product id": `{"product": {"product_id": 0, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"empty prod_id": `{"product": {"product_id": 1, "prod_id": "", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"no name": `{"product": {"product_id": 1, "prod_id": "P1", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"null active": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": null, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"no quality": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"no international title": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
			"product_summary_title": {"1": {"summary_title": "EN only"}}}`,
		"unresolved supplier": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 404, "catid": 10},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"unresolved category": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 404},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
		"category without English name": `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 11},
			"product_summary_title": {"0": {"summary_title": "T"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			rows := transform(t, newRefStore(), doc)
			assert.Empty(t, rows)
		})
	}
}

func TestTransform_FamilyDoesNotBlock(t *testing.T) {
	doc := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 0, "supplier_id": 1, "catid": 10, "family_id": 999},
		"product_summary_title": {"0": {"summary_title": "T"}}}`
	rows := transform(t, newRefStore(), doc)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][etl.ColFamily])
	assert.Equal(t, "0", rows[0][etl.ColMarketPresence])
}

func TestTransform_AllLookupsHappen(t *testing.T) {
	store := newRefStore()
	doc := `{"product": {"product_id": 1, "prod_id": "", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10, "family_id": 5},
		"product_summary_title": {"0": {"summary_title": "T"}}}`
	rows := transform(t, store, doc)
	assert.Empty(t, rows)
	assert.Equal(t, 1, store.calls[domain.RefSupplier])
	assert.Equal(t, 1, store.calls[domain.RefCategory])
	assert.Equal(t, 1, store.calls[domain.RefFamily])
}

func TestTransform_EANCodes(t *testing.T) {
	base := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
		"product_summary_title": {"0": {"summary_title": "T"}}, "product_ean_codes": %s}`

	cases := []struct {
		codes string
		want  string
	}{
		{`[{"ean_code": "A1"}, {"ean_code": "B2"}]`, "A1,B2"},
		{`[]`, ""},
		{`null`, ""},
		{`[{"ean_code": 4006381333931}, {}, {"ean_code": "X9"}]`, "4006381333931,X9"},
	}
	for _, c := range cases {
		rows := transform(t, newRefStore(), fmt.Sprintf(base, c.codes))
		require.Len(t, rows, 1, c.codes)
		assert.Equal(t, c.want, rows[0][etl.ColEAN], c.codes)
	}
}

func TestTransform_TitlesAsList(t *testing.T) {
	doc := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
		"product_summary_title": [{"summary_title": "International"}, {"summary_title": "English"}]}`
	rows := transform(t, newRefStore(), doc)
	require.Len(t, rows, 1)
	assert.Equal(t, "International", rows[0][etl.ColTitle])
}

func TestTransform_LooseScalars(t *testing.T) {
	doc := `{"product": {"product_id": "100", "prod_id": 12345, "name": "X", "quality": true, "active": "1", "supplier_id": "1", "catid": "10"},
		"product_summary_title": {"0": {"summary_title": "T"}}}`
	rows := transform(t, newRefStore(), doc)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345", rows[0][etl.ColPartNumber])
	assert.Equal(t, "1", rows[0][etl.ColQuality])
	assert.Equal(t, "HP", rows[0][etl.ColBrand])
}

func TestTransform_DecimalIDs(t *testing.T) {
	base := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": %s, "catid": 10},
		"product_summary_title": {"0": {"summary_title": "T"}}}`

	cases := []struct {
		id   string
		want string
	}{
		{`"010"`, "Ten"},
		{`" 8 "`, "Eight"},
		{`"10.0"`, "Ten"},
		{`10.0`, "Ten"},
		{`8`, "Eight"},
	}
	for _, c := range cases {
		store := newRefStore()
		store.suppliers[8] = "Eight"
		store.suppliers[10] = "Ten"
		rows := transform(t, store, fmt.Sprintf(base, c.id))
		require.Len(t, rows, 1, c.id)
		assert.Equal(t, c.want, rows[0][etl.ColBrand], c.id)
	}

	for _, id := range []string{`"0x1A"`, `"1e1x"`, `"8.5"`, `"ten"`} {
		store := newRefStore()
		store.suppliers[8] = "Eight"
		store.suppliers[10] = "Ten"
		store.suppliers[26] = "TwentySix"
		assert.Empty(t, transform(t, store, fmt.Sprintf(base, id)), id)
	}
}

func TestTransform_DecimalAltSupplierID(t *testing.T) {
	store := newRefStore()
	store.suppliers[10] = "Ten"
	store.suppliers[8] = "Eight"
	rows := transform(t, store, fmt.Sprintf(mappedDoc, `[{"prod_id": "P2", "supplier_id": "010"}]`))
	require.Len(t, rows, 2)
	assert.Equal(t, "Ten", rows[0][etl.ColBrand])
}

func TestTransform_NumericTitle(t *testing.T) {
	doc := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
		"product_summary_title": {"0": {"summary_title": 42}}}`
	rows := transform(t, newRefStore(), doc)
	require.Len(t, rows, 1)
	assert.Equal(t, "42", rows[0][etl.ColTitle])

	zero := `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
		"product_summary_title": {"0": {"summary_title": 0}}}`
	assert.Empty(t, transform(t, newRefStore(), zero))
}

// ── Alternate-identifier expansion ─────────────────────────

const mappedDoc = `{"product": {"product_id": 1, "prod_id": "P1", "name": "X", "quality": "Q", "active": 1, "supplier_id": 1, "catid": 10},
	"product_summary_title": {"0": {"summary_title": "T"}}, "product_map": %s}`

func TestTransform_ExpansionSkipsSelf(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc, `[{"prod_id": "P2", "supplier_id": 1}, {"prod_id": "P1", "supplier_id": 1}]`))
	require.Len(t, rows, 2)
	assert.Equal(t, "P2", rows[0][etl.ColPartNumber])
	assert.Equal(t, "HP", rows[0][etl.ColBrand])
	assert.Equal(t, "P1", rows[1][etl.ColPartNumber])

	// Everything but the identifier is cloned.
	clone, canonical := rows[0], rows[1]
	clone[etl.ColPartNumber] = canonical[etl.ColPartNumber]
	assert.Equal(t, canonical, clone)
}

func TestTransform_ExpansionSupplierOverride(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc, `[{"prod_id": "P2", "supplier_id": 3}]`))
	require.Len(t, rows, 2)
	assert.Equal(t, etl.Row{"P2", "Canon", "Q", "Printers", "X", "", "1", "", "T"}, rows[0])
	assert.Equal(t, "HP", rows[1][etl.ColBrand], "canonical row keeps its own supplier")
}

func TestTransform_ExpansionUnresolvedAltSupplier(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc, `[{"prod_id": "P2", "supplier_id": 404}]`))
	require.Len(t, rows, 2)
	assert.Equal(t, "P2", rows[0][etl.ColPartNumber])
	assert.Equal(t, "", rows[0][etl.ColBrand])
}

func TestTransform_ExpansionLastDuplicateWins(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc,
		`[{"prod_id": "P2", "supplier_id": 2}, {"prod_id": "P3", "supplier_id": 1}, {"prod_id": "P2", "supplier_id": 3}]`))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"P2", "P3", "P1"}, partNumbers(rows))
	assert.Equal(t, "Canon", rows[0][etl.ColBrand])
}

func TestTransform_ExpansionOnlySelf(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc, `[{"prod_id": "P1", "supplier_id": 2}]`))
	require.Len(t, rows, 1)
	assert.Equal(t, "HP", rows[0][etl.ColBrand])
}

func TestTransform_ExpansionIgnoresIncompleteEntries(t *testing.T) {
	rows := transform(t, newRefStore(), fmt.Sprintf(mappedDoc, `[{"prod_id": "P2"}, {"supplier_id": 1}, {"prod_id": "P4", "supplier_id": 1}]`))
	assert.Equal(t, []string{"P4", "P1"}, partNumbers(rows))
}

func TestTransform_ExpansionReusesCache(t *testing.T) {
	store := newRefStore()
	tr := etl.NewTransformer(etl.NewNameCache(store))
	doc := fmt.Sprintf(mappedDoc, `[{"prod_id": "P2", "supplier_id": 3}, {"prod_id": "P3", "supplier_id": 3}]`)

	tr.Transform(context.Background(), etl.RawRecord(doc))
	tr.Transform(context.Background(), etl.RawRecord(doc))

	// Supplier 1 and 3, once each.
	assert.Equal(t, 2, store.calls[domain.RefSupplier])
	assert.Same(t, tr.Names(), tr.Names())
}

func partNumbers(rows []etl.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[etl.ColPartNumber]
	}
	return out
}
