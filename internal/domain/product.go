package domain

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by reference stores when no record matches the id.
var ErrNotFound = errors.New("not found")

// Language ids used as keys in localized maps.
const (
	LanguageIDInt = "0" // international
	LanguageIDEN  = "1"
)

// ProductDocument is the decoded form of one raw record from the product pool.
// Scalar product fields are kept loosely typed because upstream writers are
// inconsistent about numbers vs strings.
type ProductDocument struct {
	Product       ProductInfo     `json:"product"`
	EANCodes      []EANCode       `json:"product_ean_codes"`
	SummaryTitles SummaryTitles   `json:"product_summary_title"`
	ProductMap    []AlternatePart `json:"product_map"`
}

// ProductInfo is the product block of a ProductDocument.
type ProductInfo struct {
	ProductID  any `json:"product_id"`
	ProdID     any `json:"prod_id"`
	Name       any `json:"name"`
	Quality    any `json:"quality"`
	Active     any `json:"active"`
	SupplierID any `json:"supplier_id"`
	CategoryID any `json:"catid"`
	FamilyID   any `json:"family_id"`
}

// EANCode is one barcode entry. Code is nil when the entry carries no code.
type EANCode struct {
	Code any `json:"ean_code"`
}

// SummaryTitle is the localized summary of a product. Title is loosely typed
// like the product scalars; a numeric title is still a title.
type SummaryTitle struct {
	Title any `json:"summary_title"`
}

// SummaryTitles maps language id to title. Writers that serialize
// language-indexed arrays emit a JSON list when the keys are 0..n, so both
// object and list forms are accepted.
type SummaryTitles map[string]SummaryTitle

func (t *SummaryTitles) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []*SummaryTitle
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		m := make(SummaryTitles, len(list))
		for i, st := range list {
			if st != nil {
				m[strconv.Itoa(i)] = *st
			}
		}
		*t = m
		return nil
	}
	var m map[string]SummaryTitle
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = m
	return nil
}

// AlternatePart is an alternate manufacturer part number (MPN) the product is
// also listed under, possibly for another supplier.
type AlternatePart struct {
	ProdID     any `json:"prod_id"`
	SupplierID any `json:"supplier_id"`
}

// RefDomain names one of the reference-data domains resolved to display names.
type RefDomain string

const (
	RefSupplier RefDomain = "supplier"
	RefCategory RefDomain = "category"
	RefFamily   RefDomain = "family"
)

// RefDomains lists every reference-data domain in lookup order.
var RefDomains = []RefDomain{RefSupplier, RefCategory, RefFamily}

// Supplier is a brand record from the reference-data store.
type Supplier struct {
	ID   int64  `json:"supplierId" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Category holds plural category names keyed by language id.
type Category struct {
	ID          int64             `json:"categoryId" bson:"_id"`
	PluralNames map[string]string `json:"pluralNames" bson:"plural_names"`
}

// Family holds product family names keyed by language id.
type Family struct {
	ID    int64             `json:"familyId" bson:"_id"`
	Names map[string]string `json:"names" bson:"names"`
}

// ReferenceStore looks up reference data by numeric id.
// Implementations return ErrNotFound (possibly wrapped) when nothing matches.
type ReferenceStore interface {
	FindSupplier(ctx context.Context, id int64) (*Supplier, error)
	FindCategory(ctx context.Context, id int64) (*Category, error)
	FindFamily(ctx context.Context, id int64) (*Family, error)
}
