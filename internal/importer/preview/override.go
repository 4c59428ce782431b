package preview

import (
	"maps"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

// Override holds user corrections for one row. Nil fields leave the
// computed value alone.
type Override struct {
	PayeeID       *uuid.UUID `json:"payee_id,omitempty"`
	PayeeName     *string    `json:"payee_name,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SubCategoryID *uuid.UUID `json:"sub_category_id,omitempty"`
}

// Overrides are keyed by source row index.
type Overrides map[int]Override

func (o Override) apply(row Row, ref reference.Snapshot) Row {
	if o.PayeeName != nil {
		row.PayeeName = *o.PayeeName
		row.PayeeID = nil

		if p, ok := ref.PayeeByName(*o.PayeeName); ok {
			id := p.ID
			row.PayeeID = &id
		}
	}

	if o.PayeeID != nil {
		id := *o.PayeeID
		row.PayeeID = &id

		if p, ok := ref.Payee(id); ok {
			row.PayeeName = p.Name
		}
	}

	if o.CategoryID != nil {
		id := *o.CategoryID
		row.CategoryID = &id
		row.SubCategoryID = nil
	}

	if o.SubCategoryID != nil {
		id := *o.SubCategoryID
		row.SubCategoryID = &id
	}

	return row
}

// FillField selects what FillDown copies.
type FillField int

const (
	FillPayee FillField = iota + 1
	FillCategory
)

// FillDown copies the payee or category assignment of row from onto every
// row with a higher index. The input overrides are not modified.
func FillDown(rows []Row, overrides Overrides, from int, field FillField) Overrides {
	out := maps.Clone(overrides)
	if out == nil {
		out = Overrides{}
	}

	var source *Row

	for i := range rows {
		if rows[i].Index == from {
			source = &rows[i]
			break
		}
	}

	if source == nil {
		return out
	}

	for _, r := range rows {
		if r.Index <= from {
			continue
		}

		o := out[r.Index]

		switch field {
		case FillPayee:
			o.PayeeID = clone(source.PayeeID)
			o.PayeeName = nil

			if source.PayeeID == nil {
				name := source.PayeeName
				o.PayeeName = &name
			}
		case FillCategory:
			o.CategoryID = clone(source.CategoryID)
			o.SubCategoryID = clone(source.SubCategoryID)
		}

		out[r.Index] = o
	}

	return out
}

// ApplyDefaultCategory assigns categoryID (and optional sub-category) to
// every row that has no category yet.
func ApplyDefaultCategory(rows []Row, overrides Overrides, categoryID uuid.UUID, subCategoryID *uuid.UUID) Overrides {
	out := maps.Clone(overrides)
	if out == nil {
		out = Overrides{}
	}

	for _, r := range rows {
		if r.CategoryID != nil {
			continue
		}

		o := out[r.Index]
		o.CategoryID = &categoryID
		o.SubCategoryID = clone(subCategoryID)
		out[r.Index] = o
	}

	return out
}

func clone(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}

	v := *id

	return &v
}
