package statement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

type uploadResponse struct {
	FileName          string                `json:"file_name"`
	Format            parser.Format         `json:"format"`
	Charset           string                `json:"charset"`
	Headers           []string              `json:"headers"`
	Rows              []parser.RawRow       `json:"rows"`
	ProviderHint      string                `json:"provider_hint,omitempty"`
	AccountNumber     string                `json:"account_number,omitempty"`
	HeaderFingerprint string                `json:"header_fingerprint"`
	Profile           *profile.Profile      `json:"profile,omitempty"`
	Mapping           mapping.ColumnMapping `json:"mapping"`
	FormatOptions     mapping.FormatOptions `json:"format_options"`
	Transforms        mapping.Transforms    `json:"transforms"`
	AccountID         *uuid.UUID            `json:"account_id,omitempty"`
}

func toUploadResponse(up *importer.Upload) uploadResponse {
	return uploadResponse{
		FileName:          up.FileName,
		Format:            up.Result.Format,
		Charset:           string(up.Charset),
		Headers:           up.Result.Headers,
		Rows:              up.Result.Rows,
		ProviderHint:      up.Result.ProviderHint,
		AccountNumber:     up.Result.AccountHints.Number,
		HeaderFingerprint: up.HeaderFingerprint,
		Profile:           up.Profile,
		Mapping:           up.Mapping,
		FormatOptions:     up.Format,
		Transforms:        up.Transforms,
		AccountID:         up.AccountID,
	}
}

type fxDTO struct {
	Mode   string `json:"mode"`
	Rate   string `json:"rate,omitempty"`
	Column string `json:"column,omitempty"`
}

type previewRequest struct {
	Rows       []parser.RawRow       `json:"rows"`
	Mapping    mapping.ColumnMapping `json:"mapping"`
	Format     mapping.FormatOptions `json:"format_options"`
	Transforms mapping.Transforms    `json:"transforms"`
	FX         fxDTO                 `json:"fx"`
	Overrides  preview.Overrides     `json:"overrides,omitempty"`
	AccountID  *uuid.UUID            `json:"account_id,omitempty"`
}

func (p previewRequest) toRequest() (importer.Request, error) {
	mode, err := fx.Decode(p.FX.Mode, p.FX.Rate, p.FX.Column)
	if err != nil {
		return importer.Request{}, err
	}

	if err := p.Format.Validate(); err != nil {
		return importer.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return importer.Request{
		Rows:       p.Rows,
		Mapping:    p.Mapping,
		Format:     p.Format,
		Transforms: p.Transforms,
		FX:         mode,
		Overrides:  p.Overrides,
		AccountID:  p.AccountID,
	}, nil
}

type commitRequest struct {
	previewRequest

	FileName          string     `json:"file_name"`
	FileFormat        string     `json:"format"`
	Charset           string     `json:"charset,omitempty"`
	HeaderFingerprint string     `json:"header_fingerprint"`
	ProfileID         *uuid.UUID `json:"profile_id,omitempty"`
	IncludeDuplicates bool       `json:"include_duplicates"`
}

type rowResponse struct {
	Index          int              `json:"index"`
	Status         preview.Status   `json:"status"`
	AccountID      *uuid.UUID       `json:"account_id,omitempty"`
	Date           *string          `json:"date,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	NativeAmount   *decimal.Decimal `json:"native_amount,omitempty"`
	NativeCurrency string           `json:"native_currency,omitempty"`
	FXRate         *decimal.Decimal `json:"fx_rate,omitempty"`
	NeedsFx        bool             `json:"needs_fx"`
	Description    string           `json:"description"`
	RawDescription string           `json:"raw_description"`
	PayeeID        *uuid.UUID       `json:"payee_id,omitempty"`
	PayeeName      string           `json:"payee_name,omitempty"`
	CategoryID     *uuid.UUID       `json:"category_id,omitempty"`
	SubCategoryID  *uuid.UUID       `json:"sub_category_id,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	ExternalID     string           `json:"external_id,omitempty"`
	Counterparty   string           `json:"counterparty,omitempty"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
	Duplicate      bool             `json:"duplicate"`
	Fingerprint    *string          `json:"fingerprint,omitempty"`
	Errors         []string         `json:"errors"`
	Warnings       []string         `json:"warnings"`
}

type previewResponse struct {
	Rows       []rowResponse          `json:"rows"`
	Counts     map[preview.Status]int `json:"counts"`
	Importable int                    `json:"importable"`
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}

	v := d.Decimal

	return &v
}

func toPreviewResponse(p *importer.Preview) previewResponse {
	rows := make([]rowResponse, len(p.Rows))

	for i, r := range p.Rows {
		var date *string
		if r.Date != nil {
			d := r.Date.Format(time.DateOnly)
			date = &d
		}

		rows[i] = rowResponse{
			Index:          r.Index,
			Status:         r.Status(),
			AccountID:      r.AccountID,
			Date:           date,
			Amount:         nullable(r.Amount),
			NativeAmount:   nullable(r.NativeAmount),
			NativeCurrency: r.NativeCurrency,
			FXRate:         nullable(r.FXRate),
			NeedsFx:        r.NeedsFx,
			Description:    r.Description,
			RawDescription: r.RawDescription,
			PayeeID:        r.PayeeID,
			PayeeName:      r.PayeeName,
			CategoryID:     r.CategoryID,
			SubCategoryID:  r.SubCategoryID,
			Notes:          r.Notes,
			ExternalID:     r.ExternalID,
			Counterparty:   r.Counterparty,
			Balance:        nullable(r.Balance),
			Duplicate:      r.Duplicate,
			Fingerprint:    r.Fingerprint,
			Errors:         nonNil(r.Errors),
			Warnings:       nonNil(r.Warnings),
		}
	}

	return previewResponse{Rows: rows, Counts: p.Counts, Importable: p.Importable}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

type batchResponse struct {
	ID                uuid.UUID           `json:"id"`
	AccountID         *uuid.UUID          `json:"account_id,omitempty"`
	ProfileID         *uuid.UUID          `json:"profile_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	SourceFileName    string              `json:"source_file_name"`
	HeaderFingerprint string              `json:"header_fingerprint"`
	Options           ledger.BatchOptions `json:"options"`
	Summary           ledger.BatchSummary `json:"summary"`
	TransactionIDs    []uuid.UUID         `json:"transaction_ids"`
	Log               []string            `json:"log"`
}

func toBatchResponse(b *ledger.ImportBatch) batchResponse {
	return batchResponse{
		ID:                b.ID,
		AccountID:         b.AccountID,
		ProfileID:         b.ProfileID,
		CreatedAt:         b.CreatedAt,
		SourceFileName:    b.SourceFileName,
		HeaderFingerprint: b.HeaderFingerprint,
		Options:           b.Options,
		Summary:           b.Summary,
		TransactionIDs:    b.TransactionIDs,
		Log:               b.Log,
	}
}

type fillDownRequest struct {
	previewRequest

	From  int    `json:"from"`
	Field string `json:"field"`
}

func (f fillDownRequest) field() (preview.FillField, error) {
	switch f.Field {
	case "payee":
		return preview.FillPayee, nil
	case "category":
		return preview.FillCategory, nil
	}

	return 0, fmt.Errorf("%w: field must be payee or category, got %q", errBadRequest, f.Field)
}

type defaultCategoryRequest struct {
	previewRequest

	CategoryID    uuid.UUID  `json:"category_id"`
	SubCategoryID *uuid.UUID `json:"sub_category_id,omitempty"`
}

type overridesResponse struct {
	Overrides preview.Overrides `json:"overrides"`
}

type accountResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Number   string    `json:"number,omitempty"`
	Currency string    `json:"currency"`
}

func toAccountResponses(accounts []reference.Account) []accountResponse {
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = accountResponse{ID: a.ID, Name: a.Name, Number: a.Number, Currency: a.Currency}
	}

	return out
}
