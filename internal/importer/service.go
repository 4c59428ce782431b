package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ledgerimport/internal/encoding"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/dedup"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/preview"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

type Options struct {
	// MaxUploadBytes bounds uploads; zero means unlimited.
	MaxUploadBytes       int64
	DescriptionSeparator string
}

type Service struct {
	ledger    Ledger
	directory reference.Directory
	profiles  ProfileDetector
	rules     DescriptionRules
	metrics   *metrics.Metrics
	opts      Options
}

func NewService(
	l Ledger,
	directory reference.Directory,
	profiles ProfileDetector,
	rules DescriptionRules,
	m *metrics.Metrics,
	opts Options,
) *Service {
	return &Service{
		ledger:    l,
		directory: directory,
		profiles:  profiles,
		rules:     rules,
		metrics:   m,
		opts:      opts,
	}
}

// Upload decodes and parses a statement file and picks the starting mapping:
// a detected profile if one matches the headers, the parser's suggestion otherwise.
func (s *Service) Upload(ctx context.Context, fileName string, r io.Reader) (*Upload, error) {
	text, charset, err := encoding.Read(r, s.opts.MaxUploadBytes)
	if err != nil {
		s.metrics.Upload("", err)
		return nil, err
	}

	format := parser.Detect(fileName, text)

	res, err := parser.Parse(format, text)
	s.metrics.Upload(format.String(), err)

	if err != nil {
		return nil, err
	}

	up := &Upload{
		FileName:          fileName,
		Charset:           charset,
		Result:            res,
		HeaderFingerprint: mapping.HeaderFingerprint(res.Headers),
		Mapping:           res.SuggestedMapping.Clone(),
		Format:            res.SuggestedFormat,
		Transforms:        mapping.Transforms{DescriptionSeparator: s.opts.DescriptionSeparator},
	}

	p, err := s.profiles.Detect(ctx, res.Headers)
	if err != nil {
		return nil, err
	}

	if p != nil {
		up.Profile = p
		up.Mapping = p.Mapping.Clone()
		up.Format = p.Format
		up.Transforms = p.Transforms
	}

	if number := res.AccountHints.Number; number != "" {
		snapshot, err := reference.Load(ctx, s.directory)
		if err != nil {
			return nil, err
		}

		if a, ok := snapshot.AccountByNumber(number); ok {
			id := a.ID
			up.AccountID = &id
		}
	}

	return up, nil
}

// Preview builds the status-annotated rows for a request.
func (s *Service) Preview(ctx context.Context, req Request) (*Preview, error) {
	rows, _, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	counts := preview.Counts(rows)

	labels := make(map[string]int, len(counts))
	for status, n := range counts {
		labels[status.String()] = n
	}

	s.metrics.PreviewRows(labels)

	return &Preview{
		Rows:       rows,
		Counts:     counts,
		Importable: len(preview.Importable(rows, false)),
	}, nil
}

// FillDown returns req.Overrides extended so that every row after from takes
// the payee or category of row from.
func (s *Service) FillDown(ctx context.Context, req Request, from int, field preview.FillField) (preview.Overrides, error) {
	rows, _, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	return preview.FillDown(rows, req.Overrides, from, field), nil
}

// DefaultCategory returns req.Overrides extended so that every uncategorized
// row gets categoryID.
func (s *Service) DefaultCategory(ctx context.Context, req Request, categoryID uuid.UUID, subCategoryID *uuid.UUID) (preview.Overrides, error) {
	rows, _, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	return preview.ApplyDefaultCategory(rows, req.Overrides, categoryID, subCategoryID), nil
}

// build runs the pure preview twice: once to learn which accounts and dates
// the file touches, then with the ledger fingerprints of that range.
func (s *Service) build(ctx context.Context, req Request) ([]preview.Row, reference.Snapshot, error) {
	if err := req.Mapping.Complete(req.Format.SignConvention, req.AccountID != nil); err != nil {
		return nil, reference.Snapshot{}, err
	}

	snapshot, err := reference.Load(ctx, s.directory)
	if err != nil {
		return nil, reference.Snapshot{}, err
	}

	describe, err := s.rules.Describer(ctx)
	if err != nil {
		return nil, reference.Snapshot{}, err
	}

	mode := req.FX
	if mode == nil {
		mode = fx.Skip{}
	}

	in := preview.Input{
		Rows:       req.Rows,
		Mapping:    req.Mapping,
		Format:     req.Format,
		FX:         mode,
		Transforms: req.Transforms,
		Overrides:  req.Overrides,
		Defaults:   preview.Defaults{AccountID: req.AccountID},
		Reference:  snapshot,
		Describe:   describe,
	}

	rows := preview.Build(in)

	accounts, from, to, ok := span(rows)
	if !ok {
		return rows, snapshot, nil
	}

	material, err := s.ledger.Material(ctx, accounts, from, to)
	if err != nil {
		return nil, reference.Snapshot{}, fmt.Errorf("loading existing transactions: %w", err)
	}

	existing := make([]dedup.Material, len(material))
	for i, m := range material {
		existing[i] = dedup.Material{AccountID: m.AccountID, Date: m.Date, Amount: m.Amount, Description: m.RawDescription}
	}

	in.Existing = dedup.Set(existing)

	return preview.Build(in), snapshot, nil
}

// span returns the accounts and date range of the fingerprinted rows.
func span(rows []preview.Row) ([]uuid.UUID, time.Time, time.Time, bool) {
	var (
		accounts []uuid.UUID
		seen     = map[uuid.UUID]bool{}
		from, to time.Time
		found    bool
	)

	for _, r := range rows {
		if r.Fingerprint == nil {
			continue
		}

		if !seen[*r.AccountID] {
			seen[*r.AccountID] = true
			accounts = append(accounts, *r.AccountID)
		}

		if !found || r.Date.Before(from) {
			from = *r.Date
		}

		if !found || r.Date.After(to) {
			to = *r.Date
		}

		found = true
	}

	return accounts, from, to, found
}

// Commit rebuilds the preview and persists its importable rows as one batch.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*ledger.ImportBatch, error) {
	started := time.Now()

	rows, snapshot, err := s.build(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	importable := preview.Importable(rows, req.IncludeDuplicates)
	if len(importable) == 0 {
		return nil, ErrNothingToImport
	}

	params := make([]ledger.CreateParams, len(importable))
	for i, r := range importable {
		params[i] = createParams(r, snapshot)
	}

	summary := summarize(rows, importable)

	batch := &ledger.ImportBatch{
		AccountID:         req.AccountID,
		ProfileID:         req.ProfileID,
		SourceFileName:    req.FileName,
		HeaderFingerprint: req.HeaderFingerprint,
		Options:           batchOptions(req),
		Summary:           summary,
		Log:               batchLog(req, summary),
	}

	committed, err := s.ledger.CommitImport(ctx, batch, params)
	if err != nil {
		slog.Error("import commit failed", "file", req.FileName, "rows", len(params), "error", err)
		return nil, err
	}

	s.metrics.Commit(len(params), started)
	slog.Info("import committed", "batch", committed.ID, "file", req.FileName, "imported", summary.Imported)

	return committed, nil
}

// Undo reverts the most recent batch. It returns nil, nil when there is none.
func (s *Service) Undo(ctx context.Context) (*ledger.ImportBatch, error) {
	batch, err := s.ledger.UndoLastImport(ctx)
	s.metrics.Undo(batch == nil, err)

	if err != nil {
		return nil, err
	}

	if batch != nil {
		slog.Info("import undone", "batch", batch.ID, "transactions", len(batch.TransactionIDs))
	}

	return batch, nil
}

// LatestBatch returns the current undo target, or ledger.ErrNotFound.
func (s *Service) LatestBatch(ctx context.Context) (*ledger.ImportBatch, error) {
	return s.ledger.LatestImport(ctx)
}

// Accounts lists the accounts rows can be imported into.
func (s *Service) Accounts(ctx context.Context) ([]reference.Account, error) {
	accounts, err := s.directory.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return accounts, nil
}

// createParams turns an importable row into a transaction, falling back to
// the payee's default category when the row has none.
func createParams(r preview.Row, snapshot reference.Snapshot) ledger.CreateParams {
	categoryID, subCategoryID := r.CategoryID, r.SubCategoryID

	if categoryID == nil && r.PayeeID != nil {
		if p, ok := snapshot.Payee(*r.PayeeID); ok && p.DefaultCategoryID != nil {
			categoryID, subCategoryID = p.DefaultCategoryID, p.DefaultSubCategoryID
		}
	}

	return ledger.CreateParams{
		AccountID:      *r.AccountID,
		Date:           *r.Date,
		Amount:         r.Amount.Decimal,
		NativeAmount:   r.NativeAmount,
		NativeCurrency: r.NativeCurrency,
		FXRate:         r.FXRate,
		Description:    r.Description,
		RawDescription: r.RawDescription,
		PayeeID:        r.PayeeID,
		PayeeName:      r.PayeeName,
		CategoryID:     categoryID,
		SubCategoryID:  subCategoryID,
		Notes:          r.Notes,
		ExternalID:     r.ExternalID,
		Tags:           []string{},
	}
}

func batchOptions(req CommitRequest) ledger.BatchOptions {
	mode := req.FX
	if mode == nil {
		mode = fx.Skip{}
	}

	return ledger.BatchOptions{
		Format:             req.FileFormat.String(),
		Charset:            string(req.Charset),
		DateFormat:         req.Request.Format.DateFormat.String(),
		DecimalSeparator:   req.Request.Format.DecimalSeparator,
		ThousandsSeparator: req.Request.Format.ThousandsSeparator,
		SignConvention:     req.Request.Format.SignConvention.String(),
		FXMode:             mode.String(),
		InvertSign:         req.Transforms.InvertSign,
		IncludeDuplicates:  req.IncludeDuplicates,
	}
}
