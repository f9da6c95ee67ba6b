// Package pipeline orchestrates a document extraction end to end: prompt
// assembly from the catalog snapshot, one provider call, salvage parsing,
// and the per-type reconciliation stage.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tallerhub/docpipe/constants"
	"github.com/tallerhub/docpipe/internal/catalog"
	"github.com/tallerhub/docpipe/internal/common"
	"github.com/tallerhub/docpipe/internal/document"
	"github.com/tallerhub/docpipe/internal/provider"
	"github.com/tallerhub/docpipe/internal/salvage"
)

// Request is one extraction job.
type Request struct {
	Type constants.DocumentType
	Text string

	// Provider and Model override the configured defaults for this
	// request only. Empty means use defaults.
	Provider string
	Model    string
}

// Extractor runs extraction requests. It is safe for concurrent use; the
// batch queue serializes calls on top of it.
type Extractor struct {
	gateway  *provider.Gateway
	parser   *salvage.Parser
	catalog  *catalog.Cache
	business BusinessContext
	logger   *slog.Logger
	now      func() time.Time
}

func NewExtractor(gateway *provider.Gateway, cat *catalog.Cache, business BusinessContext, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		gateway:  gateway,
		parser:   salvage.NewParser(logger),
		catalog:  cat,
		business: business,
		logger:   logger,
		now:      time.Now,
	}
}

// Extract performs one full extraction. The returned document is
// immutable; callers wanting to apply corrections re-run reconciliation
// through Rereconcile.
func (e *Extractor) Extract(ctx context.Context, req Request) (*document.ReconciledDocument, error) {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	e.logger.Info("pipeline.extract.start",
		"req_id", rid,
		"type", string(req.Type),
		"text_len", len(req.Text),
		"provider_override", req.Provider,
	)

	snap, err := e.catalog.Get(ctx)
	if err != nil {
		// A cold cache with an unreachable catalog still lets extraction
		// proceed; every entity just resolves to a creation candidate.
		e.logger.Warn("pipeline.extract.no_catalog", "req_id", rid, "error", err)
		snap = catalog.BuildSnapshot(nil, nil, nil, nil, nil)
	}

	var preq provider.Request
	switch req.Type {
	case constants.DocumentAppointment:
		preq = provider.Request{
			System:    buildAppointmentSystemPrompt(e.business, snap, document.BuildAppointmentJSONSchema(), e.now()),
			User:      buildAppointmentUserPrompt(req.Text),
			MaxTokens: constants.MaxTokensAppointment,
		}
	default:
		preq = provider.Request{
			System:    buildInvoiceSystemPrompt(e.business, snap, document.BuildInvoiceJSONSchema()),
			User:      buildInvoiceUserPrompt(req.Text),
			MaxTokens: constants.MaxTokensInvoice,
		}
	}

	text, err := e.gateway.Invoke(ctx, preq, provider.Override{
		Provider: req.Provider,
		Model:    req.Model,
	})
	if err != nil {
		return nil, err
	}

	raw, err := e.parser.Parse(text)
	if err != nil {
		e.logger.Error("pipeline.extract.unparseable",
			"req_id", rid, "error", err, "output_len", len(text))
		return nil, err
	}

	var doc *document.ReconciledDocument
	switch req.Type {
	case constants.DocumentAppointment:
		stage := &appointmentStage{logger: e.logger, now: e.now}
		doc, err = stage.run(rid, raw, snap)
	default:
		stage := &invoiceStage{logger: e.logger}
		doc, err = stage.run(rid, raw, snap)
	}
	if err != nil {
		return nil, err
	}

	doc.ExtractedAt = e.now()
	doc.RequestID = rid
	e.logger.Info("pipeline.extract.done",
		"req_id", rid,
		"type", string(doc.Type),
		"confidence", doc.Report.Confidence,
		"tier", string(doc.Report.Tier()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// Rereconcile re-runs consolidation and arithmetic reconciliation over an
// operator-corrected invoice. The input document is not mutated.
func (e *Extractor) Rereconcile(ctx context.Context, inv *document.ResolvedInvoice) (*document.ReconciledDocument, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	stage := &invoiceStage{logger: e.logger}
	doc := stage.rereconcile(rid, inv)
	doc.ExtractedAt = e.now()
	doc.RequestID = rid
	return doc, nil
}
