// =============================================================================
// Supplier Follow-up Mailer - Pipeline
// =============================================================================
//
// This module orchestrates one run for a single spreadsheet.
//
// PIPELINE:
//   1. Load the spreadsheet (XLSX or CSV)
//   2. Validate the header against the required columns
//   3. Group rows by supplier and collect CC recipients
//   4. Dispatch one email per group
//   5. Write the run summary (when report_dir is set)
//   6. Archive the input (when archive_dir is set and nothing failed)
//
// Steps 1-3 are Prepare; steps 4-6 are Send. The CLI asks for confirmation
// between the two.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/po-followup-mailer/internal/config"
	"github.com/ginjaninja78/po-followup-mailer/internal/dispatch"
	"github.com/ginjaninja78/po-followup-mailer/internal/grouper"
	"github.com/ginjaninja78/po-followup-mailer/internal/htmlreport"
	"github.com/ginjaninja78/po-followup-mailer/internal/ingest"
	"github.com/ginjaninja78/po-followup-mailer/internal/mailer"
	"github.com/ginjaninja78/po-followup-mailer/internal/types"
	"github.com/ginjaninja78/po-followup-mailer/internal/validation"
	"github.com/ginjaninja78/po-followup-mailer/pkg/utils"
)

// RunIDHeader carries the run ID on every outgoing message.
const RunIDHeader = "X-Followup-Run-ID"

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Plan is a loaded, validated and grouped spreadsheet, ready to send.
type Plan struct {
	// RunID identifies the run in logs, headers and the summary file.
	RunID string

	// SourceFile is the spreadsheet path.
	SourceFile string

	// Dataset is the parsed spreadsheet.
	Dataset *types.Dataset

	// Validation carries the advisories from header validation.
	Validation *validation.Result

	// Groups holds one entry per supplier in first-seen order.
	Groups []grouper.Group

	loadedAt time.Time
}

// Messages returns the number of emails the plan will send.
func (p *Plan) Messages() int {
	return len(p.Groups)
}

// Result is the outcome of a send run.
type Result struct {
	Plan *Plan

	// Report is the dispatch tally.
	Report *dispatch.Report

	// SummaryPath is the written summary log, if any.
	SummaryPath string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string
}

// =============================================================================
// PIPELINE
// =============================================================================

// Options contains per-run switches.
type Options struct {
	// DryRun composes every message without sending.
	DryRun bool
}

// Pipeline runs spreadsheets through load, validate, group and dispatch.
type Pipeline struct {
	cfg      *config.Config
	sender   mailer.Sender
	renderer *htmlreport.Renderer
	files    *utils.FileManager
	logger   *zap.Logger
	opts     Options
}

// New builds a pipeline. sender may be nil when only Prepare is used.
func New(cfg *config.Config, sender mailer.Sender, logger *zap.Logger, opts Options) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := htmlreport.New(htmlreport.Options{
		Columns:         types.RequiredFields,
		HighlightFields: cfg.Columns.HighlightFields,
		Intro:           cfg.Message.Intro,
		Signature:       cfg.Message.Signature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build renderer: %w", err)
	}

	files := utils.NewFileManager(cfg.ArchiveDir, cfg.ReportDir)
	files.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs

	return &Pipeline{
		cfg:      cfg,
		sender:   sender,
		renderer: renderer,
		files:    files,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Prepare loads, validates and groups the spreadsheet at path. A missing
// required column returns a *validation.ValidationError.
func (p *Pipeline) Prepare(path string) (*Plan, error) {
	plan := &Plan{
		RunID:      uuid.NewString(),
		SourceFile: path,
		loadedAt:   time.Now(),
	}
	log := p.logger.With(zap.String("run_id", plan.RunID), zap.String("file", path))

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	ds, err := ingest.Load(path, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	plan.Dataset = ds
	log.Debug("spreadsheet loaded",
		zap.String("sheet", ds.Sheet),
		zap.Int("columns", len(ds.Columns)),
		zap.Int("rows", len(ds.Rows)),
	)

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	result, err := validation.Validate(ds, validation.Options{
		Required:      types.RequiredFields,
		ExtraRequired: p.cfg.ExtraRequiredColumns(),
		CCField:       p.cfg.Columns.CC,
		KeyField:      p.cfg.Columns.GroupBy,
	})
	if err != nil {
		log.Error("validation failed", zap.Error(err))
		return nil, err
	}
	plan.Validation = result
	for _, w := range result.Warnings {
		log.Warn(w)
	}

	// =========================================================================
	// STEP 3: GROUP
	// =========================================================================

	plan.Groups = grouper.GroupRows(ds.Rows, grouper.Options{
		KeyField:       p.cfg.Columns.GroupBy,
		RecipientField: p.cfg.Columns.Recipient,
		CCField:        p.cfg.Columns.CC,
	})
	log.Info("spreadsheet prepared",
		zap.Int("rows", len(ds.Rows)),
		zap.Int("groups", len(plan.Groups)),
		zap.Bool("has_cc", result.HasCC),
	)

	return plan, nil
}

// Send dispatches the plan and records the run.
func (p *Pipeline) Send(ctx context.Context, plan *Plan) (*Result, error) {
	if p.sender == nil && !p.opts.DryRun {
		return nil, fmt.Errorf("%w: no transport configured", mailer.ErrInvalidConfig)
	}

	log := p.logger.With(zap.String("run_id", plan.RunID))

	// =========================================================================
	// STEP 4: DISPATCH
	// =========================================================================

	d := dispatch.New(p.sender, p.renderer, log, dispatch.Options{
		Subject: p.cfg.Message.Subject,
		From:    p.cfg.Message.From,
		ReplyTo: p.cfg.Message.ReplyTo,
		Headers: map[string]string{RunIDHeader: plan.RunID},
		DryRun:  p.opts.DryRun,
	})
	report := d.Run(ctx, plan.Groups)

	result := &Result{Plan: plan, Report: report}

	// =========================================================================
	// STEP 5: ARCHIVE INPUT
	// =========================================================================
	// Only a clean, complete, real run retires the spreadsheet.

	if p.cfg.ArchiveDir != "" && !report.DryRun && !report.Cancelled &&
		report.Failed == 0 && report.Attempted > 0 {
		archivePath, err := p.files.ArchiveInputFile(plan.SourceFile)
		if err != nil {
			// Log the error but don't fail the run.
			log.Warn("failed to archive input", zap.Error(err))
		} else {
			result.ArchivePath = archivePath
			log.Info("input archived", zap.String("path", archivePath))
		}
	}

	// =========================================================================
	// STEP 6: SUMMARY LOG
	// =========================================================================

	if p.cfg.ReportDir != "" {
		summaryPath, err := p.files.WriteSummaryLog(p.summary(plan, result))
		if err != nil {
			log.Warn("failed to write summary log", zap.Error(err))
		} else {
			result.SummaryPath = summaryPath
			log.Debug("summary written", zap.String("path", summaryPath))
		}
	}

	return result, nil
}

// Run prepares and sends the spreadsheet at path.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	plan, err := p.Prepare(path)
	if err != nil {
		return nil, err
	}
	return p.Send(ctx, plan)
}

func (p *Pipeline) summary(plan *Plan, result *Result) utils.RunSummary {
	r := result.Report

	s := utils.RunSummary{
		RunID:       plan.RunID,
		SourceFile:  plan.SourceFile,
		Transport:   p.cfg.Transport.Provider,
		ArchivePath: result.ArchivePath,
		StartTime:   plan.loadedAt,
		EndTime:     time.Now(),
		Groups:      r.Groups,
		Attempted:   r.Attempted,
		Succeeded:   r.Succeeded,
		Failed:      r.Failed,
		Skipped:     r.Skipped,
		DryRun:      r.DryRun,
		Cancelled:   r.Cancelled,
	}
	if plan.Dataset != nil {
		s.Rows = len(plan.Dataset.Rows)
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, utils.FailedSend{
			Recipient:    f.Recipient,
			ErrorMessage: f.Err.Error(),
		})
	}
	return s
}
