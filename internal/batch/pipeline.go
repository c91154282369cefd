package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/report"
)

const maxRecordedErrors = 100

// ReportSaver persists generated reports
type ReportSaver interface {
	Save(ctx context.Context, r *report.Report) error
}

// Pipeline assesses every project of a dataset and reports on each
type Pipeline struct {
	assessor   *assessment.Assessor
	aggregator *report.Aggregator
	detector   *jurisdiction.Detector
	saver      ReportSaver
	config     Config
	logger     *zap.Logger

	mu          sync.Mutex
	result      *ProcessingResult
	scoreSum    int64
	scored      int64
	start       time.Time
	lastPrinted int64
}

// NewPipeline creates a batch pipeline. A nil saver runs it as a dry run.
func NewPipeline(
	assessor *assessment.Assessor,
	aggregator *report.Aggregator,
	detector *jurisdiction.Detector,
	saver ReportSaver,
	config Config,
	logger *zap.Logger,
) *Pipeline {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	return &Pipeline{
		assessor:   assessor,
		aggregator: aggregator,
		detector:   detector,
		saver:      saver,
		config:     config,
		logger:     logger,
	}
}

// ProcessFile processes a dataset file (CSV, Parquet, or JSON lines)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*ProcessingResult, error) {
	format := DetectFileFormat(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", format, err)
	}
	defer file.Close()

	p.logger.Info("Starting batch assessment",
		zap.String("file", filePath),
		zap.String("format", string(format)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount),
		zap.Bool("dry_run", p.saver == nil))

	if format == FormatParquet {
		next, closeReader := newParquetReader(file)
		defer closeReader()
		return p.run(ctx, next)
	}
	return p.ProcessReader(ctx, format, file)
}

// ProcessReader processes a CSV or JSON lines stream
func (p *Pipeline) ProcessReader(ctx context.Context, format FileFormat, r io.Reader) (*ProcessingResult, error) {
	switch format {
	case FormatCSV:
		next, header, err := newCSVReader(r)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("CSV header detected", zap.Strings("columns", header))
		return p.run(ctx, next)
	case FormatJSON:
		return p.run(ctx, newJSONReader(r))
	default:
		return nil, fmt.Errorf("unsupported stream format: %s", format)
	}
}

func (p *Pipeline) run(ctx context.Context, next recordReader) (*ProcessingResult, error) {
	p.mu.Lock()
	p.result = &ProcessingResult{}
	p.scoreSum, p.scored, p.lastPrinted = 0, 0, 0
	p.start = time.Now()
	p.mu.Unlock()

	err := p.processBatches(ctx, next)

	p.mu.Lock()
	result := p.result
	result.Duration = time.Since(p.start)
	if p.scored > 0 {
		result.AverageScore = float64(p.scoreSum) / float64(p.scored)
	}
	p.mu.Unlock()

	p.logger.Info("Batch assessment completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("invalid", result.Invalid),
		zap.Int64("persisted", result.Persisted),
		zap.Float64("average_score", result.AverageScore),
		zap.Duration("duration", result.Duration))

	return result, err
}

// processBatches reads records in batches and assesses each batch concurrently
func (p *Pipeline) processBatches(ctx context.Context, next recordReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, done, err := p.readBatch(next)
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}

		if len(batch) > 0 {
			if err := p.processBatch(ctx, batch); err != nil {
				return err
			}
		}
		if done {
			return nil
		}
	}
}

func (p *Pipeline) readBatch(next recordReader) ([]*ProjectRecord, bool, error) {
	batch := make([]*ProjectRecord, 0, p.config.BatchSize)
	for len(batch) < p.config.BatchSize {
		rec, err := next()
		if err == io.EOF {
			return batch, true, nil
		}

		var invalid *ValidationError
		if err != nil && !errors.As(err, &invalid) {
			return batch, true, err
		}

		p.mu.Lock()
		p.result.TotalRecords++
		row := p.result.TotalRecords
		p.mu.Unlock()

		if invalid != nil {
			p.recordInvalid(invalid)
			continue
		}
		if verr := p.validateRecord(rec, row); verr != nil {
			p.recordInvalid(verr)
			continue
		}
		batch = append(batch, rec)
	}
	return batch, false, nil
}

// processBatch assesses a batch with at most WorkerCount projects in flight
func (p *Pipeline) processBatch(ctx context.Context, batch []*ProjectRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.WorkerCount)

	outcomes := make([]*ProjectOutcome, len(batch))
	for i, rec := range batch {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := p.processRecord(gctx, rec)
			p.recordOutcome(rec, outcome, err)
			if err == nil {
				outcomes[i] = &outcome
			}
			return nil
		})
	}

	err := g.Wait()

	// outcomes keep input order regardless of which worker finished first
	if p.config.KeepOutcomes {
		p.mu.Lock()
		for _, o := range outcomes {
			if o != nil {
				p.result.Outcomes = append(p.result.Outcomes, *o)
			}
		}
		p.mu.Unlock()
	}
	return err
}

func (p *Pipeline) processRecord(ctx context.Context, rec *ProjectRecord) (ProjectOutcome, error) {
	ids := p.regulationsFor(rec)
	assessments := p.assessor.Assess(rec.Controls().ProjectConfig(), ids)
	rep := p.aggregator.Generate(rec.ProjectID, assessments)

	if p.saver != nil {
		start := time.Now()
		if err := p.saver.Save(ctx, &rep); err != nil {
			return ProjectOutcome{}, fmt.Errorf("project %s: %w", rec.ProjectID, err)
		}
		p.mu.Lock()
		p.result.Persisted++
		p.result.PersistTime += time.Since(start)
		p.mu.Unlock()
	}

	return ProjectOutcome{
		ProjectID:    rec.ProjectID,
		ReportID:     rep.ID,
		Regulations:  ids,
		OverallScore: rep.OverallScore,
		CriticalGaps: rep.CriticalGaps,
		NoData:       rep.NoData,
	}, nil
}

// regulationsFor uses the explicit list, then detected regulations, then defaults
func (p *Pipeline) regulationsFor(rec *ProjectRecord) []string {
	if ids := splitList(rec.Regulations); len(ids) > 0 {
		for i := range ids {
			ids[i] = strings.ToLower(ids[i])
		}
		return ids
	}
	if locations := splitList(rec.Locations); len(locations) > 0 && p.detector != nil {
		detected := p.detector.Detect(locations, nil, nil)
		if len(detected.ApplicableRegulations) > 0 {
			return detected.ApplicableRegulations
		}
	}
	return p.config.DefaultRegulations
}

func (p *Pipeline) validateRecord(rec *ProjectRecord, row int64) *ValidationError {
	if !p.config.ValidateData {
		return nil
	}
	if strings.TrimSpace(rec.ProjectID) == "" {
		return &ValidationError{Row: row, Field: "project_id", Message: "project id is required"}
	}
	if len(p.regulationsFor(rec)) == 0 {
		return &ValidationError{Row: row, Field: "regulations", Value: rec.Locations, Message: "no regulations given or detected"}
	}
	return nil
}

func (p *Pipeline) recordInvalid(verr *ValidationError) {
	p.logger.Debug("Invalid record", zap.Int64("row", verr.Row), zap.String("field", verr.Field), zap.String("message", verr.Message))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.result.Invalid++
	p.appendErrorLocked(verr.Error())
}

func (p *Pipeline) recordOutcome(rec *ProjectRecord, outcome ProjectOutcome, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.result.ProcessedFailed++
		p.appendErrorLocked(err.Error())
		p.logger.Warn("Project assessment failed", zap.String("project_id", rec.ProjectID), zap.Error(err))
		return
	}

	p.result.ProcessedOK++
	if !outcome.NoData {
		p.scoreSum += int64(outcome.OverallScore)
		p.scored++
		if assessment.StatusForScore(outcome.OverallScore) == assessment.StatusNonCompliant {
			p.result.NonCompliant++
		}
	}
	done := p.result.ProcessedOK + p.result.ProcessedFailed
	if p.config.ProgressReport > 0 && done-p.lastPrinted >= int64(p.config.ProgressReport) {
		p.lastPrinted = done
		elapsed := time.Since(p.start)
		p.logger.Info("Processing progress",
			zap.Int64("records_processed", done),
			zap.Int64("records_ok", p.result.ProcessedOK),
			zap.Int64("records_failed", p.result.ProcessedFailed),
			zap.Float64("rate_per_sec", float64(done)/elapsed.Seconds()),
			zap.Duration("elapsed", elapsed))
	}
}

func (p *Pipeline) appendErrorLocked(msg string) {
	if len(p.result.Errors) < maxRecordedErrors {
		p.result.Errors = append(p.result.Errors, msg)
	}
}
