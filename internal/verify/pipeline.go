package verify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"radverify/internal/analyze"
	"radverify/internal/calib"
	"radverify/internal/imaging"
	"radverify/internal/report"
	"radverify/internal/telemetry"
)

// Pipeline stage names, in execution order.
const (
	StageInput      = "input"
	StagePreprocess = "preprocess"
	StageCalibrate  = "calibrate"
	StageAnalyze    = "analyze"
	StageParse      = "parse"
	StageCompare    = "compare"
	StageExplain    = "explain"
)

// StageError wraps a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Result is the complete outcome of one verification request.
type Result struct {
	RequestID   string             `json:"request_id"`
	Scan        imaging.Metadata   `json:"scan"`
	Calibration calib.Result       `json:"calibration"`
	Analysis    *analyze.Analysis  `json:"analysis"`
	Report      *report.Findings   `json:"report"`
	Comparisons []ComparisonResult `json:"comparisons"`
	Summary     Summary            `json:"summary"`
	Snippet     Snippet            `json:"ai_snippet"`
	Trace       []TraceEntry       `json:"trace"`
}

// Pipeline runs the full verification flow. It is safe for concurrent use:
// every Run call builds its own trace recorder and touches no shared mutable
// state beyond the telemetry sink.
type Pipeline struct {
	calibrator *calib.Estimator
	detector   analyze.Detector
	parser     *report.Parser
	engine     *Engine
	sink       telemetry.Sink
	log        *zap.Logger

	minReportLen int
}

// PipelineOptions configures pipeline construction. Zero-value fields fall
// back to the package defaults.
type PipelineOptions struct {
	Calibrator   *calib.Estimator
	Detector     analyze.Detector
	Engine       *Engine
	Sink         telemetry.Sink
	Logger       *zap.Logger
	MinReportLen int
}

// NewPipeline assembles the verification pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Calibrator == nil {
		opts.Calibrator = calib.NewEstimator(calib.DefaultOptions())
	}
	if opts.Detector == nil {
		opts.Detector = analyze.NewDetector(analyze.DefaultOptions(), nil)
	}
	if opts.Engine == nil {
		opts.Engine = NewEngine(DefaultOptions())
	}
	if opts.Sink == nil {
		opts.Sink = telemetry.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MinReportLen <= 0 {
		opts.MinReportLen = 10
	}
	return &Pipeline{
		calibrator:   opts.Calibrator,
		detector:     opts.Detector,
		parser:       report.NewParser(),
		engine:       opts.Engine,
		sink:         opts.Sink,
		log:          opts.Logger,
		minReportLen: opts.MinReportLen,
	}
}

// Run verifies one scan/report pair. The returned error is always a
// *StageError naming the stage that failed.
func (p *Pipeline) Run(ctx context.Context, filename string, imageData []byte, reportText string) (*Result, error) {
	requestID := uuid.NewString()
	log := p.log.With(zap.String("request_id", requestID))
	trace := NewTraceRecorder(log)

	p.sink.Record("verification_start", map[string]any{
		"request_id": requestID,
		"filename":   filename,
		"image_size": len(imageData),
	})

	result, err := p.run(ctx, filename, imageData, reportText, trace)
	if err != nil {
		var stage string
		if se, ok := err.(*StageError); ok {
			stage = se.Stage
		}
		p.sink.Record("verification_error", map[string]any{
			"request_id": requestID,
			"stage":      stage,
			"error":      err.Error(),
		})
		log.Warn("verification failed", zap.String("stage", stage), zap.Error(err))
		return nil, err
	}

	result.RequestID = requestID
	result.Trace = trace.Entries()
	p.sink.Record("verification_success", map[string]any{
		"request_id":     requestID,
		"agreement_rate": result.Summary.AgreementRate,
		"risk_level":     result.Summary.RiskLevel,
	})
	log.Info("verification complete",
		zap.Float64("agreement_rate", result.Summary.AgreementRate),
		zap.String("risk_level", result.Summary.RiskLevel))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, filename string, imageData []byte, reportText string, trace *TraceRecorder) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageInput, Err: err}
	}

	img, meta, err := imaging.Decode(filename, imageData)
	if err != nil {
		return nil, &StageError{Stage: StageInput, Err: err}
	}
	trace.Add(StageInput, fmt.Sprintf("decoded %s scan %q, %d bytes", meta.Format, meta.Filename, meta.SizeBytes))

	if len(reportText) < p.minReportLen {
		return nil, &StageError{Stage: StageInput, Err: report.EmptyReportError{}}
	}

	scan, notes := imaging.Preprocess(img, meta)
	trace.Extend(StagePreprocess, notes)

	cal, notes := p.calibrator.Estimate(scan.Full)
	trace.Extend(StageCalibrate, notes)

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageAnalyze, Err: err}
	}
	analysis, notes := p.detector.Analyze(scan, cal)
	trace.Extend(StageAnalyze, notes)

	parsed, notes, err := p.parser.Parse(reportText)
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}
	trace.Extend(StageParse, notes)

	comparisons := p.engine.Compare(analysis, parsed)
	for _, c := range comparisons {
		if c.Status.categorized() && !c.Status.agreed() {
			trace.Add(StageCompare, c.note())
		}
	}
	summary := Summarize(comparisons)
	trace.Add(StageCompare, fmt.Sprintf("%d features compared, agreement %.3f, risk %s",
		len(comparisons), summary.AgreementRate, summary.RiskLevel))

	snippet := BuildSnippet(analysis)
	trace.Add(StageExplain, "explanations and analysis snippet generated")

	return &Result{
		Scan:        meta,
		Calibration: cal,
		Analysis:    analysis,
		Report:      parsed,
		Comparisons: comparisons,
		Summary:     summary,
		Snippet:     snippet,
	}, nil
}
