// Package pipeline runs the streaming control loop: one batch per cycle,
// persisted atomically, scored, classified, fanned out to dependent writes,
// then paced to the configured target rate.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jinank/smart-aqms/internal/alerting"
	"github.com/jinank/smart-aqms/internal/classifier"
	"github.com/jinank/smart-aqms/internal/detector"
	"github.com/jinank/smart-aqms/internal/models"
	"github.com/jinank/smart-aqms/internal/source"
	"github.com/jinank/smart-aqms/internal/telemetry"
)

// Pipeline states. Running transitions to Completed when the duration
// deadline passes and to Stopping on external cancellation; in both cases
// the in-flight cycle finishes first.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateStopping  = "stopping"
	StateCompleted = "completed"
)

// Store is the slice of the repository the loop needs.
type Store interface {
	ReadingStore
	ListRecentReadings(ctx context.Context, limit int) ([]models.Reading, error)
	UpsertPredictions(ctx context.Context, items []models.Prediction) error
	InsertAlerts(ctx context.Context, items []models.Alert) error
	InsertPipelineRun(ctx context.Context, item *models.PipelineRun) error
	FinishPipelineRun(ctx context.Context, runID string, status string, cycles, rowsIngested int64, finishedAt time.Time) error
}

type Options struct {
	TargetRate   int           // rows per minute
	BatchSize    int           // rows per cycle
	Duration     time.Duration // 0 = run until cancelled
	ModelVersion string
	HistoryLimit int // in-memory baseline buffer cap
}

// Pipeline owns the detector and classifier for the lifetime of a run. Both
// are single-owner mutable state: every Detect/Train/Predict call happens
// from the one loop iteration in progress, never concurrently.
type Pipeline struct {
	Source     source.MeasurementSource
	Store      Store
	Detector   *detector.Detector
	Classifier *classifier.Classifier
	Recorder   *telemetry.Recorder
	Logger     *zap.Logger
	Options    Options

	mu    sync.RWMutex
	state string
	runID string

	history []models.Reading

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// State returns the current loop state for observability endpoints.
func (p *Pipeline) State() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state == "" {
		return StateIdle
	}
	return p.state
}

// RunID returns the identifier of the current or most recent run.
func (p *Pipeline) RunID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.runID
}

func (p *Pipeline) setState(state string) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// Run executes cycles until the duration deadline passes or ctx is
// cancelled. Cancellation is cooperative: it is checked at the top of each
// cycle, and an in-progress cycle always runs to completion or failure.
func (p *Pipeline) Run(ctx context.Context) error {
	if p == nil || p.Source == nil || p.Store == nil || p.Detector == nil || p.Classifier == nil {
		return errors.New("pipeline not fully wired")
	}
	if p.sleep == nil {
		p.sleep = sleepCtx
	}
	if p.now == nil {
		p.now = time.Now
	}
	historyLimit := p.Options.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 2048
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if p.Options.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.Options.Duration)
		defer cancel()
	}

	startedAt := p.now().UTC()
	runID := uuid.NewString()
	p.mu.Lock()
	p.runID = runID
	p.state = StateRunning
	p.mu.Unlock()

	if err := p.Store.InsertPipelineRun(runCtx, &models.PipelineRun{
		RunID:      runID,
		Status:     models.RunStatusRunning,
		TargetRate: p.Options.TargetRate,
		BatchSize:  p.Options.BatchSize,
		StartedAt:  startedAt,
	}); err != nil {
		p.logWarn("pipeline run bookkeeping failed", err)
	}

	// Warm start: a process restart should not drop back to the cold path
	// when the store already holds enough history.
	if history, err := p.Store.ListRecentReadings(runCtx, historyLimit); err != nil {
		p.logWarn("baseline history fetch failed", err)
	} else if len(history) >= p.Detector.MinWarmupSamples() {
		p.Detector.FitBaseline(history)
		p.logInfo("detector baseline fitted from stored history", zap.Int("samples", len(history)))
	}

	var cycles, totalIngested int64

loop:
	for {
		select {
		case <-runCtx.Done():
			break loop
		default:
		}

		cycleStart := p.now()

		batch, err := p.Source.Next(runCtx, p.Options.BatchSize)
		if err != nil {
			if runCtx.Err() != nil {
				break loop
			}
			p.logWarn("measurement source failed", err)
			if err := p.pace(runCtx, cycleStart); err != nil {
				break loop
			}
			continue
		}

		ingestor := BatchIngestor{Store: p.Store}
		ids, latency, err := ingestor.Ingest(runCtx, batch)
		if err != nil {
			if runCtx.Err() != nil {
				break loop
			}
			// The batch never became visible, so there is nothing to
			// correlate, score, or alert on. Abandon the cycle and retry on
			// the next tick.
			p.logWarn("batch ingest failed", err, zap.Int("rows", len(batch)))
			if err := p.pace(runCtx, cycleStart); err != nil {
				break loop
			}
			continue
		}
		cycles++
		totalIngested += int64(len(batch))

		p.history = append(p.history, batch...)
		if len(p.history) > historyLimit {
			p.history = p.history[len(p.history)-historyLimit:]
		}
		if !p.Detector.Warm() && len(p.history) >= p.Detector.MinWarmupSamples() {
			p.Detector.FitBaseline(p.history)
			p.logInfo("detector baseline fitted", zap.Int("samples", len(p.history)))
		}

		results := p.Detector.Detect(batch)
		accuracy := p.Classifier.Train(batch)
		preds := p.Classifier.Predict(batch)
		alerts := alerting.Generate(batch, results)
		predRows := buildPredictions(ids, preds, p.Options.ModelVersion, p.now().UTC())

		anomalies := 0
		for _, res := range results {
			if res.Anomalous {
				anomalies++
			}
		}

		stats := telemetry.CycleStats{
			TotalIngested: totalIngested,
			Elapsed:       p.now().Sub(startedAt),
			IngestLatency: latency,
			BatchAvgPM25:  meanPM25(batch),
			AnomalyCount:  anomalies,
			TrainAccuracy: accuracy,
			RecordedAt:    p.now().UTC(),
		}

		// Concurrent fan-out with a join barrier: predictions, alerts, and
		// metrics are written in parallel and the cycle does not pace until
		// all three return. Each write is best-effort; a failure in one must
		// not corrupt the others, so failures are logged per write.
		var wg sync.WaitGroup
		wg.Add(3)
		go func() {
			defer wg.Done()
			if err := p.Store.UpsertPredictions(runCtx, predRows); err != nil {
				p.logWarn("prediction write failed", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := p.Store.InsertAlerts(runCtx, alerts); err != nil {
				p.logWarn("alert write failed", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := p.Recorder.Record(runCtx, stats); err != nil {
				p.logWarn("metric write failed", err)
			}
		}()
		wg.Wait()

		p.logInfo("cycle complete",
			zap.Int("rows", len(batch)),
			zap.Float64("accuracy", accuracy),
			zap.Int("anomalies", anomalies),
			zap.Duration("ingest_latency", latency),
			zap.Int64("total_rows", totalIngested),
		)

		if err := p.pace(runCtx, cycleStart); err != nil {
			break loop
		}
	}

	status := models.RunStatusCompleted
	endState := StateCompleted
	if ctx.Err() != nil {
		status = models.RunStatusStopped
		endState = StateStopping
	}
	p.setState(endState)

	finishCtx, finishCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer finishCancel()
	if err := p.Store.FinishPipelineRun(finishCtx, runID, status, cycles, totalIngested, p.now().UTC()); err != nil {
		p.logWarn("pipeline run finalize failed", err)
	}
	p.logInfo("pipeline finished",
		zap.String("status", status),
		zap.Int64("cycles", cycles),
		zap.Int64("total_rows", totalIngested),
	)

	return ctx.Err()
}

func (p *Pipeline) pace(ctx context.Context, cycleStart time.Time) error {
	delay := PaceDelay(p.Options.BatchSize, p.Options.TargetRate, p.now().Sub(cycleStart))
	if delay <= 0 {
		return nil
	}
	return p.sleep(ctx, delay)
}

// PaceDelay returns how long to sleep after a cycle so the achieved rate
// approaches targetRate rows/min: the cycle's time budget 60s·batch/rate
// minus processing time, floored at zero.
func PaceDelay(batchSize, targetRate int, processing time.Duration) time.Duration {
	if batchSize <= 0 || targetRate <= 0 {
		return 0
	}
	budget := time.Duration(float64(time.Minute) * float64(batchSize) / float64(targetRate))
	if processing >= budget {
		return 0
	}
	return budget - processing
}

// buildPredictions correlates record IDs to classifier outputs positionally.
func buildPredictions(ids []int64, preds []classifier.Prediction, version string, at time.Time) []models.Prediction {
	n := len(ids)
	if len(preds) < n {
		n = len(preds)
	}
	rows := make([]models.Prediction, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.Prediction{
			RecordID:       ids[i],
			PredictedLabel: preds[i].Label,
			ProbaGood:      preds[i].Proba[0],
			ProbaModerate:  preds[i].Proba[1],
			ProbaUnhealthy: preds[i].Proba[2],
			ProbaHazardous: preds[i].Proba[3],
			Confidence:     preds[i].Confidence,
			ModelVersion:   version,
			PredictedAt:    at,
		})
	}
	return rows
}

func meanPM25(batch []models.Reading) float64 {
	if len(batch) == 0 {
		return 0
	}
	var sum float64
	for _, r := range batch {
		sum += r.PM25
	}
	return sum / float64(len(batch))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Pipeline) logWarn(msg string, err error, fields ...zap.Field) {
	if p.Logger == nil || errors.Is(err, context.Canceled) {
		return
	}
	p.Logger.Warn(msg, append(fields, zap.Error(err))...)
}

func (p *Pipeline) logInfo(msg string, fields ...zap.Field) {
	if p.Logger == nil {
		return
	}
	p.Logger.Info(msg, fields...)
}
