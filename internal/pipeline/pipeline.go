package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/dedup"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/port"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/infra/metrics"
)

// Config is the read-only run context shared by all workers for the duration
// of one invocation.
type Config struct {
	Workers       int
	BatchSize     int
	Dedup         dedup.Config
	OutputDir     string
	SQLFile       string
	PublicBaseURL string
}

// Pipeline wires the stages together: segment source, frame sampler, text
// recovery, deduplication, record emission. Engines are chosen once at
// construction and never switched mid-run.
type Pipeline struct {
	segmenter  port.Segmenter
	decoder    port.FrameDecoder
	recognizer port.TextRecognizer
	cfg        Config
	logger     *zap.Logger
}

// Summary is the user-visible outcome of one run.
type Summary struct {
	VideoName         string        `json:"video_name"`
	Segments          int           `json:"segments"`
	Candidates        int           `json:"candidates"`
	DecodeFailures    int           `json:"decode_failures"`
	RecognizeFailures int           `json:"recognize_failures"`
	Kept              int           `json:"kept"`
	Dropped           int           `json:"dropped"`
	VideoDuration     float64       `json:"video_duration"`
	OutputDir         string        `json:"output_dir"`
	SQLPath           string        `json:"sql_path"`
	Elapsed           time.Duration `json:"-"`
}

func New(segmenter port.Segmenter, decoder port.FrameDecoder, recognizer port.TextRecognizer, cfg Config, logger *zap.Logger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 8
	}
	return &Pipeline{
		segmenter:  segmenter,
		decoder:    decoder,
		recognizer: recognizer,
		cfg:        cfg,
		logger:     logger,
	}
}

// task is one candidate timestamp to decode and caption. Seq fixes the
// position in the run regardless of completion order.
type task struct {
	seq        int
	segmentIdx int
	timestamp  float64
	caption    string
	needOCR    bool
}

// outcome is what a worker reports back for one task.
type outcome struct {
	seq             int
	dropped         bool
	recognizeFailed bool
	record          entity.Record
}

// Run processes one video end to end and returns the run summary. Fatal
// failures abort before any partial output is written; per-candidate failures
// are logged and absorbed.
func (p *Pipeline) Run(ctx context.Context, videoPath string) (*Summary, error) {
	tracer := otel.Tracer("pipeline")
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	started := time.Now()
	videoName := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	log := p.logger.With(zap.String("video", videoName))

	info, err := p.decoder.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("unreadable source video %s: %w", videoPath, err)
	}

	ctxSeg, spanSeg := tracer.Start(ctx, "segments")
	segments, err := p.segmenter.Segments(ctxSeg, videoPath)
	spanSeg.End()
	if err != nil {
		return nil, fmt.Errorf("segment source: %w", err)
	}
	metrics.SegmentsDetectedTotal.Add(float64(len(segments)))
	log.Info("segments materialized", zap.Int("count", len(segments)))

	tasks := buildTasks(segments)

	ctxRec, spanRec := tracer.Start(ctx, "recover")
	ordered, decodeFailures, recognizeFailures := p.runWorkers(ctxRec, videoPath, tasks, log)
	spanRec.End()

	_, spanDedup := tracer.Start(ctx, "dedup")
	kept := dedup.Filter(ordered, p.cfg.Dedup, log)
	spanDedup.End()
	dropped := len(ordered) - len(kept)
	metrics.RecordsKeptTotal.Add(float64(len(kept)))
	metrics.RecordsDroppedTotal.Add(float64(dropped))

	// Ordinals are assigned over kept records only: monotonic, gapless, and
	// stable across re-runs with unchanged input.
	for i := range kept {
		kept[i].Ordinal = i
		kept[i].ImagePath = FrameFilename(i)
	}

	_, spanEmit := tracer.Start(ctx, "emit")
	outputDir, sqlPath, err := p.emit(videoName, segments, kept)
	spanEmit.End()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		VideoName:         videoName,
		Segments:          len(segments),
		Candidates:        len(tasks),
		DecodeFailures:    decodeFailures,
		RecognizeFailures: recognizeFailures,
		Kept:              len(kept),
		Dropped:           dropped,
		VideoDuration:     info.Duration,
		OutputDir:         outputDir,
		SQLPath:           sqlPath,
		Elapsed:           time.Since(started),
	}
	log.Info("run finished",
		zap.Int("segments", summary.Segments),
		zap.Int("candidates", summary.Candidates),
		zap.Int("kept", summary.Kept),
		zap.Int("dropped", summary.Dropped),
		zap.Int("decode_failures", summary.DecodeFailures),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// FrameFilename is the deterministic image name for a kept ordinal.
func FrameFilename(ordinal int) string {
	return fmt.Sprintf("frame_%06d.jpg", ordinal)
}

func buildTasks(segments []entity.Segment) []task {
	var tasks []task
	for segIdx, seg := range segments {
		for _, ts := range seg.CandidateTimestamps() {
			tasks = append(tasks, task{
				seq:        len(tasks),
				segmentIdx: segIdx,
				timestamp:  ts,
				caption:    seg.Caption,
				needOCR:    seg.Kind == entity.SourceScene,
			})
		}
	}
	return tasks
}

// runWorkers fans the tasks out over the worker pool in batches and fans the
// outcomes back in through a reorder buffer, so the dedup fold downstream
// sees candidates in their original order no matter which worker finished
// first.
func (p *Pipeline) runWorkers(ctx context.Context, videoPath string, tasks []task, log *zap.Logger) (ordered []entity.Record, decodeFailures, recognizeFailures int) {
	if len(tasks) == 0 {
		return nil, 0, 0
	}

	batches := make(chan []task, p.cfg.Workers)
	outcomes := make(chan outcome, p.cfg.Workers*p.cfg.BatchSize)

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				for _, t := range batch {
					outcomes <- p.process(ctx, videoPath, t, log)
				}
			}
		}()
	}

	go func() {
		for start := 0; start < len(tasks); start += p.cfg.BatchSize {
			end := start + p.cfg.BatchSize
			if end > len(tasks) {
				end = len(tasks)
			}
			batches <- tasks[start:end]
		}
		close(batches)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single-consumer reorder stage: buffer out-of-order completions and
	// release them in seq order.
	buffer := make(map[int]outcome, len(tasks))
	next := 0
	emit := func(o outcome) {
		if o.dropped {
			decodeFailures++
			return
		}
		if o.recognizeFailed {
			recognizeFailures++
		}
		ordered = append(ordered, o.record)
	}
	for o := range outcomes {
		buffer[o.seq] = o
		for {
			pending, ok := buffer[next]
			if !ok {
				break
			}
			delete(buffer, next)
			emit(pending)
			next++
		}
	}

	return ordered, decodeFailures, recognizeFailures
}

// process handles one candidate: decode the frame, recover its caption. All
// failures here are per-candidate and never escalate.
func (p *Pipeline) process(ctx context.Context, videoPath string, t task, log *zap.Logger) outcome {
	img, err := p.decoder.FrameAt(ctx, videoPath, t.timestamp)
	if err != nil {
		log.Warn("candidate frame decode failed, dropping candidate",
			zap.Float64("timestamp", t.timestamp), zap.Error(err))
		metrics.CandidateFailuresTotal.WithLabelValues("decode").Inc()
		return outcome{seq: t.seq, dropped: true}
	}
	metrics.FramesSampledTotal.Inc()

	caption := t.caption
	recognizeFailed := false
	if t.needOCR {
		caption, err = p.recognizer.Recognize(ctx, img)
		if err != nil {
			// No discoverable text is not a pipeline error; a failed backend
			// call degrades to an empty caption.
			log.Warn("text recovery failed, using empty caption",
				zap.Float64("timestamp", t.timestamp), zap.Error(err))
			metrics.CandidateFailuresTotal.WithLabelValues("recognize").Inc()
			caption = ""
			recognizeFailed = true
		}
	}

	return outcome{
		seq: t.seq,
		record: entity.Record{
			Timestamp: t.timestamp,
			Caption:   caption,
			Image:     img,
		},
		recognizeFailed: recognizeFailed,
	}
}
