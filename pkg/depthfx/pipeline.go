package depthfx

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ColorFrame is a captured color image.
type ColorFrame struct {
	Timestamp   time.Time
	Image       image.Image
	Orientation Orientation
}

// DepthFrame is a captured depth buffer.
type DepthFrame struct {
	Timestamp time.Time
	Buffer    *DepthBuffer
}

// Pair is a color frame matched with the depth frame captured alongside it.
type Pair struct {
	Seq   uint64
	Color ColorFrame
	Depth DepthFrame
}

// SyncStats counts what the Synchronizer did with incoming frames.
type SyncStats struct {
	Paired    uint64
	Unmatched uint64 // frames discarded because no partner arrived in time
	Dropped   uint64 // pairs overwritten before the worker consumed them
}

// Synchronizer pairs color and depth frames by timestamp and hands pairs to
// a single consumer through a one-slot mailbox. Publishing never blocks; an
// unconsumed pair is overwritten by a newer one.
type Synchronizer struct {
	params SyncParams

	mu     sync.Mutex
	cond   *sync.Cond
	color  *ColorFrame
	depth  *DepthFrame
	pair   *Pair
	seq    uint64
	stats  SyncStats
	closed bool
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(params SyncParams) *Synchronizer {
	s := &Synchronizer{params: params}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// PublishColor offers a color frame for pairing.
func (s *Synchronizer) PublishColor(f ColorFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.color != nil {
		s.stats.Unmatched++
	}
	s.color = &f
	s.tryPair()
}

// PublishDepth offers a depth frame for pairing.
func (s *Synchronizer) PublishDepth(f DepthFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.depth != nil {
		s.stats.Unmatched++
	}
	s.depth = &f
	s.tryPair()
}

// tryPair must be called with mu held.
func (s *Synchronizer) tryPair() {
	if s.color == nil || s.depth == nil {
		return
	}
	dt := s.color.Timestamp.Sub(s.depth.Timestamp)
	if dt < 0 {
		dt = -dt
	}
	if dt > s.params.Tolerance {
		// The older frame can never be matched any more.
		if s.color.Timestamp.Before(s.depth.Timestamp) {
			s.color = nil
		} else {
			s.depth = nil
		}
		s.stats.Unmatched++
		return
	}

	if s.pair != nil {
		s.stats.Dropped++
	}
	s.seq++
	s.pair = &Pair{Seq: s.seq, Color: *s.color, Depth: *s.depth}
	s.color, s.depth = nil, nil
	s.stats.Paired++
	s.cond.Broadcast()
}

// Next blocks until a pair is available and returns it. A pair published
// before Close is still delivered; after that Next returns false.
func (s *Synchronizer) Next() (Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pair == nil && !s.closed {
		s.cond.Wait()
	}
	if s.pair == nil {
		return Pair{}, false
	}
	p := *s.pair
	s.pair = nil
	s.cond.Broadcast()
	return p, true
}

// WaitIdle blocks until the consumer has taken the pending pair, the
// Synchronizer is closed or ctx is done. Producers replaying recorded
// frames call it before each publish so that no pair is overwritten.
func (s *Synchronizer) WaitIdle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pair != nil && !s.closed && ctx.Err() == nil {
		s.cond.Wait()
	}
	return ctx.Err()
}

// Close wakes the consumer and makes further publishes no-ops.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Stats returns a snapshot of the pairing counters.
func (s *Synchronizer) Stats() SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Selection is the UI state driving a frame: what to show, which recipe and
// which depth to focus on.
type Selection struct {
	Mode   PreviewMode
	Filter FilterType
	Focus  float64
}

// Result is the outcome of processing one pair.
type Result struct {
	Seq    uint64
	Plan   Plan
	Output *Output
	// Fallback is set when the frame could not be rendered as planned and
	// Output holds the unfiltered color image instead.
	Fallback error
}

// Processor runs normalization, conversion, mask generation and compositing
// for one frame at a time and publishes the latest complete mask.
type Processor struct {
	ctx   *Context
	scale ScaleFactor
	clamp bool
	log   logrus.FieldLogger

	selection atomic.Pointer[Selection]
	mask      atomic.Pointer[Mask]
	processed atomic.Uint64
	fallbacks atomic.Uint64
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger used for per-frame diagnostics.
func WithLogger(l logrus.FieldLogger) ProcessorOption {
	return func(p *Processor) { p.log = l }
}

// WithScale fixes the depth-to-color scale factor instead of deriving it
// from each pair's dimensions.
func WithScale(s ScaleFactor) ProcessorOption {
	return func(p *Processor) { p.scale = s }
}

// WithDepthClamp clamps incoming disparity to [0, 1] instead of stretching
// each frame's range, so the focus value means the same disparity on every
// frame of a video.
func WithDepthClamp() ProcessorOption {
	return func(p *Processor) { p.clamp = true }
}

// NewProcessor creates a Processor rendering with ctx.
func NewProcessor(ctx *Context, opts ...ProcessorOption) *Processor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	p := &Processor{ctx: ctx, log: discard}
	for _, opt := range opts {
		opt(p)
	}
	p.selection.Store(&Selection{Mode: PreviewFiltered, Filter: Spotlight, Focus: 0.5})
	return p
}

// SetSelection replaces the selection used by Run for subsequent frames.
func (p *Processor) SetSelection(sel Selection) {
	p.selection.Store(&sel)
}

// Selection returns the current selection.
func (p *Processor) Selection() Selection {
	return *p.selection.Load()
}

// CurrentMask returns the most recently completed mask, or nil.
func (p *Processor) CurrentMask() *Mask {
	return p.mask.Load()
}

// Processed returns the number of frames processed and how many of them fell back.
func (p *Processor) Processed() (total, fallbacks uint64) {
	return p.processed.Load(), p.fallbacks.Load()
}

// Process renders one pair. It never fails: problems are reported through
// Result.Fallback with the original color image as output.
func (p *Processor) Process(pair Pair, sel Selection) Result {
	p.processed.Add(1)
	res := Result{Seq: pair.Seq}
	orientation := pair.Color.Orientation

	fallback := func(err error) Result {
		p.fallbacks.Add(1)
		p.log.WithError(err).WithFields(logrus.Fields{
			"seq":    pair.Seq,
			"mode":   sel.Mode.String(),
			"filter": sel.Filter.String(),
		}).Debug("frame fell back to original")
		res.Fallback = err
		if pair.Color.Image != nil {
			res.Output = &Output{Image: toNRGBA(pair.Color.Image), Orientation: orientation}
		}
		return res
	}

	if pair.Color.Image == nil || pair.Color.Image.Bounds().Empty() {
		return fallback(fmt.Errorf("%w: no color image", ErrMissingInput))
	}
	plan, err := Dispatch(sel.Mode, sel.Filter)
	if err != nil {
		return fallback(err)
	}
	res.Plan = plan
	if !plan.NeedsDepth {
		res.Output = &Output{Image: toNRGBA(pair.Color.Image), Orientation: orientation}
		return res
	}

	depth, err := ToDisparity(pair.Depth.Buffer)
	if err != nil {
		return fallback(err)
	}
	p.prepareDepth(pair.Seq, depth)
	colorSize := pair.Color.Image.Bounds().Size()
	if !plan.NeedsMask {
		preview := depth.Resize(colorSize.X, colorSize.Y)
		res.Output = &Output{Image: toNRGBA(DepthImage(preview)), Orientation: orientation}
		return res
	}

	scale := p.scale
	if scale <= 0 {
		scale = NewScaleFactor(colorSize, image.Pt(depth.Width, depth.Height))
	}
	mask, err := p.ctx.CreateMask(depth, sel.Focus, scale, plan.Mask)
	if err != nil {
		return fallback(err)
	}

	if plan.Mode == PreviewMask {
		preview := mask.Resize(colorSize.X, colorSize.Y)
		res.Output = &Output{Image: toNRGBA(MaskImage(preview)), Orientation: orientation}
	} else {
		out, err := p.ctx.Apply(plan.Filter, pair.Color.Image, mask, ApplyOptions{Orientation: orientation})
		if err != nil {
			return fallback(err)
		}
		res.Output = out
	}

	// Publish only once the whole chain has succeeded.
	p.mask.Store(mask)
	return res
}

// prepareDepth brings depth into [0, 1] by stretching or clamping.
func (p *Processor) prepareDepth(seq uint64, depth *DepthMap) {
	if p.clamp {
		Clamp(depth)
		return
	}
	r, ok := Normalize(depth)
	if !debugEnabled(p.log) {
		return
	}
	if !ok {
		p.log.WithFields(logrus.Fields{"seq": seq, "min": r.Start, "max": r.End}).
			Debug("depth frame has no dynamic range, normalized to zero")
		return
	}
	p.log.WithFields(logrus.Fields{
		"seq":       seq,
		"min":       r.Start,
		"max":       r.End,
		"span":      r.Span(),
		"histogram": DepthHistogram(depth, 8),
	}).Debug("depth normalized")
}

// debugEnabled reports whether l would emit debug entries. Unknown
// FieldLogger implementations are assumed to.
func debugEnabled(l logrus.FieldLogger) bool {
	switch l := l.(type) {
	case *logrus.Logger:
		return l.IsLevelEnabled(logrus.DebugLevel)
	case *logrus.Entry:
		return l.Logger.IsLevelEnabled(logrus.DebugLevel)
	default:
		return true
	}
}

// Run consumes pairs from frames on the calling goroutine until ctx is done or
// frames is closed and drained, handing every result to sink in order.
func (p *Processor) Run(ctx context.Context, frames *Synchronizer, sink func(Result)) error {
	stop := context.AfterFunc(ctx, frames.Close)
	defer stop()

	p.log.Info("processor started")
	defer p.log.Info("processor stopped")
	for {
		pair, ok := frames.Next()
		if !ok {
			return ctx.Err()
		}
		sink(p.Process(pair, p.Selection()))
	}
}
