package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/journeykit/journeymap/pkg/observability"
)

// Measurer reports the rendered dimensions of a node on the surface.
// Initial layout uses size hints rather than measured sizes for overview
// nodes, so measurement becomes available only after the surface has
// actually rendered the node.
type Measurer interface {
	// Measure returns the rendered width and height of the node and
	// whether the node is present on the surface at all.
	Measure(nodeID string) (width, height float64, present bool)
}

// Camera controls the viewport of one canvas.
type Camera interface {
	// FitNode frames the view around a single node with the given padding.
	FitNode(nodeID string, padding float64)
}

// Fit controller defaults.
const (
	// DefaultFitAttempts bounds the measurement poll. At typical frame
	// rates 12 attempts is roughly 200ms.
	DefaultFitAttempts = 12

	// DefaultFrameInterval approximates one animation frame.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultFitPadding is the viewport padding around the primary node.
	DefaultFitPadding = 0.4
)

// FitController brings the primary node into view after each graph rebuild,
// deferring the camera operation until the node's real rendered size is
// known or a bounded number of poll attempts has elapsed.
//
// A controller is bound to one canvas instance. It is safe for use from the
// event goroutine that owns the canvas plus its own internal poll goroutine;
// NodesChanged and Close may not be called concurrently with each other.
type FitController struct {
	surface  Measurer
	camera   Camera
	logger   *log.Logger
	attempts int
	interval time.Duration
	padding  float64

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    int
	wg     sync.WaitGroup
}

// FitOption customizes a FitController.
type FitOption func(*FitController)

// WithFitAttempts overrides the poll attempt budget.
func WithFitAttempts(n int) FitOption {
	return func(f *FitController) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithFrameInterval overrides the poll interval. Tests use a short interval
// instead of waiting for real frame timing.
func WithFrameInterval(d time.Duration) FitOption {
	return func(f *FitController) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithFitPadding overrides the viewport padding passed to the camera.
func WithFitPadding(p float64) FitOption {
	return func(f *FitController) { f.padding = p }
}

// NewFitController creates a controller for one canvas.
func NewFitController(surface Measurer, camera Camera, logger *log.Logger, opts ...FitOption) *FitController {
	if logger == nil {
		logger = log.Default()
	}
	f := &FitController{
		surface:  surface,
		camera:   camera,
		logger:   logger,
		attempts: DefaultFitAttempts,
		interval: DefaultFrameInterval,
		padding:  DefaultFitPadding,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NodesChanged must be called after every node-set change. Any in-flight
// poll is cancelled first, so a delayed fit from a previous node set can
// never execute after the view has moved on. If the set has no primary node
// (no journey loaded) nothing happens.
func (f *FitController) NodesChanged(nodes []Node) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	gen := f.gen

	var primary string
	for i := range nodes {
		if nodes[i].IsPrimary() {
			primary = nodes[i].ID
			break
		}
	}
	if primary == "" {
		f.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.wg.Add(1)
	f.mu.Unlock()

	observability.Canvas().OnFitScheduled(primary)
	go f.poll(ctx, gen, primary)
}

// Close cancels any in-flight poll and waits for it to finish. The
// controller must not be reused afterwards.
func (f *FitController) Close() {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.mu.Unlock()
	f.wg.Wait()
}

func (f *FitController) poll(ctx context.Context, gen int, nodeID string) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= f.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		w, h, present := f.surface.Measure(nodeID)
		if !present || (w > 0 && h > 0) {
			// Absent from the surface counts as acceptable: there is
			// nothing further to wait for.
			f.fit(gen, nodeID, attempt, true)
			return
		}
	}

	// Budget exhausted: fit with whatever size is available. Measurement
	// is best-effort, never a hard requirement for displaying the canvas.
	f.fit(gen, nodeID, f.attempts, false)
}

func (f *FitController) fit(gen int, nodeID string, attempt int, measured bool) {
	// Re-check liveness under the lock: the node set may have changed
	// between the last measurement and now.
	f.mu.Lock()
	live := gen == f.gen
	f.mu.Unlock()
	if !live {
		return
	}

	if !measured {
		f.logger.Debug("viewport fit without measurement", "node", nodeID, "attempts", attempt)
	}
	f.camera.FitNode(nodeID, f.padding)
	observability.Canvas().OnFitComplete(nodeID, attempt, measured)
}
