package dice

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Recorder wraps a Source and logs every draw at debug level so that a bout
// can be audited or replayed from the log.
type Recorder struct {
	src    Source
	logger *zap.Logger
	draws  atomic.Int64
}

// NewRecorder creates a Recorder that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewRecorder(src Source, logger *zap.Logger) *Recorder {
	return &Recorder{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
func (r *Recorder) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw",
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("value", v),
		zap.Int64("draw", r.draws.Add(1)),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (r *Recorder) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice draw",
		zap.String("kind", "float64"),
		zap.Float64("value", v),
		zap.Int64("draw", r.draws.Add(1)),
	)
	return v
}

// Draws returns the number of values drawn so far.
func (r *Recorder) Draws() int64 { return r.draws.Load() }
