package detect

import (
	"io"
	"log/slog"
	"os"
)

const (
	// DefaultSampleSize is the number of bytes read per detection pass.
	DefaultSampleSize = 65536

	// secondPassFactor scales the sample for the optional second pass.
	secondPassFactor = 4
	// secondPassThreshold is the statistical confidence below which the
	// non-fast path re-reads a larger sample.
	secondPassThreshold = 0.70
)

// Classifier performs file-level encoding classification: bounded sampling,
// the detector chain, and the optional low-confidence second pass.
// A Classifier is safe for concurrent use; each call owns its own buffers.
type Classifier struct {
	sampleSize int
	fast       bool
	chain      []Detector
	logger     *slog.Logger
}

// NewClassifier builds a Classifier over the default detector chain.
// sampleSize <= 0 falls back to DefaultSampleSize. In fast mode only the
// initial sample is ever read, trading a small accuracy loss for lower I/O.
func NewClassifier(sampleSize int, fast bool, loggerHandler slog.Handler) *Classifier {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	logger := slog.New(discardIfNil(loggerHandler)).With(slog.String("component", "classifier"))
	return &Classifier{
		sampleSize: sampleSize,
		fast:       fast,
		chain:      Chain(),
		logger:     logger,
	}
}

func discardIfNil(h slog.Handler) slog.Handler {
	if h == nil {
		return slog.NewTextHandler(io.Discard, nil)
	}
	return h
}

// DetectFile classifies the file at path. It never returns an error: I/O
// failures become Results with MethodFailed so a scan can fold them into
// its statistics and continue. For a fixed file and configuration the
// result is reproducible across runs.
func (c *Classifier) DetectFile(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return failure(err.Error())
	}
	if info.Size() == 0 {
		return failure("empty file")
	}

	sample, err := readSample(path, c.sampleSize)
	if err != nil {
		return failure(err.Error())
	}

	res, ok := c.runChain(sample)

	// Second pass: only when the statistical stage answered without much
	// conviction (or not at all) and a larger read could actually add
	// information. BOM and heuristic answers are never second-guessed.
	if !c.fast && info.Size() > int64(len(sample)) && needsSecondPass(res, ok) {
		bigger, rerr := readSample(path, c.sampleSize*secondPassFactor)
		if rerr == nil {
			if res2, ok2 := c.runChain(bigger); ok2 && res2.Confidence > res.Confidence {
				c.logger.Debug("second pass improved detection",
					slog.String("path", path),
					slog.String("encoding", string(res2.Encoding)),
					slog.Float64("confidence", res2.Confidence))
				res, ok = res2, true
			}
		}
	}

	if !ok {
		return failure("no detector produced an opinion")
	}
	return res
}

// runChain walks the detector chain and returns the first confident result.
func (c *Classifier) runChain(sample []byte) (Result, bool) {
	for _, d := range c.chain {
		if res, ok := d.Detect(sample); ok {
			return res, true
		}
	}
	return Result{}, false
}

func needsSecondPass(res Result, ok bool) bool {
	if !ok {
		return true
	}
	return res.Method == MethodStatistical && res.Confidence < secondPassThreshold
}

// readSample reads at most limit bytes from the start of the file.
func readSample(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, limit)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
