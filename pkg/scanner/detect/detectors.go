package detect

import (
	"bytes"

	"github.com/saintfish/chardet"
)

// Detection thresholds. The UTF-16 gates are asymmetric on purpose: one
// byte parity must be mostly NUL while the other stays nearly clean, so
// mixed or binary content never trips the heuristic.
const (
	// utf16NulHigh is the minimum NUL ratio on one byte parity for the
	// no-BOM UTF-16 heuristic to fire.
	utf16NulHigh = 0.40
	// utf16NulLow is the maximum NUL ratio tolerated on the opposite parity.
	utf16NulLow = 0.20
	// binaryNulRatio marks a sample as non-text when reached.
	binaryNulRatio = 0.30

	confidenceBOM    = 1.0
	confidenceUTF16  = 0.95
	confidenceASCII  = 0.99
	confidenceBinary = 1.0
)

// Detector is one strategy in the classification chain. Detect returns the
// strategy's Result and true when it has a confident opinion about the
// sample, or false to pass the sample to the next strategy.
type Detector interface {
	Name() string
	Detect(sample []byte) (Result, bool)
}

// Chain returns the default detector chain in priority order. The order is
// part of the contract: BOMs are exact, the UTF-16 heuristic outranks the
// statistical backend, and the ASCII fast path avoids statistical work for
// plain 7-bit files.
func Chain() []Detector {
	return []Detector{
		bomDetector{},
		utf16Detector{},
		asciiDetector{},
		newStatisticalDetector(),
	}
}

// bomDetector recognizes byte-order marks. UTF-32 marks are tested before
// UTF-16 because the UTF-32 LE mark begins with the UTF-16 LE mark.
type bomDetector struct{}

var bomTable = []struct {
	mark     []byte
	encoding Encoding
}{
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, EncodingUTF32LE},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, EncodingUTF32BE},
	{[]byte{0xEF, 0xBB, 0xBF}, EncodingUTF8},
	{[]byte{0xFF, 0xFE}, EncodingUTF16LE},
	{[]byte{0xFE, 0xFF}, EncodingUTF16BE},
}

func (bomDetector) Name() string { return "bom" }

func (bomDetector) Detect(sample []byte) (Result, bool) {
	for _, entry := range bomTable {
		if bytes.HasPrefix(sample, entry.mark) {
			return Result{Encoding: entry.encoding, Confidence: confidenceBOM, Method: MethodBOM}, true
		}
	}
	return Result{}, false
}

// utf16Detector guesses UTF-16 without a BOM from NUL bytes concentrated on
// a single byte parity. ASCII-range text encoded as UTF-16 LE has a NUL at
// every odd index; BE mirrors that on even indices.
type utf16Detector struct{}

func (utf16Detector) Name() string { return "utf16-no-bom" }

func (utf16Detector) Detect(sample []byte) (Result, bool) {
	if len(sample) < 4 {
		return Result{}, false
	}
	var evenNuls, oddNuls int
	for i, b := range sample {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			evenNuls++
		} else {
			oddNuls++
		}
	}
	half := len(sample) / 2
	if half < 1 {
		half = 1
	}
	evenRatio := float64(evenNuls) / float64(half)
	oddRatio := float64(oddNuls) / float64(half)
	switch {
	case oddRatio > utf16NulHigh && evenRatio < utf16NulLow:
		return Result{Encoding: EncodingUTF16LE, Confidence: confidenceUTF16, Method: MethodHeuristic}, true
	case evenRatio > utf16NulHigh && oddRatio < utf16NulLow:
		return Result{Encoding: EncodingUTF16BE, Confidence: confidenceUTF16, Method: MethodHeuristic}, true
	}
	return Result{}, false
}

// asciiDetector resolves the two cheap extremes: samples whose NUL
// density rules out text entirely, and samples that are pure 7-bit ASCII.
// The binary gate is tested first so NUL-dense 7-bit content never
// reports as ascii; sparse NULs below the gate do not disqualify an
// otherwise 7-bit sample.
type asciiDetector struct{}

func (asciiDetector) Name() string { return "ascii" }

func (asciiDetector) Detect(sample []byte) (Result, bool) {
	if len(sample) == 0 {
		return Result{}, false
	}
	nuls := 0
	allASCII := true
	for _, b := range sample {
		if b >= 0x80 {
			allASCII = false
		}
		if b == 0 {
			nuls++
		}
	}
	if float64(nuls)/float64(len(sample)) >= binaryNulRatio {
		return Result{Encoding: EncodingBinary, Confidence: confidenceBinary, Method: MethodHeuristic}, true
	}
	if allASCII {
		return Result{Encoding: EncodingASCII, Confidence: confidenceASCII, Method: MethodHeuristic}, true
	}
	return Result{}, false
}

// statisticalDetector delegates to the chardet character-distribution
// models and accepts whatever best guess they produce.
type statisticalDetector struct {
	detector *chardet.Detector
}

func newStatisticalDetector() *statisticalDetector {
	return &statisticalDetector{detector: chardet.NewTextDetector()}
}

func (*statisticalDetector) Name() string { return "statistical" }

func (d *statisticalDetector) Detect(sample []byte) (Result, bool) {
	best, err := d.detector.DetectBest(sample)
	if err != nil || best == nil {
		return Result{}, false
	}
	enc := Canonicalize(best.Charset)
	if enc == EncodingUnknown {
		return Result{}, false
	}
	confidence := float64(best.Confidence) / 100.0
	if confidence > 1 {
		confidence = 1
	}
	return Result{Encoding: enc, Confidence: confidence, Method: MethodStatistical}, true
}
