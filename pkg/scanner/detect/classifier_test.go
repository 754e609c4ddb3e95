package detect

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleSizeDetector is a chain stand-in whose confidence depends on how
// much of the file it was shown, so second-pass decisions become
// observable and deterministic.
type sampleSizeDetector struct {
	calls   []int
	cutoff  int
	smaller float64
	larger  float64
}

func (d *sampleSizeDetector) Name() string { return "sample-size" }

func (d *sampleSizeDetector) Detect(sample []byte) (Result, bool) {
	d.calls = append(d.calls, len(sample))
	conf := d.smaller
	if len(sample) > d.cutoff {
		conf = d.larger
	}
	return Result{Encoding: EncodingISO8859_1, Confidence: conf, Method: MethodStatistical}, true
}

func newTestClassifier(sampleSize int, fast bool, d Detector) *Classifier {
	c := NewClassifier(sampleSize, fast, nil)
	c.chain = []Detector{d}
	return c
}

func writeBytes(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestDetectFile_SecondPassOnLowConfidence(t *testing.T) {
	det := &sampleSizeDetector{cutoff: 16, smaller: 0.50, larger: 0.90}
	c := newTestClassifier(16, false, det)
	path := writeBytes(t, "ambiguous.csv", bytes.Repeat([]byte{0xE9}, 200))

	res := c.DetectFile(path)

	require.Equal(t, []int{16, 64}, det.calls, "initial sample, then a four-times re-read")
	assert.Equal(t, MethodStatistical, res.Method)
	assert.InDelta(t, 0.90, res.Confidence, 0.001, "higher-confidence second answer wins")
}

func TestDetectFile_FastModeSkipsSecondPass(t *testing.T) {
	det := &sampleSizeDetector{cutoff: 16, smaller: 0.50, larger: 0.90}
	c := newTestClassifier(16, true, det)
	path := writeBytes(t, "ambiguous.csv", bytes.Repeat([]byte{0xE9}, 200))

	res := c.DetectFile(path)

	require.Equal(t, []int{16}, det.calls, "fast mode reads the initial sample only")
	assert.InDelta(t, 0.50, res.Confidence, 0.001)
}

func TestDetectFile_ConfidentFirstPassSkipsSecondPass(t *testing.T) {
	det := &sampleSizeDetector{cutoff: 16, smaller: secondPassThreshold, larger: 0.90}
	c := newTestClassifier(16, false, det)
	path := writeBytes(t, "confident.csv", bytes.Repeat([]byte{0xE9}, 200))

	res := c.DetectFile(path)

	require.Equal(t, []int{16}, det.calls, "confidence at the threshold never triggers a re-read")
	assert.InDelta(t, secondPassThreshold, res.Confidence, 0.001)
}

func TestDetectFile_NoSecondPassWhenSampleCoversFile(t *testing.T) {
	det := &sampleSizeDetector{cutoff: 64, smaller: 0.50, larger: 0.90}
	c := newTestClassifier(16, false, det)
	path := writeBytes(t, "small.csv", bytes.Repeat([]byte{0xE9}, 10))

	res := c.DetectFile(path)

	require.Equal(t, []int{10}, det.calls, "a larger read cannot add information")
	assert.InDelta(t, 0.50, res.Confidence, 0.001)
}

func TestDetectFile_SecondPassKeepsBetterFirstAnswer(t *testing.T) {
	// larger sample reports *lower* confidence: the first answer must stand.
	det := &sampleSizeDetector{cutoff: 16, smaller: 0.60, larger: 0.40}
	c := newTestClassifier(16, false, det)
	path := writeBytes(t, "regressing.csv", bytes.Repeat([]byte{0xE9}, 200))

	res := c.DetectFile(path)

	require.Equal(t, []int{16, 64}, det.calls)
	assert.InDelta(t, 0.60, res.Confidence, 0.001)
}

func TestAsciiDetector_SparseNulsStillASCII(t *testing.T) {
	// 7-bit content with NULs below both the UTF-16 parity gates and the
	// binary density gate.
	sample := bytes.Repeat([]byte("a,b,c\n"), 20)
	sample[7] = 0x00
	sample[53] = 0x00

	res, ok := asciiDetector{}.Detect(sample)
	require.True(t, ok)
	assert.Equal(t, EncodingASCII, res.Encoding)
	assert.Equal(t, MethodHeuristic, res.Method)
}

func TestAsciiDetector_NulDensityIsBinaryEvenWhenSevenBit(t *testing.T) {
	sample := append(bytes.Repeat([]byte{0x00}, 40), bytes.Repeat([]byte("ab"), 30)...)

	res, ok := asciiDetector{}.Detect(sample)
	require.True(t, ok)
	assert.Equal(t, EncodingBinary, res.Encoding)
}