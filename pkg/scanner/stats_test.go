package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/csv-charset/pkg/scanner/detect"
)

func detected(enc detect.Encoding) detect.Result {
	return detect.Result{Encoding: enc, Confidence: 0.9, Method: detect.MethodStatistical}
}

func failed(msg string) detect.Result {
	return detect.Result{Encoding: detect.EncodingUnknown, Method: detect.MethodFailed, Err: msg}
}

func TestStatsAggregator_Invariants(t *testing.T) {
	f1 := &Folder{Path: "/top/a", DisplayName: "a"}
	f2 := &Folder{Path: "/top/b", DisplayName: "b"}
	agg := newStatsAggregator([]*Folder{f1, f2})

	agg.add(f1, detected(detect.EncodingUTF8))
	agg.add(f1, detected(detect.EncodingUTF8))
	agg.add(f1, detected(detect.EncodingISO8859_1))
	agg.add(f1, failed("read failed"))
	agg.add(f2, detected(detect.EncodingASCII))

	report := agg.report(time.Second, nil, nil, false)

	assert.Equal(t, 5, report.Overall.TotalFiles)
	assert.Equal(t, 4, report.Overall.Detected)
	assert.Equal(t, 2, report.Overall.Folders)
	assert.Equal(t, 1, report.Overall.Encodings[detect.EncodingUnknown])

	require.Len(t, report.Folders, 2)
	a, b := report.Folders[0], report.Folders[1]
	assert.Equal(t, 4, a.Total)
	assert.Equal(t, 3, a.Detected)
	assert.InDelta(t, 75.0, a.SuccessRate(), 0.001)
	assert.Equal(t, 1, b.Total)

	sum := map[detect.Encoding]int{}
	for _, f := range report.Folders {
		for enc, n := range f.Encodings {
			sum[enc] += n
		}
	}
	assert.Equal(t, report.Overall.Encodings, sum, "folder counts sum to overall counts per encoding")
}

func TestStatsAggregator_ReportIsASnapshot(t *testing.T) {
	f := &Folder{Path: "/top/a", DisplayName: "a"}
	agg := newStatsAggregator([]*Folder{f})
	agg.add(f, detected(detect.EncodingUTF8))

	frozen := agg.report(0, nil, nil, false)
	agg.add(f, detected(detect.EncodingUTF8))

	assert.Equal(t, 1, frozen.Overall.TotalFiles, "later adds do not leak into an issued report")
	assert.Equal(t, 1, frozen.Folders[0].Encodings[detect.EncodingUTF8])
}

func TestSuccessRate_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, OverallStats{}.SuccessRate())
	assert.Equal(t, 0.0, FolderStats{}.SuccessRate())
}

func TestDistribution_OrderingAndRounding(t *testing.T) {
	rows := Distribution(map[detect.Encoding]int{
		detect.EncodingUTF8:      2,
		detect.EncodingASCII:     2,
		detect.EncodingISO8859_1: 5,
	}, 9)

	require.Len(t, rows, 3)
	assert.Equal(t, detect.EncodingISO8859_1, rows[0].Encoding)
	assert.Equal(t, detect.EncodingUTF8, rows[1].Encoding, "ties break on label ascending")
	assert.Equal(t, detect.EncodingASCII, rows[2].Encoding)

	assert.Equal(t, 55.6, rows[0].Percentage)
	assert.Equal(t, 22.2, rows[1].Percentage)
	assert.Equal(t, 22.2, rows[2].Percentage)

	var total float64
	for _, r := range rows {
		total += r.Percentage
	}
	assert.InDelta(t, 100.0, total, 0.2)
}

func TestDistribution_ZeroScope(t *testing.T) {
	rows := Distribution(map[detect.Encoding]int{detect.EncodingUTF8: 0}, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Percentage)
}
