// Package detect implements the multi-pass character-encoding classifier.
// Detection runs as an ordered chain of strategies (BOM, UTF-16 heuristic,
// ASCII/binary hint, statistical fallback); the first strategy with a
// confident opinion wins.
package detect

import (
	"strings"

	"golang.org/x/net/html/charset"
)

// Method identifies which detection stage produced a Result.
type Method string

const (
	MethodBOM         Method = "bom"
	MethodHeuristic   Method = "heuristic"
	MethodStatistical Method = "statistical"
	MethodFailed      Method = "failed"
)

// Encoding is a canonical encoding label drawn from a closed vocabulary.
// Detectors never emit free-form strings; anything a backend reports is
// routed through Canonicalize so that e.g. "utf8" and "UTF-8" cannot drift
// apart in aggregated distributions.
type Encoding string

const (
	EncodingUTF8        Encoding = "UTF-8"
	EncodingUTF16LE     Encoding = "utf-16-le"
	EncodingUTF16BE     Encoding = "utf-16-be"
	EncodingUTF32LE     Encoding = "utf-32-le"
	EncodingUTF32BE     Encoding = "utf-32-be"
	EncodingASCII       Encoding = "ascii"
	EncodingISO8859_1   Encoding = "ISO-8859-1"
	EncodingWindows1252 Encoding = "Windows-1252"
	EncodingShiftJIS    Encoding = "Shift_JIS"
	EncodingEUCJP       Encoding = "EUC-JP"
	EncodingEUCKR       Encoding = "EUC-KR"
	EncodingGB18030     Encoding = "GB18030"
	EncodingBig5        Encoding = "Big5"
	EncodingKOI8R       Encoding = "KOI8-R"
	EncodingIBM866      Encoding = "IBM866"
	EncodingBinary      Encoding = "binary"
	EncodingUnknown     Encoding = "unknown"
)

// knownEncodings maps lowercased alias names (including the IANA names the
// statistical backend reports) to canonical labels.
var knownEncodings = map[string]Encoding{
	"utf-8":        EncodingUTF8,
	"utf8":         EncodingUTF8,
	"utf-8-sig":    EncodingUTF8, // BOM variant folds into UTF-8
	"utf-16le":     EncodingUTF16LE,
	"utf-16-le":    EncodingUTF16LE,
	"utf-16be":     EncodingUTF16BE,
	"utf-16-be":    EncodingUTF16BE,
	"utf-32le":     EncodingUTF32LE,
	"utf-32-le":    EncodingUTF32LE,
	"utf-32be":     EncodingUTF32BE,
	"utf-32-be":    EncodingUTF32BE,
	"ascii":        EncodingASCII,
	"us-ascii":     EncodingASCII,
	"iso-8859-1":   EncodingISO8859_1,
	"latin1":       EncodingISO8859_1,
	"iso-8859-15":  EncodingISO8859_1,
	"windows-1252": EncodingWindows1252,
	"cp1252":       EncodingWindows1252,
	"shift_jis":    EncodingShiftJIS,
	"shift-jis":    EncodingShiftJIS,
	"sjis":         EncodingShiftJIS,
	"euc-jp":       EncodingEUCJP,
	"euc-kr":       EncodingEUCKR,
	"gb18030":      EncodingGB18030,
	"gb2312":       EncodingGB18030,
	"gbk":          EncodingGB18030,
	"big5":         EncodingBig5,
	"koi8-r":       EncodingKOI8R,
	"ibm866":       EncodingIBM866,
}

// Canonicalize maps an arbitrary encoding name onto the closed vocabulary.
// Unrecognized names are first resolved through charset.Lookup, which knows
// the full IANA alias table; names it cannot resolve either collapse to
// EncodingUnknown.
func Canonicalize(name string) Encoding {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return EncodingUnknown
	}
	if enc, ok := knownEncodings[key]; ok {
		return enc
	}
	if _, canonical := charset.Lookup(key); canonical != "" {
		if enc, ok := knownEncodings[strings.ToLower(canonical)]; ok {
			return enc
		}
	}
	return EncodingUnknown
}

// Result is the outcome of classifying one file. It is written exactly once
// by the worker that processed the file and is immutable afterwards.
type Result struct {
	Encoding   Encoding `json:"encoding" yaml:"encoding" toml:"encoding"`
	Confidence float64  `json:"confidence" yaml:"confidence" toml:"confidence"`
	Method     Method   `json:"method" yaml:"method" toml:"method"`
	Err        string   `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// Detected reports whether the classification counts as a successful
// detection for statistics purposes.
func (r Result) Detected() bool {
	return r.Method != MethodFailed && r.Encoding != EncodingUnknown
}

// failure builds a Result for an unreadable or undetectable file.
func failure(msg string) Result {
	return Result{Encoding: EncodingUnknown, Confidence: 0, Method: MethodFailed, Err: msg}
}
