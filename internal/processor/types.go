package processor

import (
	"xlpress/internal/convert"
	"xlpress/pkg/imgutil"
)

type Mode int

const (
	ModeEncode Mode = iota
	ModeDecode
	ModeInspect
)

type Options struct {
	Mode      Mode
	OutputDir string
	Recursive bool
	Request   convert.Request
}

type Job struct {
	Path    string
	RelPath string
	Display string
	Kind    imgutil.Kind
}

type Result struct {
	Path    string
	Display string
	Outcome convert.Outcome
	Report  *FileReport
}

type Summary struct {
	Total    int
	Written  int
	Skipped  int
	Failed   int
	BytesIn  int64
	BytesOut int64
}

// BytesSaved is the difference between everything read and everything that
// landed in the output directory.
func (s Summary) BytesSaved() int64 {
	return s.BytesIn - s.BytesOut
}

// FileReport is the dry-run view of one file produced in ModeInspect.
type FileReport struct {
	Kind     imgutil.Kind
	Width    int
	Height   int
	Depth    convert.Depth
	Action   string
	HasICC   bool
	Camera   string
	Captured string
	Err      error
}

type ProgressUpdate struct {
	TotalDelta      int
	WrittenDelta    int
	SkippedDelta    int
	FailedDelta     int
	BytesSavedDelta int64
	Current         string
}
