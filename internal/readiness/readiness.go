// Package readiness evaluates per-dimension printer health lazily, caches
// the answers, and applies bounded corrective actions against a snapshot.
package readiness

import (
	"fmt"
	"strings"
	"time"

	"github.com/rubdev/labelctl/internal/protocol"
)

// Dimension is one independently checked aspect of device health.
type Dimension string

const (
	DimensionConnection Dimension = "connection"
	DimensionMedia      Dimension = "media"
	DimensionHead       Dimension = "head"
	DimensionPause      Dimension = "pause"
	DimensionHostStatus Dimension = "host_status"
	DimensionLanguage   Dimension = "language"
)

// Dimensions lists every dimension in check order.
var Dimensions = []Dimension{
	DimensionConnection,
	DimensionMedia,
	DimensionHead,
	DimensionPause,
	DimensionHostStatus,
	DimensionLanguage,
}

// Check is one dimension's tri-state result: the zero value is
// unchecked; Known with OK true/false is checked-good/checked-bad.
type Check struct {
	Known  bool
	OK     bool
	Detail string
}

func good() Check {
	return Check{Known: true, OK: true}
}

func goodDetail(detail string) Check {
	return Check{Known: true, OK: true, Detail: detail}
}

func bad(format string, args ...any) Check {
	return Check{Known: true, Detail: fmt.Sprintf(format, args...)}
}

// Readiness is a point-in-time snapshot of all cached dimension checks.
type Readiness struct {
	Connection Check
	Media      Check
	Head       Check
	Pause      Check
	HostStatus Check
	Language   Check

	// LanguageValue is the normalized configured language when the
	// language dimension has been checked.
	LanguageValue protocol.Language

	Errors    []string
	Warnings  []string
	CheckedAt time.Time
}

// Get returns the check for one dimension.
func (r Readiness) Get(dim Dimension) Check {
	switch dim {
	case DimensionConnection:
		return r.Connection
	case DimensionMedia:
		return r.Media
	case DimensionHead:
		return r.Head
	case DimensionPause:
		return r.Pause
	case DimensionHostStatus:
		return r.HostStatus
	case DimensionLanguage:
		return r.Language
	default:
		return Check{}
	}
}

// Ready reports overall readiness: the AND of good conditions across the
// dimensions opts configures as checked. It is a pure read of the
// snapshot and never triggers queries; an unchecked configured dimension
// counts as not ready.
func (r Readiness) Ready(opts Options) bool {
	for _, dim := range Dimensions {
		if !opts.Checks(dim) {
			continue
		}
		c := r.Get(dim)
		if !c.Known || !c.OK {
			return false
		}
	}
	return true
}

// BlockingIssues lists the human-readable reasons the snapshot is not
// ready under opts.
func (r Readiness) BlockingIssues(opts Options) []string {
	var issues []string
	for _, dim := range Dimensions {
		if !opts.Checks(dim) {
			continue
		}
		c := r.Get(dim)
		switch {
		case !c.Known:
			issues = append(issues, fmt.Sprintf("%s unchecked", dim))
		case !c.OK:
			detail := c.Detail
			if detail == "" {
				detail = "not ready"
			}
			issues = append(issues, fmt.Sprintf("%s: %s", dim, detail))
		}
	}
	return issues
}

// Options selects which dimensions to check, which corrections may be
// applied, and how much effort corrections may spend.
type Options struct {
	CheckConnection bool
	CheckMedia      bool
	CheckHead       bool
	CheckPause      bool
	CheckHostStatus bool
	CheckLanguage   bool

	FixPaused   bool
	FixErrors   bool
	FixMedia    bool
	FixLanguage bool
	FixBuffer   bool

	// PayloadLanguage drives the language-switch correction; unknown
	// means no switching.
	PayloadLanguage protocol.Language

	MaxAttempts  int
	AttemptDelay time.Duration
}

// DefaultOptions checks everything and permits the safe corrections.
func DefaultOptions() Options {
	return Options{
		CheckConnection: true,
		CheckMedia:      true,
		CheckHead:       true,
		CheckPause:      true,
		CheckHostStatus: true,
		CheckLanguage:   true,
		FixPaused:       true,
		FixErrors:       true,
		MaxAttempts:     2,
		AttemptDelay:    500 * time.Millisecond,
	}
}

// Checks reports whether opts configures dim as checked.
func (o Options) Checks(dim Dimension) bool {
	switch dim {
	case DimensionConnection:
		return o.CheckConnection
	case DimensionMedia:
		return o.CheckMedia
	case DimensionHead:
		return o.CheckHead
	case DimensionPause:
		return o.CheckPause
	case DimensionHostStatus:
		return o.CheckHostStatus
	case DimensionLanguage:
		return o.CheckLanguage
	default:
		return false
	}
}

// CorrectionRecord is one entry of the ordered correction log.
type CorrectionRecord struct {
	Name  string
	OK    bool
	Error string
}

// CorrectedReadiness is a readiness snapshot plus the corrections that
// were attempted against it. The log is append-only.
type CorrectedReadiness struct {
	Readiness   Readiness
	Corrections []CorrectionRecord
	CorrectedAt time.Time
}

// AllSucceeded reports whether every attempted correction succeeded.
// Vacuously true when nothing was attempted.
func (c CorrectedReadiness) AllSucceeded() bool {
	for _, rec := range c.Corrections {
		if !rec.OK {
			return false
		}
	}
	return true
}

// AnyFailed reports whether at least one correction failed.
func (c CorrectedReadiness) AnyFailed() bool {
	return !c.AllSucceeded()
}

// Summary renders a human-readable digest of the correction log.
func (c CorrectedReadiness) Summary() string {
	if len(c.Corrections) == 0 {
		return "no corrections attempted"
	}
	parts := make([]string, 0, len(c.Corrections))
	for _, rec := range c.Corrections {
		if rec.OK {
			parts = append(parts, rec.Name+" ok")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed (%s)", rec.Name, rec.Error))
	}
	return strings.Join(parts, "; ")
}
