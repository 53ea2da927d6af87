package workflow

import (
	"time"

	"github.com/rubdev/labelctl/internal/protocol"
)

// Dwell estimation constants. Per-character costs differ by language
// because ZPL streams compress label content far more densely than
// line-print payloads; the fixed overheads cover job setup and the
// mechanical feed cycle.
const (
	dwellPerCharZPL  = 40 * time.Microsecond
	dwellPerCharCPCL = 90 * time.Microsecond
	dwellPerJob      = 1500 * time.Millisecond
	dwellMechanical  = 500 * time.Millisecond
	dwellMinimum     = 2 * time.Second
)

// EstimateDwell returns the expected wait after sending a payload of the
// given size before the physical print should be finished, clamped to a
// minimum.
func EstimateDwell(payloadSize int, lang protocol.Language) time.Duration {
	perChar := dwellPerCharZPL
	if lang == protocol.LanguageCPCL {
		perChar = dwellPerCharCPCL
	}
	d := time.Duration(payloadSize)*perChar + dwellPerJob + dwellMechanical
	if d < dwellMinimum {
		d = dwellMinimum
	}
	return d
}
