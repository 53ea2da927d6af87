package readiness

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rubdev/labelctl/internal/observability"
	"github.com/rubdev/labelctl/internal/protocol"
	"github.com/rubdev/labelctl/internal/transport"
)

// Correction names issued into the correction log.
const (
	CorrectionUnpause     = "unpause"
	CorrectionClearErrors = "clear_errors"
	CorrectionCalibrate   = "calibrate"
	CorrectionSwitchLang  = "switch_language"
	CorrectionClearBuffer = "clear_buffer"
)

// Corrector applies bounded self-healing actions against a readiness
// snapshot. Corrections are best-effort and independent: a failure in
// one never aborts the others, and transport faults are captured
// per-correction, never propagated.
type Corrector struct {
	tr   transport.Transport
	eval *Evaluator
	log  zerolog.Logger
}

func NewCorrector(tr transport.Transport, eval *Evaluator, log zerolog.Logger) *Corrector {
	return &Corrector{
		tr:   tr,
		eval: eval,
		log:  log.With().Str("component", "corrector").Logger(),
	}
}

// Apply runs every enabled correction whose trigger condition holds in
// snap. The status callback (optional) receives a line per outcome. The
// boolean result reports whether at least one correction was attempted
// and succeeded.
func (c *Corrector) Apply(ctx context.Context, snap Readiness, opts Options, status func(string)) (CorrectedReadiness, bool) {
	out := CorrectedReadiness{Readiness: snap, CorrectedAt: time.Now()}
	report := func(line string) {
		if status != nil {
			status(line)
		}
	}

	if opts.FixPaused && snap.Pause.Known && !snap.Pause.OK {
		c.run(ctx, &out, opts, CorrectionUnpause, report, func(ctx context.Context) error {
			return c.tr.SendRaw(ctx, protocol.Unpause())
		})
		c.eval.Reset(DimensionPause)
	}

	if opts.FixErrors && len(snap.Errors) > 0 {
		c.run(ctx, &out, opts, CorrectionClearErrors, report, func(ctx context.Context) error {
			return c.tr.SendRaw(ctx, protocol.CmdClearErrors)
		})
		c.eval.Reset(DimensionHostStatus)
	}

	if opts.FixMedia && snap.Media.Known && !snap.Media.OK {
		c.run(ctx, &out, opts, CorrectionCalibrate, report, func(ctx context.Context) error {
			return c.tr.SendRaw(ctx, protocol.CmdCalibrate)
		})
		c.eval.Reset(DimensionMedia)
	}

	if opts.FixBuffer && snap.HostStatus.Known && !snap.HostStatus.OK {
		c.run(ctx, &out, opts, CorrectionClearBuffer, report, func(ctx context.Context) error {
			if err := c.tr.SendRaw(ctx, protocol.CmdClearBuffer); err != nil {
				return err
			}
			return c.tr.SendRaw(ctx, protocol.CmdFlushBuffer)
		})
		c.eval.Reset(DimensionHostStatus)
	}

	if opts.FixLanguage {
		c.applyLanguageSwitch(ctx, &out, opts, report)
	}

	succeeded := false
	for _, rec := range out.Corrections {
		if rec.OK {
			succeeded = true
			break
		}
	}
	return out, succeeded
}

func (c *Corrector) run(ctx context.Context, out *CorrectedReadiness, opts Options, name string, report func(string), action func(context.Context) error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	rec := CorrectionRecord{Name: name}
	for i := 1; i <= attempts; i++ {
		if i > 1 && opts.AttemptDelay > 0 {
			timer := time.NewTimer(opts.AttemptDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				rec.Error = ctx.Err().Error()
				out.Corrections = append(out.Corrections, rec)
				return
			}
		}
		err := action(ctx)
		if err == nil {
			rec.OK = true
			rec.Error = ""
			break
		}
		rec.Error = err.Error()
		c.log.Debug().Err(err).Str("correction", name).Int("attempt", i).Msg("correction failed")
	}
	if rec.OK {
		report(name + " applied")
	} else {
		report(fmt.Sprintf("%s failed: %s", name, rec.Error))
	}
	observability.RecordCorrection(name, rec.OK)
	out.Corrections = append(out.Corrections, rec)
}

// applyLanguageSwitch re-queries the printer's current language fresh,
// bypassing the cache, and issues a switch only on mismatch with the
// payload language. When either side cannot be determined it assumes no
// action is required.
func (c *Corrector) applyLanguageSwitch(ctx context.Context, out *CorrectedReadiness, opts Options, report func(string)) {
	want := opts.PayloadLanguage
	if want == "" || want == protocol.LanguageUnknown {
		return
	}
	raw, err := c.tr.Query(ctx, protocol.KeyLanguages)
	if err != nil {
		// Undetermined current language: optimistic no-op.
		c.log.Debug().Err(err).Msg("language re-query failed, skipping switch")
		return
	}
	current := protocol.NormalizeLanguage(protocol.ParseResponse(raw))
	if current == protocol.LanguageUnknown || current == want {
		return
	}
	c.run(ctx, out, opts, CorrectionSwitchLang, report, func(ctx context.Context) error {
		return c.tr.SendRaw(ctx, protocol.SwitchLanguage(want))
	})
	c.eval.Reset(DimensionLanguage)
}
