package readiness

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rubdev/labelctl/internal/faults"
	"github.com/rubdev/labelctl/internal/protocol"
	"github.com/rubdev/labelctl/internal/testutil/testlog"
)

func correctionOpts() Options {
	opts := DefaultOptions()
	opts.MaxAttempts = 1
	opts.AttemptDelay = 0
	return opts
}

func sentContains(tr *fakeTransport, cmd []byte) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, s := range tr.sent {
		if bytes.Equal(s, cmd) {
			return true
		}
	}
	return false
}

func TestCorrectorIdempotentOnHealthySnapshot(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	snap := eval.ReadAllStatuses(context.Background(), opts)
	if !snap.Ready(opts) {
		t.Fatalf("fixture device must start healthy: %v", snap.BlockingIssues(opts))
	}

	before := tr.totalQueries()
	out, acted := corr.Apply(context.Background(), snap, opts, nil)
	if acted || len(out.Corrections) != 0 {
		t.Fatalf("healthy snapshot must trigger nothing: %+v", out.Corrections)
	}
	tr.mu.Lock()
	sends := len(tr.sent)
	tr.mu.Unlock()
	if sends != 0 || tr.totalQueries() != before {
		t.Fatalf("no transport traffic expected: sends=%d", sends)
	}
}

func TestCorrectorUnpauses(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	tr.responses[protocol.KeyPause] = `"on"`
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	snap := eval.ReadAllStatuses(context.Background(), opts)
	if snap.Ready(opts) {
		t.Fatalf("paused device must not be ready")
	}

	var lines []string
	out, acted := corr.Apply(context.Background(), snap, opts, func(s string) {
		lines = append(lines, s)
	})
	if !acted || !out.AllSucceeded() {
		t.Fatalf("unpause must be attempted and succeed: %s", out.Summary())
	}
	if !sentContains(tr, protocol.Unpause()) {
		t.Fatalf("unpause command was not sent")
	}
	if len(lines) == 0 {
		t.Fatalf("status callback must receive progress lines")
	}

	// The pause dimension was invalidated, so the next batch read sees
	// the corrected state.
	tr.mu.Lock()
	tr.responses[protocol.KeyPause] = `"off"`
	tr.mu.Unlock()
	snap = eval.ReadAllStatuses(context.Background(), opts)
	if !snap.Ready(opts) {
		t.Fatalf("device must be ready after unpause: %v", snap.BlockingIssues(opts))
	}
}

func TestCorrectorClearsErrors(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	tr.responses[protocol.KeyHostStatus] = `"159,0,0,2030,000,0,0,0,000,0,0,0"`
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	snap := eval.ReadAllStatuses(context.Background(), opts)
	if len(snap.Errors) == 0 {
		t.Fatalf("expected reported errors in snapshot")
	}

	_, acted := corr.Apply(context.Background(), snap, opts, nil)
	if !acted {
		t.Fatalf("clear-errors must be attempted")
	}
	if !sentContains(tr, protocol.CmdClearErrors) {
		t.Fatalf("clear-errors command was not sent")
	}
}

func TestCorrectorFailuresAreIndependent(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	tr.responses[protocol.KeyPause] = `"on"`
	tr.responses[protocol.KeyHostStatus] = `"1,1,0,0,0,0"`
	tr.sendErr = faults.New(faults.CodeConnectionLost, "dropped")
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	snap := eval.ReadAllStatuses(context.Background(), opts)

	out, acted := corr.Apply(context.Background(), snap, opts, nil)
	if acted {
		t.Fatalf("every correction failed, none may report success")
	}
	// Both triggers fired despite the first failure.
	if len(out.Corrections) != 2 {
		t.Fatalf("a failed correction must not abort the rest: %+v", out.Corrections)
	}
	if !out.AnyFailed() {
		t.Fatalf("failures must be recorded")
	}
	for _, rec := range out.Corrections {
		if rec.Error == "" {
			t.Fatalf("failed correction %q must carry its error", rec.Name)
		}
	}
}

func TestCorrectorRetriesWithinBudget(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	tr.responses[protocol.KeyPause] = `"on"`
	tr.sendErr = faults.New(faults.CodeConnectionLost, "dropped")
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	opts.MaxAttempts = 3
	opts.AttemptDelay = time.Millisecond
	// Only the pause trigger is in play.
	opts.FixErrors = false

	snap := eval.ReadAllStatuses(context.Background(), opts)
	out, _ := corr.Apply(context.Background(), snap, opts, nil)
	if len(out.Corrections) != 1 || out.Corrections[0].OK {
		t.Fatalf("expected one failed correction record: %+v", out.Corrections)
	}
}

func TestLanguageSwitchOnMismatch(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	tr.responses[protocol.KeyLanguages] = `"line_print"`
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	opts.FixLanguage = true
	opts.PayloadLanguage = protocol.LanguageZPL

	snap := eval.ReadAllStatuses(context.Background(), opts)
	queriesBefore := tr.queryCount(protocol.KeyLanguages)

	out, acted := corr.Apply(context.Background(), snap, opts, nil)
	if !acted || !out.AllSucceeded() {
		t.Fatalf("language switch must succeed: %s", out.Summary())
	}
	if !sentContains(tr, protocol.SwitchLanguage(protocol.LanguageZPL)) {
		t.Fatalf("switch command was not sent")
	}
	// The current language is re-read fresh, not served from cache.
	if tr.queryCount(protocol.KeyLanguages) != queriesBefore+1 {
		t.Fatalf("language switch must bypass the cache")
	}
}

func TestLanguageSwitchNoOpWhenMatching(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	opts.FixLanguage = true
	opts.PayloadLanguage = protocol.LanguageZPL

	snap := eval.ReadAllStatuses(context.Background(), opts)
	out, acted := corr.Apply(context.Background(), snap, opts, nil)
	if acted || len(out.Corrections) != 0 {
		t.Fatalf("matching language must be a no-op: %+v", out.Corrections)
	}
}

func TestLanguageSwitchOptimisticOnQueryFailure(t *testing.T) {
	log := testlog.Start(t)
	tr := newFakeTransport()
	eval := NewEvaluator(tr, log)
	corr := NewCorrector(tr, eval, log)

	opts := correctionOpts()
	opts.FixLanguage = true
	opts.PayloadLanguage = protocol.LanguageCPCL

	snap := eval.ReadAllStatuses(context.Background(), opts)
	tr.mu.Lock()
	tr.queryErr[protocol.KeyLanguages] = faults.New(faults.CodeStatusQueryFailed, "no reply")
	tr.mu.Unlock()

	out, acted := corr.Apply(context.Background(), snap, opts, nil)
	if acted || len(out.Corrections) != 0 {
		t.Fatalf("undetermined current language must skip the switch: %+v", out.Corrections)
	}
	if sentContains(tr, protocol.SwitchLanguage(protocol.LanguageCPCL)) {
		t.Fatalf("no switch command may be sent on query failure")
	}
}
