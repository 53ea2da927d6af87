package readiness

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rubdev/labelctl/internal/protocol"
	"github.com/rubdev/labelctl/internal/protocol/hoststatus"
	"github.com/rubdev/labelctl/internal/transport"
)

// Evaluator lazily queries and caches per-dimension device health. Each
// dimension issues at most one transport query until reset; concurrent
// first accesses coalesce onto a single in-flight request.
type Evaluator struct {
	tr  transport.Transport
	log zerolog.Logger

	mu    sync.Mutex
	cells map[Dimension]*cell
}

type cell struct {
	done    bool
	check   Check
	err     error
	extra   string
	pending chan struct{}
}

func NewEvaluator(tr transport.Transport, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		tr:    tr,
		log:   log.With().Str("component", "readiness").Logger(),
		cells: make(map[Dimension]*cell),
	}
}

// Reset drops one dimension's cached result; the next access re-queries.
func (e *Evaluator) Reset(dim Dimension) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.cells[dim]; ok && c.pending == nil {
		delete(e.cells, dim)
	}
}

// ResetAll drops every settled cached result.
func (e *Evaluator) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for dim, c := range e.cells {
		if c.pending == nil {
			delete(e.cells, dim)
		}
	}
}

// Connection checks transport-level connectivity.
func (e *Evaluator) Connection(ctx context.Context) (Check, error) {
	return e.get(ctx, DimensionConnection, e.fetchConnection)
}

// Media checks media presence.
func (e *Evaluator) Media(ctx context.Context) (Check, error) {
	return e.get(ctx, DimensionMedia, e.fetchMedia)
}

// Head checks the print head latch.
func (e *Evaluator) Head(ctx context.Context) (Check, error) {
	return e.get(ctx, DimensionHead, e.fetchHead)
}

// Pause checks the device pause flag; OK means not paused.
func (e *Evaluator) Pause(ctx context.Context) (Check, error) {
	return e.get(ctx, DimensionPause, e.fetchPause)
}

// HostStatus checks the aggregated host error report.
func (e *Evaluator) HostStatus(ctx context.Context) (Check, error) {
	return e.get(ctx, DimensionHostStatus, e.fetchHostStatus)
}

// Language checks the configured protocol language.
func (e *Evaluator) Language(ctx context.Context) (Check, protocol.Language, error) {
	check, err := e.get(ctx, DimensionLanguage, e.fetchLanguage)
	e.mu.Lock()
	defer e.mu.Unlock()
	lang := protocol.LanguageUnknown
	if c, ok := e.cells[DimensionLanguage]; ok && c.done {
		lang = protocol.Language(c.extra)
	}
	return check, lang, err
}

// ReadAllStatuses eagerly populates every dimension opts configures as
// checked. It is the only entry point permitted to batch-populate.
func (e *Evaluator) ReadAllStatuses(ctx context.Context, opts Options) Readiness {
	for _, dim := range Dimensions {
		if !opts.Checks(dim) {
			continue
		}
		switch dim {
		case DimensionConnection:
			_, _ = e.Connection(ctx)
		case DimensionMedia:
			_, _ = e.Media(ctx)
		case DimensionHead:
			_, _ = e.Head(ctx)
		case DimensionPause:
			_, _ = e.Pause(ctx)
		case DimensionHostStatus:
			_, _ = e.HostStatus(ctx)
		case DimensionLanguage:
			_, _, _ = e.Language(ctx)
		}
	}
	return e.Snapshot()
}

// Snapshot assembles a Readiness from cached state only. Dimensions
// never queried stay unchecked.
func (e *Evaluator) Snapshot() Readiness {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Readiness{CheckedAt: time.Now()}
	for dim, c := range e.cells {
		if !c.done {
			continue
		}
		check := c.check
		switch dim {
		case DimensionConnection:
			snap.Connection = check
		case DimensionMedia:
			snap.Media = check
		case DimensionHead:
			snap.Head = check
		case DimensionPause:
			snap.Pause = check
		case DimensionHostStatus:
			snap.HostStatus = check
		case DimensionLanguage:
			snap.Language = check
			snap.LanguageValue = protocol.Language(c.extra)
		}
		if check.Known && !check.OK && check.Detail != "" {
			snap.Errors = append(snap.Errors, string(dim)+": "+check.Detail)
		}
	}
	return snap
}

// get returns dim's cached result, coalescing concurrent first accesses
// onto one in-flight fetch. A captured transport error is cached exactly
// like a value until reset.
func (e *Evaluator) get(ctx context.Context, dim Dimension, fetch func(context.Context) (Check, string, error)) (Check, error) {
	for {
		e.mu.Lock()
		c, ok := e.cells[dim]
		if !ok {
			c = &cell{}
			e.cells[dim] = c
		}
		if c.done {
			e.mu.Unlock()
			return c.check, c.err
		}
		if c.pending != nil {
			ch := c.pending
			e.mu.Unlock()
			select {
			case <-ch:
				// Re-read; the cell may have been reset meanwhile.
				continue
			case <-ctx.Done():
				return Check{}, ctx.Err()
			}
		}
		ch := make(chan struct{})
		c.pending = ch
		e.mu.Unlock()

		check, extra, err := fetch(ctx)

		e.mu.Lock()
		c.done = true
		c.check = check
		c.err = err
		c.extra = extra
		c.pending = nil
		e.mu.Unlock()
		close(ch)
		return check, err
	}
}

func (e *Evaluator) fetchConnection(ctx context.Context) (Check, string, error) {
	if !e.tr.IsConnected() {
		return bad("not connected"), "", nil
	}
	// Liveness is proven by a harmless round-trip, not just link state.
	if _, err := e.tr.Query(ctx, protocol.KeyFriendly); err != nil {
		e.log.Debug().Err(err).Msg("connection probe failed")
		return bad("probe failed: %v", err), "", err
	}
	return good(), "", nil
}

func (e *Evaluator) fetchMedia(ctx context.Context) (Check, string, error) {
	raw, err := e.tr.Query(ctx, protocol.KeyMediaRaw)
	if err != nil {
		return bad("media query failed: %v", err), "", err
	}
	value := protocol.ParseResponse(raw)
	switch hoststatus.ParseFreeText(value) {
	case hoststatus.ConditionHealthy:
		return good(), "", nil
	case hoststatus.ConditionUnknown:
		return bad("media status %q", value), "", nil
	default:
		return bad("media: %s", value), "", nil
	}
}

func (e *Evaluator) fetchHead(ctx context.Context) (Check, string, error) {
	raw, err := e.tr.Query(ctx, protocol.KeyHeadLatch)
	if err != nil {
		return bad("head query failed: %v", err), "", err
	}
	value := protocol.ParseResponse(raw)
	if hoststatus.ParseFreeText(value) == hoststatus.ConditionHealthy {
		return good(), "", nil
	}
	return bad("head latch %q", value), "", nil
}

func (e *Evaluator) fetchPause(ctx context.Context) (Check, string, error) {
	raw, err := e.tr.Query(ctx, protocol.KeyPause)
	if err != nil {
		return bad("pause query failed: %v", err), "", err
	}
	value := protocol.ParseResponse(raw)
	paused, known := hoststatus.ParseBool(value)
	if !known {
		// Unreadable pause state is treated as not paused.
		return goodDetail("pause state undetermined"), "", nil
	}
	if paused {
		return bad("paused"), "", nil
	}
	return good(), "", nil
}

func (e *Evaluator) fetchHostStatus(ctx context.Context) (Check, string, error) {
	raw, err := e.tr.Query(ctx, protocol.KeyHostStatus)
	if err != nil {
		return bad("host status query failed: %v", err), "", err
	}
	info := hoststatus.Parse(protocol.ParseResponse(raw))
	if info.IsOK {
		return good(), "", nil
	}
	msg := info.Message
	if msg == "" {
		msg = "host status not ok"
	}
	return bad("%s", msg), "", nil
}

func (e *Evaluator) fetchLanguage(ctx context.Context) (Check, string, error) {
	raw, err := e.tr.Query(ctx, protocol.KeyLanguages)
	if err != nil {
		return bad("language query failed: %v", err), "", err
	}
	value := protocol.ParseResponse(raw)
	lang := protocol.NormalizeLanguage(value)
	if lang == protocol.LanguageUnknown {
		return bad("unsupported language %q", value), string(lang), nil
	}
	return goodDetail(value), string(lang), nil
}
