// Package receiver is the application glue around the UBX codec: it owns
// the background read loop, the last-seen record cache, awaited poll
// requests and the NMEA side channel.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/ubxctl/internal/nmea"
	"github.com/danmuck/ubxctl/internal/observability"
	"github.com/danmuck/ubxctl/internal/ubx/frame"
	"github.com/danmuck/ubxctl/internal/ubx/schema"
)

const (
	// MaxNMEALines bounds the recovered-sentence buffer.
	MaxNMEALines = 50
	// MaxErrors bounds the retained read-loop error history.
	MaxErrors = 5
)

type key struct {
	cls string
	msg string
}

// Receiver pairs one byte source with one frame reader and caches the most
// recent record per (class, message) name. The registry is shared read-only;
// all mutable state lives here.
type Receiver struct {
	rw  io.ReadWriter
	reg *schema.Registry
	log zerolog.Logger

	reader *frame.Reader
	lines  *nmea.LineBuffer

	mu       sync.Mutex
	last     map[key]*schema.Record
	waiters  map[key][]chan *schema.Record
	errs     []error
	nmeaSeen uint64
}

// New binds a receiver to a byte source. The registry must be fully built
// before Run starts.
func New(rw io.ReadWriter, reg *schema.Registry, policy frame.Policy, logger zerolog.Logger) *Receiver {
	lines := nmea.NewLineBuffer(MaxNMEALines)
	reader := frame.NewReader(rw, reg, policy)
	reader.SetDiscard(lines)
	return &Receiver{
		rw:      rw,
		reg:     reg,
		log:     logger,
		reader:  reader,
		lines:   lines,
		last:    make(map[key]*schema.Record),
		waiters: make(map[key][]chan *schema.Record),
	}
}

// Run decodes frames until the source closes or the context is cancelled.
// Frame-level errors are retained and logged but do not stop the loop; the
// reader resynchronizes on the next iteration. The loop blocks inside source
// reads, so cancellation is only observed between frames unless the caller
// also closes the source.
func (r *Receiver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		res, err := r.reader.Next()
		r.flushNMEACount()
		if err != nil {
			if errors.Is(err, frame.ErrStreamClosed) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			observability.RecordFrameFailure(failureReason(err))
			r.recordError(err)
			r.log.Warn().Err(err).Msg("frame read failed")
			continue
		}
		if res.Skipped() {
			observability.RecordFrameSkipped(res.ClassID, res.MessageID)
			r.log.Debug().
				Uint8("class_id", res.ClassID).
				Uint8("msg_id", res.MessageID).
				Bool("class_known", res.ClassKnown()).
				Msg("skipped unsupported frame")
			continue
		}

		rec := res.Record
		observability.RecordFrameDecoded(rec.Class, rec.Message, time.Since(start))
		r.log.Debug().
			Str("class", rec.Class).
			Str("message", rec.Message).
			Int("fields", rec.Fields.Len()).
			Msg("decoded frame")
		r.deliver(rec)
	}
}

func (r *Receiver) deliver(rec *schema.Record) {
	k := key{cls: rec.Class, msg: rec.Message}
	r.mu.Lock()
	r.last[k] = rec
	waiting := r.waiters[k]
	delete(r.waiters, k)
	r.mu.Unlock()
	for _, ch := range waiting {
		ch <- rec
	}
}

func (r *Receiver) recordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == MaxErrors {
		copy(r.errs, r.errs[1:])
		r.errs = r.errs[:MaxErrors-1]
	}
	r.errs = append(r.errs, err)
}

func (r *Receiver) flushNMEACount() {
	total := r.lines.Total()
	r.mu.Lock()
	delta := total - r.nmeaSeen
	r.nmeaSeen = total
	r.mu.Unlock()
	if delta > 0 {
		observability.RecordNMEALines(int(delta))
	}
}

func failureReason(err error) string {
	var cksum *frame.ChecksumMismatchError
	var length *schema.LengthMismatchError
	var unknown *schema.UnknownMessageError
	switch {
	case errors.Is(err, frame.ErrTruncated):
		return "truncated"
	case errors.As(err, &cksum):
		return "checksum_mismatch"
	case errors.As(err, &length):
		return "length_mismatch"
	case errors.As(err, &unknown):
		return "unknown_message"
	case errors.Is(err, schema.ErrTruncated):
		return "short_payload"
	default:
		return "decode"
	}
}

// Last returns the most recent record seen for the named message, if any.
func (r *Receiver) Last(cls, msg string) (*schema.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.last[key{cls: cls, msg: msg}]
	return rec, ok
}

// Await blocks until the next record for the named message arrives or the
// context ends.
func (r *Receiver) Await(ctx context.Context, cls, msg string) (*schema.Record, error) {
	k := key{cls: cls, msg: msg}
	return r.wait(ctx, k, r.addWaiter(k))
}

func (r *Receiver) addWaiter(k key) chan *schema.Record {
	ch := make(chan *schema.Record, 1)
	r.mu.Lock()
	r.waiters[k] = append(r.waiters[k], ch)
	r.mu.Unlock()
	return ch
}

func (r *Receiver) wait(ctx context.Context, k key, ch chan *schema.Record) (*schema.Record, error) {
	select {
	case rec := <-ch:
		return rec, nil
	case <-ctx.Done():
		r.dropWaiter(k, ch)
		return nil, ctx.Err()
	}
}

func (r *Receiver) dropWaiter(k key, ch chan *schema.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws := r.waiters[k]
	for i, w := range ws {
		if w == ch {
			r.waiters[k] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

// Request writes a poll frame for the given ids and awaits the matching
// response record. The payload may be nil for a plain poll. The waiter is
// registered before the poll is written so a response decoded while the
// write is still in flight is not lost.
func (r *Receiver) Request(ctx context.Context, classID, msgID uint8, payload []byte) (*schema.Record, error) {
	clsName, msgName, ok := r.reg.Lookup(classID, msgID)
	if !ok {
		return nil, &schema.UnknownMessageError{
			ClassID:    classID,
			MessageID:  msgID,
			ClassKnown: r.reg.ContainsClass(classID),
		}
	}
	k := key{cls: clsName, msg: msgName}
	ch := r.addWaiter(k)
	pkt := frame.EncodePacket(classID, msgID, payload)
	if _, err := r.rw.Write(pkt); err != nil {
		r.dropWaiter(k, ch)
		return nil, fmt.Errorf("receiver: write poll request: %w", err)
	}
	return r.wait(ctx, k, ch)
}

// Errors returns the most recent read-loop errors, oldest first.
func (r *Receiver) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

// NMEALines returns the retained NMEA sentences recovered from bytes the
// frame reader discarded while scanning for sync.
func (r *Receiver) NMEALines() []string {
	return r.lines.Lines()
}
