package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/ubxctl/internal/ubx/schema"
)

// Sync bytes that open every frame.
const (
	Sync1 byte = 0xB5
	Sync2 byte = 0x62
)

const (
	headerLen   = 4 // class id, message id, u16 LE payload length
	checksumLen = 2
)

var (
	ErrStreamClosed = errors.New("frame: stream closed")
	ErrTruncated    = errors.New("frame: truncated stream")
)

// ChecksumMismatchError reports a frame whose received checksum pair does
// not match the pair computed over header and payload.
type ChecksumMismatchError struct {
	WantA, WantB byte
	GotA, GotB   byte
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("frame: checksum mismatch: calculated %02x %02x, received %02x %02x",
		e.WantA, e.WantB, e.GotA, e.GotB)
}

// Policy selects how the reader handles a frame whose id pair has no
// registered schema.
type Policy int

const (
	// Lenient drains the unknown frame and reports it as skipped.
	Lenient Policy = iota
	// Strict fails the call with schema.UnknownMessageError.
	Strict
)

// Result is the outcome of one successful reader call: either a decoded
// record, or (lenient policy only) a skipped unknown frame.
type Result struct {
	ClassID   uint8
	MessageID uint8
	Record    *schema.Record

	skipped    bool
	classKnown bool
}

// Skipped reports whether the frame was drained without decoding.
func (r Result) Skipped() bool { return r.skipped }

// ClassKnown reports, for a skipped frame, whether the class id itself was
// registered and only the message id was not.
func (r Result) ClassKnown() bool { return r.classKnown }

// Checksum computes the 8-bit running-sum pair over the given bytes. For a
// whole frame the input is class id, message id, both length bytes and the
// payload; sync and checksum bytes are excluded.
func Checksum(data []byte) (ckA, ckB byte) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// EncodePacket assembles a complete outgoing frame around the payload.
func EncodePacket(classID, msgID uint8, payload []byte) []byte {
	buf := make([]byte, 0, 2+headerLen+len(payload)+checksumLen)
	buf = append(buf, Sync1, Sync2, classID, msgID)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)
	ckA, ckB := Checksum(buf[2:])
	return append(buf, ckA, ckB)
}

// Reader locates frames in a byte stream, validates their checksums and
// dispatches payloads to the registry. It is synchronous: one Next call
// blocks on the source until a full frame or a definitive error. A failed
// call never corrupts reader state; the next call starts a fresh sync scan,
// naturally skipping garbage.
type Reader struct {
	src     io.Reader
	reg     *schema.Registry
	policy  Policy
	discard io.Writer

	one [1]byte
}

// NewReader binds a reader to one byte source. The registry must be fully
// built before the first Next call and is never mutated here.
func NewReader(src io.Reader, reg *schema.Registry, policy Policy) *Reader {
	return &Reader{src: src, reg: reg, policy: policy}
}

// SetDiscard mirrors every byte dropped during the sync scan to w. The
// receiver uses this to recover interleaved NMEA traffic. Write errors on w
// are ignored.
func (r *Reader) SetDiscard(w io.Writer) {
	r.discard = w
}

// Next reads and decodes one frame.
func (r *Reader) Next() (Result, error) {
	if err := r.seekSync(); err != nil {
		return Result{}, err
	}

	var header [headerLen]byte
	if err := r.readFull(header[:]); err != nil {
		return Result{}, err
	}
	classID := header[0]
	msgID := header[1]
	length := int(binary.LittleEndian.Uint16(header[2:4]))

	// Unsupported ids are handled before the payload is consumed.
	if !r.reg.Contains(classID, msgID) {
		if r.policy == Strict {
			return Result{}, &schema.UnknownMessageError{
				ClassID:    classID,
				MessageID:  msgID,
				ClassKnown: r.reg.ContainsClass(classID),
			}
		}
		if err := r.drain(length + checksumLen); err != nil {
			return Result{}, err
		}
		return Result{
			ClassID:    classID,
			MessageID:  msgID,
			skipped:    true,
			classKnown: r.reg.ContainsClass(classID),
		}, nil
	}

	payload := make([]byte, length)
	if err := r.readFull(payload); err != nil {
		return Result{}, err
	}

	var sum [checksumLen]byte
	if err := r.readFull(sum[:]); err != nil {
		return Result{}, err
	}

	wantA, wantB := Checksum(header[:])
	for _, b := range payload {
		wantA += b
		wantB += wantA
	}
	if wantA != sum[0] || wantB != sum[1] {
		return Result{}, &ChecksumMismatchError{WantA: wantA, WantB: wantB, GotA: sum[0], GotB: sum[1]}
	}

	rec, err := r.reg.Decode(classID, msgID, payload)
	if err != nil {
		return Result{}, err
	}
	return Result{ClassID: classID, MessageID: msgID, Record: rec}, nil
}

// seekSync consumes bytes one at a time until the last two equal the sync
// pair.
func (r *Reader) seekSync() error {
	var prev byte
	havePrev := false
	for {
		b, err := r.readByte()
		if err != nil {
			return err
		}
		if havePrev && prev == Sync1 && b == Sync2 {
			return nil
		}
		if havePrev && r.discard != nil {
			// prev cannot open the sync pair anymore, so it is garbage.
			r.discard.Write([]byte{prev})
		}
		prev = b
		havePrev = true
	}
}

func (r *Reader) readByte() (byte, error) {
	for {
		n, err := r.src.Read(r.one[:])
		if n == 1 {
			return r.one[0], nil
		}
		if err != nil {
			return 0, ErrStreamClosed
		}
	}
}

func (r *Reader) readFull(buf []byte) error {
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return ErrTruncated
	}
	return nil
}

func (r *Reader) drain(n int) error {
	if _, err := io.CopyN(io.Discard, r.src, int64(n)); err != nil {
		return ErrTruncated
	}
	return nil
}
