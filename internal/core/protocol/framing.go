package protocol

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/elyria/elyria/pkg/generic"
)

const (
	// HeaderSize is the length prefix preceding every payload.
	HeaderSize = 4
	// MaxMessageSize is the default payload limit enforced by decoders.
	MaxMessageSize = 1 << 20
)

// framePoolWarm buffers are allocated up front for the first broadcasts.
const framePoolWarm = 16

var framePool = generic.NewHotPool(func() *bytes.Buffer {
	return bytes.NewBuffer(make([]byte, 0, 512))
}, framePoolWarm)

// AppendFrame appends the framed form of msg (big-endian u32 length, then the
// JSON payload) to dst.
func AppendFrame(dst []byte, msg Message) ([]byte, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return dst, err
	}
	if len(payload) > MaxMessageSize {
		return dst, NewProtocolError(ErrorCodeFrameTooLarge, "frame too large",
			fmt.Errorf("%d bytes exceeds %d", len(payload), MaxMessageSize))
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

// Frame serializes msg once so the same bytes can be written to many peers.
func Frame(msg Message) ([]byte, error) {
	return AppendFrame(nil, msg)
}

// Encoder writes framed messages to a stream. Each frame goes out in a single
// Write call; concurrent Encode calls are serialized.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode frames and writes msg. Write failures are reported as
// ErrConnectionClosed.
func (e *Encoder) Encode(msg Message) error {
	buf := framePool.Get()
	defer func() {
		buf.Reset()
		framePool.Put(buf)
	}()

	frame, err := AppendFrame(buf.AvailableBuffer(), msg)
	if err != nil {
		return err
	}
	return e.WriteFrame(frame)
}

// WriteFrame writes an already framed message.
func (e *Encoder) WriteFrame(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(frame); err != nil {
		return NewProtocolError(ErrorCodeConnectionClosed, "write failed", err)
	}
	return nil
}

// Decoder reads framed messages from a stream. It is not safe for concurrent use.
type Decoder struct {
	r       *bufio.Reader
	maxSize uint32
	header  [HeaderSize]byte
}

func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderSize(r, MaxMessageSize)
}

// NewDecoderSize builds a decoder rejecting payloads above maxSize bytes.
// A non-positive maxSize selects MaxMessageSize.
func NewDecoderSize(r io.Reader, maxSize int) *Decoder {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}
	return &Decoder{r: bufio.NewReader(r), maxSize: uint32(maxSize)}
}

// Decode reads the next message.
//
// End of stream (or any read failure) while reading the prefix, a zero length,
// and a truncated payload all mean the peer is gone: ErrConnectionClosed. A
// length above the limit is ErrMalformed. A payload that is not a JSON object
// of strings is ErrMalformed as well.
func (d *Decoder) Decode() (Message, error) {
	if _, err := io.ReadFull(d.r, d.header[:]); err != nil {
		return nil, closedBy("failed to read message length", err)
	}

	length := binary.BigEndian.Uint32(d.header[:])
	if length == 0 {
		return nil, NewProtocolError(ErrorCodeConnectionClosed, "zero-length frame", nil)
	}
	if length > d.maxSize {
		return nil, NewProtocolError(ErrorCodeFrameTooLarge, "frame too large",
			fmt.Errorf("%d bytes exceeds %d", length, d.maxSize))
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return nil, closedBy("failed to read message data", err)
	}
	return Unmarshal(payload)
}

func closedBy(message string, err error) *Error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		message += " (truncated)"
	}
	return NewProtocolError(ErrorCodeConnectionClosed, message, err)
}
