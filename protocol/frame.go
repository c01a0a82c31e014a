package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Frame layout, borrowed from the Klipper message block:
// len, seq, payload..., crc16-hi, crc16-lo, sync
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	MessageSeqMask = 0x0F
	MessageDest    = 0x10 // Requests carry 0x10-0x1F, replies 0x00-0x0F
)

// Reply status codes
const (
	StatusOK      byte = 0
	StatusInvalid byte = 1 // Request failed validation
	StatusBusy    byte = 2 // Device held by another session
	StatusIOError byte = 3 // Register mapping failed
)

var (
	ErrBadFrame = errors.New("malformed frame")
	ErrBadCRC   = errors.New("frame crc mismatch")
)

// Frame is one decoded message block.
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// EncodeFrame builds a complete message block around payload.
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	msgLen := MessageHeaderSize + len(payload) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrBadFrame, msgLen, MessageLengthMax)
	}
	buf := make([]byte, 0, msgLen)
	buf = append(buf, byte(msgLen), seq)
	buf = append(buf, payload...)
	crc := CRC16(buf)
	buf = append(buf, byte(crc>>8), byte(crc), MessageValueSync)
	return buf, nil
}

// NextSequence advances a sequence number within its 16 slot window, keeping
// the destination nibble.
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | (seq &^ MessageSeqMask)
}

// FrameReader pulls frames off a byte stream. After a bad frame it drops
// bytes up to the next sync byte before trying again.
type FrameReader struct {
	r            io.Reader
	buf          []byte
	scratch      [MessageLengthMax]byte
	synchronized bool
}

// NewFrameReader wraps r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, synchronized: true}
}

// ReadFrame blocks until a full frame is available. Frames that fail length
// or CRC checks are reported as ErrBadFrame or ErrBadCRC; the caller may keep
// reading afterwards.
func (f *FrameReader) ReadFrame() (Frame, error) {
	for {
		frame, ok, err := f.parse()
		if ok || err != nil {
			return frame, err
		}
		n, err := f.r.Read(f.scratch[:])
		f.buf = append(f.buf, f.scratch[:n]...)
		if err != nil {
			if n > 0 && err == io.EOF {
				continue
			}
			return Frame{}, err
		}
	}
}

// parse consumes at most one frame from the pending buffer.
func (f *FrameReader) parse() (Frame, bool, error) {
	for len(f.buf) > 0 {
		if !f.synchronized {
			i := indexSync(f.buf)
			if i < 0 {
				f.buf = f.buf[:0]
				return Frame{}, false, nil
			}
			f.buf = f.buf[i+1:]
			f.synchronized = true
			continue
		}
		if f.buf[0] == MessageValueSync {
			f.buf = f.buf[1:]
			continue
		}
		if len(f.buf) < MessageLengthMin {
			return Frame{}, false, nil
		}
		msgLen := int(f.buf[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			f.synchronized = false
			return Frame{}, false, fmt.Errorf("%w: length %d", ErrBadFrame, msgLen)
		}
		if len(f.buf) < msgLen {
			return Frame{}, false, nil
		}
		if f.buf[msgLen-MessageTrailerSync] != MessageValueSync {
			f.synchronized = false
			return Frame{}, false, fmt.Errorf("%w: missing sync byte", ErrBadFrame)
		}
		frameCRC := uint16(f.buf[msgLen-MessageTrailerCRC])<<8 |
			uint16(f.buf[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(f.buf[:msgLen-MessageTrailerSize]) {
			f.buf = f.buf[msgLen:]
			return Frame{}, false, ErrBadCRC
		}
		frame := Frame{
			Sequence: f.buf[MessagePositionSeq],
			Payload:  append([]byte(nil), f.buf[MessageHeaderSize:msgLen-MessageTrailerSize]...),
		}
		f.buf = f.buf[msgLen:]
		return frame, true, nil
	}
	return Frame{}, false, nil
}

func indexSync(b []byte) int {
	for i, c := range b {
		if c == MessageValueSync {
			return i
		}
	}
	return -1
}
