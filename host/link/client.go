package link

import (
	"errors"
	"fmt"
	"io"

	"rkws2812/protocol"
)

// Client sends requests to a Server. It is not safe for concurrent use.
type Client struct {
	port io.ReadWriter
	fr   *protocol.FrameReader
	seq  uint8
}

// NewClient talks to a server on port.
func NewClient(port io.ReadWriter) *Client {
	return &Client{
		port: port,
		fr:   protocol.NewFrameReader(port),
		seq:  protocol.MessageDest,
	}
}

// Send writes req and waits for its status reply. Replies to earlier
// sequence numbers and corrupt frames are skipped.
func (c *Client) Send(req protocol.Request) error {
	raw, err := req.MarshalBinary()
	if err != nil {
		return err
	}
	msg, err := protocol.EncodeFrame(c.seq, raw)
	if err != nil {
		return err
	}
	if _, err := c.port.Write(msg); err != nil {
		return fmt.Errorf("failed to write request: %w", err)
	}

	want := c.seq & protocol.MessageSeqMask
	c.seq = protocol.NextSequence(c.seq)
	for {
		f, err := c.fr.ReadFrame()
		if errors.Is(err, protocol.ErrBadFrame) || errors.Is(err, protocol.ErrBadCRC) {
			continue
		}
		if err != nil {
			return fmt.Errorf("no reply: %w", err)
		}
		if f.Sequence != want || len(f.Payload) != 1 {
			continue
		}
		return statusError(f.Payload[0])
	}
}
