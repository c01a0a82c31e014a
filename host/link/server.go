package link

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"rkws2812/protocol"
)

// Server reads request frames from a port and writes them to a device.
type Server struct {
	port io.ReadWriter
	dev  io.Writer
	log  *zap.Logger
}

// NewServer serves requests from port onto dev. A nil logger discards logs.
func NewServer(port io.ReadWriter, dev io.Writer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{port: port, dev: dev, log: log}
}

// Serve handles frames until the port reaches EOF or fails, or ctx is done.
// A blocked read only notices ctx once the port returns, so callers should
// close the port on cancellation.
func (s *Server) Serve(ctx context.Context) error {
	fr := protocol.NewFrameReader(s.port)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := fr.ReadFrame()
		switch {
		case errors.Is(err, protocol.ErrBadFrame), errors.Is(err, protocol.ErrBadCRC):
			s.log.Warn("dropped frame", zap.Error(err))
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		_, werr := s.dev.Write(f.Payload)
		status := StatusFor(werr)
		if werr != nil {
			s.log.Warn("request failed", zap.Uint8("seq", f.Sequence), zap.Error(werr))
		} else {
			s.log.Debug("request done", zap.Uint8("seq", f.Sequence))
		}

		reply, err := protocol.EncodeFrame(f.Sequence&protocol.MessageSeqMask, []byte{status})
		if err != nil {
			return err
		}
		if _, err := s.port.Write(reply); err != nil {
			return err
		}
	}
}
