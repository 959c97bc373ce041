// Package ipc implements the daemon's local-only request/response
// channel (§4.9): a length-prefixed JSON frame over a Unix domain
// socket, distinct from the Content-Length framing lspwire uses to talk
// to LSP servers over stdio.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dshills/leta/internal/errs"
)

// maxFrameSize guards against a malformed or hostile length prefix
// causing an unbounded allocation.
const maxFrameSize = 64 << 20

// ReadFrame reads one 4-byte big-endian length prefix followed by that
// many bytes of JSON body.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: reading frame length: %v", errs.ErrProtocol, err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("%w: frame length %d exceeds max %d", errs.ErrProtocol, n, maxFrameSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: reading frame body: %v", errs.ErrProtocol, err)
	}
	return body, nil
}

// WriteFrame writes body as one length-prefixed frame.
func WriteFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("%w: writing frame length: %v", errs.ErrIO, err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("%w: writing frame body: %v", errs.ErrIO, err)
	}
	return nil
}
