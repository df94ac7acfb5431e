// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package cmis

import (
	"io"
	"math/big"
)

// ContentStream is the content of a document. Stream is consumed at most
// once by whoever receives the value; the receiver closes it.
type ContentStream struct {
	ExtensionHolder
	Filename string
	MimeType string
	// Length is nil when the size is not known in advance.
	Length *big.Int
	Stream io.ReadCloser
}

// KnownLength returns the length as int64 when it is known and fits.
func (cs *ContentStream) KnownLength() (int64, bool) {
	if cs == nil || cs.Length == nil || !cs.Length.IsInt64() {
		return 0, false
	}
	return cs.Length.Int64(), true
}

// Close releases the underlying stream, if any.
func (cs *ContentStream) Close() error {
	if cs == nil || cs.Stream == nil {
		return nil
	}
	return cs.Stream.Close()
}

// NewContentStream wraps r as a content stream. A negative length means
// unknown.
func NewContentStream(filename, mimeType string, r io.Reader, length int64) *ContentStream {
	cs := &ContentStream{Filename: filename, MimeType: mimeType, Stream: io.NopCloser(r)}
	if rc, ok := r.(io.ReadCloser); ok {
		cs.Stream = rc
	}
	if length >= 0 {
		cs.Length = big.NewInt(length)
	}
	return cs
}
