// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package inmemory

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"math/big"

	"github.com/klauspost/compress/zstd"
	"github.com/samber/oops"
	"github.com/zeebo/blake3"

	"github.com/gocmis/gocmis/pkg/cmis"
)

// Hash algorithm names used in cmis:contentStreamHash values.
const (
	HashSHA256 = "sha-256"
	HashBLAKE3 = "blake3"
)

// zstdEncoder and zstdDecoder are shared by every repository; both are
// safe for concurrent EncodeAll and DecodeAll calls.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("inmemory: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("inmemory: zstd decoder initialization failed: " + err.Error())
	}
}

// blob is an immutable stored content stream. Versions and working copies
// share blobs.
type blob struct {
	data       []byte
	compressed bool
	length     int64
	mimeType   string
	filename   string
	sha256     string
	blake3     string
}

// storeContent reads cs to the end and closes it. The data is kept
// compressed when compress is set and compression actually saves space.
func storeContent(cs *cmis.ContentStream, compress bool) (*blob, error) {
	defer cs.Close()

	b := &blob{
		mimeType: cs.MimeType,
		filename: cs.Filename,
	}
	if b.mimeType == "" {
		b.mimeType = "application/octet-stream"
	}
	if cs.Stream == nil {
		return b.hashed(nil), nil
	}
	data, err := io.ReadAll(cs.Stream)
	if err != nil {
		return nil, fault(cmis.ErrorKindStorage, "read content stream: %v", err)
	}
	if n, ok := cs.KnownLength(); ok && n != int64(len(data)) {
		return nil, invalidArgument("content stream announced %d bytes but carried %d", n, len(data))
	}
	b.hashed(data)
	if compress {
		if packed := zstdEncoder.EncodeAll(data, nil); len(packed) < len(data) {
			b.data, b.compressed = packed, true
			return b, nil
		}
	}
	b.data = data
	return b, nil
}

func (b *blob) hashed(data []byte) *blob {
	s := sha256.Sum256(data)
	k := blake3.Sum256(data)
	b.length = int64(len(data))
	b.sha256 = hex.EncodeToString(s[:])
	b.blake3 = hex.EncodeToString(k[:])
	return b
}

// bytes returns the uncompressed content.
func (b *blob) bytes() ([]byte, error) {
	if !b.compressed {
		return b.data, nil
	}
	data, err := zstdDecoder.DecodeAll(b.data, make([]byte, 0, b.length))
	if err != nil {
		return nil, oops.Wrapf(err, "decompress content")
	}
	return data, nil
}

// stream opens the content for reading.
func (b *blob) stream() (*cmis.ContentStream, error) {
	data, err := b.bytes()
	if err != nil {
		return nil, fault(cmis.ErrorKindStorage, "%v", err)
	}
	return &cmis.ContentStream{
		Filename: b.filename,
		MimeType: b.mimeType,
		Length:   big.NewInt(b.length),
		Stream:   io.NopCloser(bytes.NewReader(data)),
	}, nil
}

// hashes returns the cmis:contentStreamHash values of the blob.
func (b *blob) hashes() []string {
	return []string{
		"{" + HashSHA256 + "}" + b.sha256,
		"{" + HashBLAKE3 + "}" + b.blake3,
	}
}
