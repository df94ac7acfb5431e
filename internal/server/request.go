// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package server

import (
	"errors"
	"io"
	"math/big"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/binding"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// body holds the decoded documents of a request and its content stream,
// if any. The content is not buffered: it reads straight from the request.
type body struct {
	docs    map[string]any
	content *cmis.ContentStream
}

// takeContent hands the content stream over to the caller, who closes it.
func (b *body) takeContent() *cmis.ContentStream {
	cs := b.content
	b.content = nil
	return cs
}

func (b *body) close() {
	if b.content != nil {
		_ = b.content.Close()
	}
}

func (op *operation) part(name string) (partSpec, bool) {
	for _, p := range op.parts {
		if p.name == name {
			return p, true
		}
	}
	return partSpec{}, false
}

// readBody decodes the body of a write request. A multipart body carries
// named documents followed by the content part; any other body is either
// the first document the operation accepts or its content.
func readBody(x *exchange, op *operation) (*body, error) {
	b := &body{docs: map[string]any{}}
	if x.r.Method != http.MethodPost || (len(op.parts) == 0 && !op.content) {
		return b, nil
	}

	contentType := x.r.Header.Get("Content-Type")
	mediaType, params, _ := mime.ParseMediaType(contentType)
	if mediaType == "multipart/form-data" {
		return b, readParts(x, op, b, multipart.NewReader(x.r.Body, params["boundary"]))
	}

	if len(op.parts) > 0 {
		if x.r.ContentLength == 0 {
			return b, nil
		}
		spec := op.parts[0]
		value, err := decodePart(x, x.r.Body, spec)
		if err != nil {
			return b, err
		}
		b.docs[spec.name] = value
		return b, nil
	}

	b.content = &cmis.ContentStream{
		Filename: x.q.String(binding.ParamFilename),
		MimeType: contentType,
		Stream:   x.r.Body,
	}
	if x.r.ContentLength >= 0 {
		b.content.Length = big.NewInt(x.r.ContentLength)
	}
	return b, nil
}

// readParts decodes document parts until the content part, which must
// come last and is left unread.
func readParts(x *exchange, op *operation, b *body, mr *multipart.Reader) error {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return invalidArgument("malformed multipart body: %v", err)
		}
		name := part.FormName()
		if name == binding.PartContent {
			if !op.content {
				return invalidArgument("operation does not accept content")
			}
			b.content = &cmis.ContentStream{
				Filename: part.FileName(),
				MimeType: part.Header.Get("Content-Type"),
				Stream:   part,
			}
			return nil
		}
		spec, ok := op.part(name)
		if !ok {
			return invalidArgument("unexpected part %q", name)
		}
		value, err := decodePart(x, part, spec)
		if err != nil {
			return err
		}
		b.docs[name] = value
	}
}

func decodePart(x *exchange, r io.Reader, spec partSpec) (any, error) {
	value, err := binding.Transport(x.codec).Decode(r, x.version, spec.kind)
	if err != nil {
		return nil, oops.With("part", spec.name).With("format", x.codec.Name()).Wrap(err)
	}
	return value, nil
}

