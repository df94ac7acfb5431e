// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

// Package binding is the client side of the CMIS bindings: typed service
// errors for faults, the Port abstraction over a transport, an HTTP port
// that speaks the endpoint protocol of internal/server, and thin service
// proxies that turn CMIS service calls into port requests.
package binding

import (
	"context"
	"io"
	"net/url"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/wsconv"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Request is one service call as seen by a transport.
type Request struct {
	RepositoryID string
	// Object addresses the object URL of the repository instead of the
	// repository URL.
	Object bool
	// Selector names a read request; Action names a write request.
	Selector string
	Action   string
	Params   url.Values
	// Parts are data objects sent in the request body, in order.
	Parts []Part
	// Content is streamed after the parts. It is closed by the port.
	Content *cmis.ContentStream
	// Result is the kind of the document expected back, or empty when the
	// response carries content or nothing.
	Result codec.Kind
}

// Part is one data object of a request body.
type Part struct {
	Name  string
	Kind  codec.Kind
	Value any
}

// Response is the answer to a Request: a decoded document of the
// requested kind or, for content requests, the content stream.
type Response struct {
	Value   any
	Content *cmis.ContentStream
}

// Port carries service calls to an endpoint. Implementations are safe for
// concurrent use.
type Port interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// PortFunc adapts a function to the Port interface.
type PortFunc func(ctx context.Context, req *Request) (*Response, error)

// Call implements [Port].
func (f PortFunc) Call(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Transport returns the codec used on the wire for documents of format c.
// Web Services documents travel inside SOAP envelopes; every other format
// is sent as is.
func Transport(c codec.Codec) codec.Codec {
	if c.Name() == wsconv.New().Name() {
		return soapCodec{c}
	}
	return c
}

// soapCodec wraps and unwraps Web Services documents in SOAP envelopes.
// Fault envelopes decode to the service error they carry.
type soapCodec struct {
	codec.Codec
}

func (soapCodec) Encode(w io.Writer, v cmis.Version, value any) error {
	return wsconv.EncodeEnvelope(w, v, value)
}

func (soapCodec) Decode(r io.Reader, v cmis.Version, k codec.Kind, opts ...codec.DecodeOption) (any, error) {
	return wsconv.DecodeEnvelope(r, v, k, opts...)
}
