// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/internal/jsonconv"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// Defaults of an HTTPPort.
const (
	DefaultRetries = 3
	DefaultBackoff = 100 * time.Millisecond
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPPort is a Port speaking the endpoint protocol over HTTP.
type HTTPPort struct {
	base    *url.URL
	client  *http.Client
	codec   codec.Codec
	version cmis.Version
	retries uint64
	backoff time.Duration
}

// HTTPOption configures an HTTPPort.
type HTTPOption func(*HTTPPort)

// WithHTTPClient sets the client requests are sent with.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPPort) {
		p.client = c
	}
}

// WithCodec sets the wire format. The default is JSON.
func WithCodec(c codec.Codec) HTTPOption {
	return func(p *HTTPPort) {
		p.codec = c
	}
}

// WithVersion sets the CMIS version requested from the endpoint.
func WithVersion(v cmis.Version) HTTPOption {
	return func(p *HTTPPort) {
		p.version = v
	}
}

// WithRetries sets how often a transport failure is retried and the base
// of the exponential backoff between attempts. Zero retries disables
// retrying.
func WithRetries(retries uint64, backoff time.Duration) HTTPOption {
	return func(p *HTTPPort) {
		p.retries = retries
		p.backoff = backoff
	}
}

// NewHTTPPort returns a port for the endpoint at baseURL.
func NewHTTPPort(baseURL string, opts ...HTTPOption) (*HTTPPort, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, oops.Code(CodeBadRequest).With("url", baseURL).Errorf("invalid endpoint url %q", baseURL)
	}
	p := &HTTPPort{
		base:    base,
		client:  http.DefaultClient,
		codec:   jsonconv.New(),
		version: cmis.Version11,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Version returns the CMIS version the port requests.
func (p *HTTPPort) Version() cmis.Version {
	return p.version
}

// Call implements [Port]. Transport failures are retried with exponential
// backoff unless the request streams content, which cannot be replayed.
func (p *HTTPPort) Call(ctx context.Context, req *Request) (*Response, error) {
	target := p.url(req)
	if req.Content != nil || p.retries == 0 {
		return p.do(ctx, req, target)
	}
	b := retry.WithMaxRetries(p.retries, retry.NewExponential(p.backoff))
	return retry.DoValue(ctx, b, func(ctx context.Context) (*Response, error) {
		resp, err := p.do(ctx, req, target)
		var te *TransportError
		if errors.As(err, &te) {
			return nil, retry.RetryableError(err)
		}
		return resp, err
	})
}

func (p *HTTPPort) url(req *Request) string {
	u := *p.base
	u.Path = strings.TrimSuffix(u.Path, "/") + BasePath + "/" + url.PathEscape(req.RepositoryID)
	if req.Object {
		u.Path += "/" + ObjectPath
	}
	q := url.Values{}
	for k, vs := range req.Params {
		q[k] = vs
	}
	setString(q, ParamSelector, req.Selector)
	setString(q, ParamAction, req.Action)
	q.Set(ParamFormat, p.codec.Name())
	q.Set(ParamVersion, string(p.version))
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *HTTPPort) do(ctx context.Context, req *Request, target string) (*Response, error) {
	method := http.MethodGet
	if req.Action != "" {
		method = http.MethodPost
	}
	body, contentType, err := p.body(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, oops.Code(CodeBadRequest).Wrapf(err, "build request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if n, ok := req.Content.KnownLength(); ok && len(req.Parts) == 0 {
		httpReq.ContentLength = n
	}
	httpReq.Header.Set("Accept", p.codec.ContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, p.failure(method, target, resp)
	}
	if req.Selector == SelectorContent {
		return &Response{Content: contentFrom(resp)}, nil
	}
	defer resp.Body.Close()
	if req.Result == "" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Response{}, nil
	}
	value, err := Transport(p.codec).Decode(resp.Body, p.version, req.Result)
	if err != nil {
		return nil, oops.Code(CodeBadResponse).With("kind", string(req.Result)).Wrapf(err, "decode %s response", req.Result)
	}
	return &Response{Value: value}, nil
}

// body builds the request body. A single part or bare content is sent as
// is; anything more becomes a multipart form streamed through a pipe.
func (p *HTTPPort) body(req *Request) (io.Reader, string, error) {
	wire := Transport(p.codec)
	switch {
	case len(req.Parts) == 0 && req.Content == nil:
		return nil, "", nil
	case len(req.Parts) == 0:
		return req.Content.Stream, req.Content.MimeType, nil
	case len(req.Parts) == 1 && req.Content == nil:
		var buf bytes.Buffer
		if err := wire.Encode(&buf, p.version, req.Parts[0].Value); err != nil {
			return nil, "", err
		}
		return &buf, p.codec.ContentType(), nil
	}

	// Encode the documents up front so encode failures are reported
	// before anything is sent.
	docs := make([][]byte, len(req.Parts))
	for i, part := range req.Parts {
		var buf bytes.Buffer
		if err := wire.Encode(&buf, p.version, part.Value); err != nil {
			return nil, "", err
		}
		docs[i] = buf.Bytes()
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeParts(mw, req, docs, p.codec.ContentType()))
	}()
	return pr, mw.FormDataContentType(), nil
}

func writeParts(mw *multipart.Writer, req *Request, docs [][]byte, contentType string) error {
	for i, part := range req.Parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": part.Name}))
		h.Set("Content-Type", contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := w.Write(docs[i]); err != nil {
			return err
		}
	}
	if cs := req.Content; cs != nil {
		defer cs.Close()
		params := map[string]string{"name": PartContent}
		if cs.Filename != "" {
			params["filename"] = cs.Filename
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", params))
		h.Set("Content-Type", orDefault(cs.MimeType, "application/octet-stream"))
		w, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if cs.Stream != nil {
			if _, err := io.Copy(w, cs.Stream); err != nil {
				return err
			}
		}
	}
	return mw.Close()
}

// failure turns an error response into the service error it reports.
// Gateway answers without an error body are transport errors.
func (p *HTTPPort) failure(method, target string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/json":
		var body ErrorBody
		if err := json.Unmarshal(data, &body); err == nil && body.Exception != "" {
			return body.Err()
		}
	case strings.HasSuffix(mediaType, "/xml") && len(data) > 0:
		_, err := soapCodec{}.Decode(bytes.NewReader(data), p.version, codec.KindObject)
		if _, ok := cmis.AsServiceError(err); ok {
			return err
		}
	}
	if retryableStatus(resp.StatusCode) {
		return &TransportError{Method: method, URL: target, Status: resp.StatusCode}
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return cmis.NewServiceError(kindForStatus(resp.StatusCode), message, int64(resp.StatusCode))
}

// contentFrom wraps a content response. The body stays open and is closed
// with the returned stream.
func contentFrom(resp *http.Response) *cmis.ContentStream {
	cs := &cmis.ContentStream{
		MimeType: resp.Header.Get("Content-Type"),
		Stream:   resp.Body,
	}
	if resp.ContentLength >= 0 {
		cs.Length = big.NewInt(resp.ContentLength)
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		cs.Filename = params["filename"]
	}
	return cs
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// String describes the port for logs.
func (p *HTTPPort) String() string {
	return fmt.Sprintf("%s (%s, CMIS %s)", p.base, p.codec.Name(), p.version)
}
