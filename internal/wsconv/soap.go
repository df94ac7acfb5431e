// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GoCMIS Contributors

package wsconv

import (
	"bytes"
	"encoding/xml"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/gocmis/gocmis/internal/codec"
	"github.com/gocmis/gocmis/pkg/cmis"
)

// NamespaceSOAP is the SOAP 1.1 envelope namespace.
const NamespaceSOAP = "http://schemas.xmlsoap.org/soap/envelope/"

// SOAP fault codes.
const (
	FaultCodeClient = "soapenv:Client"
	FaultCodeServer = "soapenv:Server"
)

type soapEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    soapBody `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type soapBody struct {
	Content []byte `xml:",innerxml"`
}

type soapFault struct {
	XMLName xml.Name     `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	NS      string       `xml:"xmlns:soapenv,attr,omitempty"`
	Code    string       `xml:"faultcode"`
	String  string       `xml:"faultstring"`
	Detail  *faultDetail `xml:"detail"`
}

type faultDetail struct {
	Fault *cmisFault   `xml:"http://docs.oasis-open.org/ns/cmis/messaging/200908/ cmisFault"`
	Any   []anyElement `xml:",any"`
}

type cmisFault struct {
	Type    string       `xml:"type"`
	Code    string       `xml:"code"`
	Message string       `xml:"message"`
	Any     []anyElement `xml:",any"`
}

// EncodeEnvelope writes value as the body of a SOAP 1.1 envelope.
func EncodeEnvelope(w io.Writer, v cmis.Version, value any) error {
	var body bytes.Buffer
	if err := New().Encode(&body, v, value); err != nil {
		return err
	}
	return marshalEnvelope(w, body.Bytes())
}

// EncodeFault writes err as a SOAP fault carrying a cmisFault detail.
// Errors that are not service errors are reported as runtime faults.
func EncodeFault(w io.Writer, err error) error {
	kind, message, code := cmis.ErrorKindRuntime, err.Error(), int64(0)
	if se, ok := cmis.AsServiceError(err); ok {
		kind, message, code = se.Kind, se.Message, se.Code
	}
	fault := soapFault{
		NS:     NamespaceSOAP,
		Code:   faultCode(kind),
		String: message,
		Detail: &faultDetail{Fault: &cmisFault{
			Type:    string(kind),
			Code:    strconv.FormatInt(code, 10),
			Message: message,
		}},
	}
	var body bytes.Buffer
	if err := xml.NewEncoder(&body).Encode(fault); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "marshal fault")
	}
	return marshalEnvelope(w, body.Bytes())
}

// faultCode blames the server for runtime and storage faults and the
// client for everything else.
func faultCode(kind cmis.ErrorKind) string {
	switch kind {
	case cmis.ErrorKindRuntime, cmis.ErrorKindStorage:
		return FaultCodeServer
	}
	return FaultCodeClient
}

func marshalEnvelope(w io.Writer, body []byte) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "write xml header")
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(soapEnvelope{Body: soapBody{Content: body}}); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "marshal envelope")
	}
	if err := enc.Flush(); err != nil {
		return oops.Code(CodeWrite).Wrapf(err, "flush envelope")
	}
	return nil
}

// DecodeEnvelope reads a SOAP 1.1 envelope whose body holds one document
// of kind k. A fault body is returned as the typed service error it
// describes.
func DecodeEnvelope(r io.Reader, v cmis.Version, k codec.Kind, opts ...codec.DecodeOption) (any, error) {
	content, name, err := envelopeBody(r)
	if err != nil {
		return nil, err
	}
	if name.Space == NamespaceSOAP && name.Local == "Fault" {
		return nil, decodeFault(content)
	}
	return New().Decode(bytes.NewReader(content), v, k, opts...)
}

// envelopeBody returns the first element of the SOAP body serialized on
// its own. Names are written fully qualified, so prefixes declared on the
// envelope are not needed to read it.
func envelopeBody(r io.Reader) ([]byte, xml.Name, error) {
	dec := xml.NewDecoder(r)
	start, err := documentElement(dec)
	if err != nil {
		return nil, xml.Name{}, err
	}
	if start.Name.Space != NamespaceSOAP || start.Name.Local != "Envelope" {
		return nil, xml.Name{}, cmis.MalformedInput("/"+start.Name.Local, "expected a SOAP 1.1 envelope")
	}
	path := "/Envelope"
	inBody := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, xml.Name{}, syntaxError(path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if inBody {
				var buf bytes.Buffer
				if err := copyElement(dec, xml.NewEncoder(&buf), t); err != nil {
					return nil, xml.Name{}, err
				}
				return buf.Bytes(), t.Name, nil
			}
			if t.Name.Space == NamespaceSOAP && t.Name.Local == "Body" {
				inBody, path = true, path+"/Body"
				continue
			}
			if err := dec.Skip(); err != nil {
				return nil, xml.Name{}, syntaxError(path, err)
			}
		case xml.EndElement:
			if inBody {
				return nil, xml.Name{}, cmis.MalformedInput(path, "empty body")
			}
			return nil, xml.Name{}, cmis.MalformedInput(path, "envelope has no Body")
		}
	}
}

// copyElement re-encodes start and everything up to its end element.
// Namespace declarations are dropped because the encoder writes its own;
// unqualified elements get an explicit empty default namespace.
func copyElement(dec *xml.Decoder, enc *xml.Encoder, start xml.StartElement) error {
	depth := 0
	var tok xml.Token = start
	for {
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := slices.DeleteFunc(slices.Clone(t.Attr), isNamespaceDecl)
			if t.Name.Space == "" {
				attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns"}})
			}
			t.Attr = attrs
			tok = t
			depth++
		case xml.EndElement:
			depth--
		case xml.ProcInst, xml.Directive:
			tok = nil
		}
		if tok != nil {
			if err := enc.EncodeToken(tok); err != nil {
				return cmis.MalformedInput("/Envelope/Body", "%v", err)
			}
		}
		if depth == 0 {
			if err := enc.Flush(); err != nil {
				return oops.Code(CodeWrite).Wrapf(err, "flush body")
			}
			return nil
		}
		var err error
		if tok, err = dec.Token(); err != nil {
			return syntaxError("/Envelope/Body", err)
		}
	}
}

func isNamespaceDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// decodeFault maps a SOAP fault to a typed service error. Faults without
// a cmisFault detail become runtime errors carrying the fault string.
func decodeFault(content []byte) error {
	var fault soapFault
	if err := xml.NewDecoder(bytes.NewReader(content)).Decode(&fault); err != nil {
		return syntaxError("/Envelope/Body/Fault", err)
	}
	if fault.Detail == nil || fault.Detail.Fault == nil {
		return cmis.NewServiceError(cmis.ErrorKindRuntime, fault.String, 0)
	}
	cf := fault.Detail.Fault
	var code int64
	if s := strings.TrimSpace(cf.Code); s != "" {
		c, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return cmis.MalformedInput("/Envelope/Body/Fault/detail/cmisFault/code", "invalid fault code %q", cf.Code)
		}
		code = c
	}
	message := cf.Message
	if message == "" {
		message = fault.String
	}
	return cmis.NewServiceError(cmis.ErrorKind(strings.TrimSpace(cf.Type)), message, code)
}
