// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
)

// Decode parses an XML payload fetched from url into out, which must
// be of pointer type.  Any failure, including a payload that is not
// XML at all or has the wrong root element, is returned as an
// ErrDecode carrying url and the raw payload.
func Decode(url string, payload []byte, out interface{}) error {
	err := unmarshal(payload, out)
	if err != nil {
		return ErrDecode{URL: url, Payload: string(payload), Err: err}
	}
	return nil
}

// Encode produces the XML serialization of a representation, suitable
// as a request body.
func Encode(in interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	if err := encoder.Encode(in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRequest decodes an XML request body, as received by a server,
// into out.  An empty content type is taken to be XML; anything other
// than an XML media type is rejected with ErrUnsupportedMediaType.
// Malformed bodies produce ErrBadRequest.
func DecodeRequest(contentType string, r io.Reader, out interface{}) error {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return ErrBadRequest{Err: err}
		}
		switch mediaType {
		case XMLMediaType, TextXMLMediaType:
		default:
			return ErrUnsupportedMediaType{Type: mediaType}
		}
	}
	payload, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	if err = unmarshal(payload, out); err != nil {
		return ErrBadRequest{Err: err}
	}
	return nil
}

// unmarshal decodes a complete XML document into out.  Unlike
// xml.Unmarshal, it reads to the end of payload, so anything after
// the root element other than whitespace, comments, and processing
// instructions is an error.
func unmarshal(payload []byte, out interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	if err := decoder.Decode(out); err != nil {
		return err
	}
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after end of document", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return fmt.Errorf("unexpected text %q after end of document", string(t))
			}
		}
	}
}
