// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package "codec" abstracts the JSON encoder used on the wire so that the
// encoding can be swapped without touching the pipeline.
//
// The file "codec.go" defines the capability and the registry of
// available encodings.
package codec

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// "Codec" encodes values for the wire and decodes endpoint replies.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// JSON is the name of the default encoding.
const JSON = "json"

// Get resolves an encoding name to a codec. An error here means the
// exporter cannot deliver anything and should be disabled rather than
// crash the host process.
func Get(name string) (Codec, error) {
	codec, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no codec registered for encoding %q", name)
	}
	return codec, nil
}

var registry = map[string]Codec{
	JSON: jsonCodec{api: jsoniter.ConfigCompatibleWithStandardLibrary},
}

type jsonCodec struct {
	api jsoniter.API
}

func (c jsonCodec) Encode(v interface{}) ([]byte, error) {
	return c.api.Marshal(v)
}

func (c jsonCodec) Decode(data []byte, v interface{}) error {
	return c.api.Unmarshal(data, v)
}
