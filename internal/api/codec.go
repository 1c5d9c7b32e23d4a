// Package api is the wire contract between the puffkeeper server and its
// clients: message types, the TrackerService descriptor and a client stub.
//
// Messages travel as JSON through a gRPC codec registered under CodecName,
// so the service needs no generated code. Clients select it with
// grpc.CallContentSubtype(CodecName); the stub in this package does that for
// every call.
package api

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
