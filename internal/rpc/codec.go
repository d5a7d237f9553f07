// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package rpc

import "encoding/json"

// jsonCodec is a grpc/encoding.Codec that marshals messages with
// encoding/json instead of protocol buffers. Wire-schema generation is out
// of scope for this fabric (spec.md §1(ii) treats message schemas as an
// opaque external collaborator); this codec keeps a real grpc.Server,
// deadline propagation, and interceptor chain without requiring a protoc
// run, which this task forbids in the first place (see DESIGN.md).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}
