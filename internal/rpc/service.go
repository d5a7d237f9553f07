// SPDX-FileCopyrightText: © 2026 vectorfabric authors
// SPDX-License-Identifier: MIT

package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName is the gRPC service name exposed by the fabric.
const serviceName = "vectorfabric.TextEmbedding"

// TextEmbeddingServer is implemented by the RPC Servicer (spec.md §4.1).
type TextEmbeddingServer interface {
	GetTextEmbedding(context.Context, *TextEmbeddingRequest) (*TextEmbeddingResponse, error)
	GetTextBatchEmbedding(context.Context, *TextBatchEmbeddingRequest) (*TextBatchEmbeddingResponse, error)
	GetTextRerankScores(context.Context, *TextRerankScoresRequest) (*TextRerankScoresResponse, error)
}

// RegisterTextEmbeddingServer registers srv on s under the fabric's service
// descriptor, in the shape protoc-gen-go-grpc would otherwise generate.
func RegisterTextEmbeddingServer(s grpc.ServiceRegistrar, srv TextEmbeddingServer) {
	s.RegisterService(&textEmbeddingServiceDesc, srv)
}

func textEmbeddingGetTextEmbeddingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TextEmbeddingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextEmbeddingServer).GetTextEmbedding(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/getTextEmbedding"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TextEmbeddingServer).GetTextEmbedding(ctx, req.(*TextEmbeddingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func textEmbeddingGetTextBatchEmbeddingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TextBatchEmbeddingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextEmbeddingServer).GetTextBatchEmbedding(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/getTextBatchEmbedding"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TextEmbeddingServer).GetTextBatchEmbedding(ctx, req.(*TextBatchEmbeddingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func textEmbeddingGetTextRerankScoresHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TextRerankScoresRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TextEmbeddingServer).GetTextRerankScores(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/getTextRerankScores"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TextEmbeddingServer).GetTextRerankScores(ctx, req.(*TextRerankScoresRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var textEmbeddingServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TextEmbeddingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "getTextEmbedding", Handler: textEmbeddingGetTextEmbeddingHandler},
		{MethodName: "getTextBatchEmbedding", Handler: textEmbeddingGetTextBatchEmbeddingHandler},
		{MethodName: "getTextRerankScores", Handler: textEmbeddingGetTextRerankScoresHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vectorfabric.proto",
}

// TextEmbeddingClient is a client for the fabric's gRPC surface, used by
// integration tests and external callers.
type TextEmbeddingClient interface {
	GetTextEmbedding(ctx context.Context, in *TextEmbeddingRequest, opts ...grpc.CallOption) (*TextEmbeddingResponse, error)
	GetTextBatchEmbedding(ctx context.Context, in *TextBatchEmbeddingRequest, opts ...grpc.CallOption) (*TextBatchEmbeddingResponse, error)
	GetTextRerankScores(ctx context.Context, in *TextRerankScoresRequest, opts ...grpc.CallOption) (*TextRerankScoresResponse, error)
}

type textEmbeddingClient struct {
	cc grpc.ClientConnInterface
}

// NewTextEmbeddingClient wraps cc in a TextEmbeddingClient.
func NewTextEmbeddingClient(cc grpc.ClientConnInterface) TextEmbeddingClient {
	return &textEmbeddingClient{cc}
}

func (c *textEmbeddingClient) GetTextEmbedding(ctx context.Context, in *TextEmbeddingRequest, opts ...grpc.CallOption) (*TextEmbeddingResponse, error) {
	out := new(TextEmbeddingResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/getTextEmbedding", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *textEmbeddingClient) GetTextBatchEmbedding(ctx context.Context, in *TextBatchEmbeddingRequest, opts ...grpc.CallOption) (*TextBatchEmbeddingResponse, error) {
	out := new(TextBatchEmbeddingResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/getTextBatchEmbedding", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *textEmbeddingClient) GetTextRerankScores(ctx context.Context, in *TextRerankScoresRequest, opts ...grpc.CallOption) (*TextRerankScoresResponse, error) {
	out := new(TextRerankScoresResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/getTextRerankScores", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ServerCodecOption forces the JSON codec on a grpc.Server.
func ServerCodecOption() grpc.ServerOption {
	return grpc.ForceServerCodec(jsonCodec{})
}

// ClientCodecOption forces the JSON codec on a grpc client connection.
func ClientCodecOption() grpc.DialOption {
	return grpc.ForceCodec(jsonCodec{})
}
