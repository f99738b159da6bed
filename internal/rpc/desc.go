package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ingest.v1.Ingest"

const (
	methodListSpectra    = "ListSpectra"
	methodPreviewSpectra = "PreviewSpectra"
	methodCoverage       = "Coverage"
	methodIndicator      = "Indicator"
	methodIndicators     = "Indicators"
	methodEfficiency     = "Efficiency"
)

// IngestServer is the server-side contract. Requests and responses are
// google.protobuf.Struct so the service needs no generated stubs.
type IngestServer interface {
	ListSpectra(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewSpectra(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Coverage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Indicator(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Indicators(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Efficiency(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(IngestServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IngestServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(IngestServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// ServiceDesc registers IngestServer implementations with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IngestServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(methodListSpectra, IngestServer.ListSpectra),
		handler(methodPreviewSpectra, IngestServer.PreviewSpectra),
		handler(methodCoverage, IngestServer.Coverage),
		handler(methodIndicator, IngestServer.Indicator),
		handler(methodIndicators, IngestServer.Indicators),
		handler(methodEfficiency, IngestServer.Efficiency),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ingest/v1/ingest.proto",
}

// RegisterIngestServer attaches srv to s.
func RegisterIngestServer(s grpc.ServiceRegistrar, srv IngestServer) {
	s.RegisterService(&ServiceDesc, srv)
}
// #endregion service-desc
