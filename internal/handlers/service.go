package handlers

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "datastore.v1.DataStoreService"

// DataStoreServer is the server API for the data store service.
// Requests and responses are google.protobuf.Struct messages.
type DataStoreServer interface {
	Attach(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Detach(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DetachByID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DataStoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// DataStoreServiceDesc describes the data store service for grpc.Server registration
var DataStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DataStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Attach", Handler: unaryHandler("Attach", DataStoreServer.Attach)},
		{MethodName: "Detach", Handler: unaryHandler("Detach", DataStoreServer.Detach)},
		{MethodName: "DetachByID", Handler: unaryHandler("DetachByID", DataStoreServer.DetachByID)},
		{MethodName: "Get", Handler: unaryHandler("Get", DataStoreServer.Get)},
		{MethodName: "List", Handler: unaryHandler("List", DataStoreServer.List)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "datastore/v1/datastore.proto",
}

// RegisterDataStoreServer registers the service implementation
func RegisterDataStoreServer(s grpc.ServiceRegistrar, srv DataStoreServer) {
	s.RegisterService(&DataStoreServiceDesc, srv)
}

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DataStoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DataStoreServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DataStoreClient is the client API for the data store service
type DataStoreClient struct {
	cc grpc.ClientConnInterface
}

// NewDataStoreClient creates a client over a connection
func NewDataStoreClient(cc grpc.ClientConnInterface) *DataStoreClient {
	return &DataStoreClient{cc: cc}
}

func (c *DataStoreClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DataStoreClient) Attach(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Attach", in, opts...)
}

func (c *DataStoreClient) Detach(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Detach", in, opts...)
}

func (c *DataStoreClient) DetachByID(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DetachByID", in, opts...)
}

func (c *DataStoreClient) Get(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Get", in, opts...)
}

func (c *DataStoreClient) List(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "List", in, opts...)
}
