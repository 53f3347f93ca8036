package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const AdminServiceName = "storefront.admin.v1.AdminService"

// AdminServiceServer is the admin surface exposed over gRPC. Requests and
// responses are google.protobuf.Struct so no generated stubs are needed.
type AdminServiceServer interface {
	CheckStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AdjustStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdatePreorderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv AdminServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AdminServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + AdminServiceName + "/" + name,
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AdminServiceServer), ctx, req.(*structpb.Struct))
		})
	}
}

var AdminServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckStock",
			Handler: methodHandler("CheckStock", func(s AdminServiceServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.CheckStock(ctx, r)
			}),
		},
		{
			MethodName: "AdjustStock",
			Handler: methodHandler("AdjustStock", func(s AdminServiceServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.AdjustStock(ctx, r)
			}),
		},
		{
			MethodName: "UpdateOrderStatus",
			Handler: methodHandler("UpdateOrderStatus", func(s AdminServiceServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.UpdateOrderStatus(ctx, r)
			}),
		},
		{
			MethodName: "UpdatePreorderStatus",
			Handler: methodHandler("UpdatePreorderStatus", func(s AdminServiceServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.UpdatePreorderStatus(ctx, r)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/admin/v1/admin.proto",
}

func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminServiceDesc, srv)
}
