package match

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matching/internal/api"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "muzz.match.v1.MatchService"

// MatchServer is the server API of MatchService.
type MatchServer interface {
	Discover(context.Context, *api.DiscoverRequest) (*api.DiscoverResponse, error)
	MarkSeen(context.Context, *api.MarkSeenRequest) (*api.OKResponse, error)
	Swipe(context.Context, *api.SwipeRequest) (*api.SwipeResponse, error)
	UndoSwipe(context.Context, *api.UndoRequest) (*api.UndoResponse, error)
	ListLikedMe(context.Context, *api.LikedMeRequest) (*api.LikedMeResponse, error)
	CountLikedMe(context.Context, *api.CountLikedMeRequest) (*api.CountLikedMeResponse, error)
	Unmatch(context.Context, *api.UnmatchRequest) (*api.OKResponse, error)
	Block(context.Context, *api.BlockRequest) (*api.OKResponse, error)
	AuthorizeMessage(context.Context, *api.AuthorizeMessageRequest) (*api.AuthorizeMessageResponse, error)
	UpdatePreferences(context.Context, *api.UpdatePreferencesRequest) (*api.PreferencesResponse, error)
}

// ServiceDesc describes MatchService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Discover", MatchServer.Discover),
		unary("MarkSeen", MatchServer.MarkSeen),
		unary("Swipe", MatchServer.Swipe),
		unary("UndoSwipe", MatchServer.UndoSwipe),
		unary("ListLikedMe", MatchServer.ListLikedMe),
		unary("CountLikedMe", MatchServer.CountLikedMe),
		unary("Unmatch", MatchServer.Unmatch),
		unary("Block", MatchServer.Block),
		unary("AuthorizeMessage", MatchServer.AuthorizeMessage),
		unary("UpdatePreferences", MatchServer.UpdatePreferences),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterMatchServer attaches srv to s.
func RegisterMatchServer(s grpc.ServiceRegistrar, srv MatchServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req, Resp any](name string, call func(MatchServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatchServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatchServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client calls MatchService over a connection. Every call uses the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, c *Client, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Discover(ctx context.Context, in *api.DiscoverRequest, opts ...grpc.CallOption) (*api.DiscoverResponse, error) {
	return invoke[api.DiscoverResponse](ctx, c, "Discover", in, opts)
}

func (c *Client) MarkSeen(ctx context.Context, in *api.MarkSeenRequest, opts ...grpc.CallOption) (*api.OKResponse, error) {
	return invoke[api.OKResponse](ctx, c, "MarkSeen", in, opts)
}

func (c *Client) Swipe(ctx context.Context, in *api.SwipeRequest, opts ...grpc.CallOption) (*api.SwipeResponse, error) {
	return invoke[api.SwipeResponse](ctx, c, "Swipe", in, opts)
}

func (c *Client) UndoSwipe(ctx context.Context, in *api.UndoRequest, opts ...grpc.CallOption) (*api.UndoResponse, error) {
	return invoke[api.UndoResponse](ctx, c, "UndoSwipe", in, opts)
}

func (c *Client) ListLikedMe(ctx context.Context, in *api.LikedMeRequest, opts ...grpc.CallOption) (*api.LikedMeResponse, error) {
	return invoke[api.LikedMeResponse](ctx, c, "ListLikedMe", in, opts)
}

func (c *Client) CountLikedMe(ctx context.Context, in *api.CountLikedMeRequest, opts ...grpc.CallOption) (*api.CountLikedMeResponse, error) {
	return invoke[api.CountLikedMeResponse](ctx, c, "CountLikedMe", in, opts)
}

func (c *Client) Unmatch(ctx context.Context, in *api.UnmatchRequest, opts ...grpc.CallOption) (*api.OKResponse, error) {
	return invoke[api.OKResponse](ctx, c, "Unmatch", in, opts)
}

func (c *Client) Block(ctx context.Context, in *api.BlockRequest, opts ...grpc.CallOption) (*api.OKResponse, error) {
	return invoke[api.OKResponse](ctx, c, "Block", in, opts)
}

func (c *Client) AuthorizeMessage(ctx context.Context, in *api.AuthorizeMessageRequest, opts ...grpc.CallOption) (*api.AuthorizeMessageResponse, error) {
	return invoke[api.AuthorizeMessageResponse](ctx, c, "AuthorizeMessage", in, opts)
}

func (c *Client) UpdatePreferences(ctx context.Context, in *api.UpdatePreferencesRequest, opts ...grpc.CallOption) (*api.PreferencesResponse, error) {
	return invoke[api.PreferencesResponse](ctx, c, "UpdatePreferences", in, opts)
}
