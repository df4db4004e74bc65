package transport

import (
	"context"

	empty "github.com/golang/protobuf/ptypes/empty"
	wrappers "github.com/golang/protobuf/ptypes/wrappers"
	"github.com/jrife/tally/tally/service"
	"github.com/jrife/tally/tally/tallypb"
)

var _ tallypb.PostsServer = (*Server)(nil)

// Server implements tallypb.PostsServer on top of the
// tally service. Errors are returned as gRPC statuses.
type Server struct {
	service *service.Service
}

// NewServer creates a server
func NewServer(service *service.Service) *Server {
	return &Server{service: service}
}

// Get implements tallypb.PostsServer.Get
func (server *Server) Get(ctx context.Context, req *tallypb.GetPostRequest) (*tallypb.GetPostResponse, error) {
	post, err := server.service.Get(ctx, req.GetId())

	if err != nil {
		return nil, Status(err, req.GetId())
	}

	if post == nil {
		return nil, Status(notFound(req.GetId()), req.GetId())
	}

	return &tallypb.GetPostResponse{Post: post}, nil
}

// List implements tallypb.PostsServer.List
func (server *Server) List(ctx context.Context, req *empty.Empty) (*tallypb.ListPostsResponse, error) {
	posts, err := server.service.List(ctx)

	if err != nil {
		return nil, Status(err, 0)
	}

	return &tallypb.ListPostsResponse{Posts: posts}, nil
}

// Insert implements tallypb.PostsServer.Insert
func (server *Server) Insert(ctx context.Context, req *tallypb.InsertPostRequest) (*tallypb.InsertPostResponse, error) {
	previous, err := server.service.Insert(ctx, req.GetPost())

	if err != nil {
		return nil, Status(err, req.GetPost().GetId())
	}

	return &tallypb.InsertPostResponse{Previous: previous}, nil
}

// CastVote implements tallypb.PostsServer.CastVote
func (server *Server) CastVote(ctx context.Context, req *tallypb.CastVoteRequest) (*tallypb.CastVoteResponse, error) {
	post, err := server.service.CastVote(ctx, req.GetId(), req.GetDirection())

	if err != nil {
		return nil, Status(err, req.GetId())
	}

	return &tallypb.CastVoteResponse{Post: post}, nil
}

// Remove implements tallypb.PostsServer.Remove
func (server *Server) Remove(ctx context.Context, req *tallypb.RemovePostRequest) (*tallypb.RemovePostResponse, error) {
	removed, err := server.service.RemovePost(ctx, req.GetId())

	if err != nil {
		return nil, Status(err, req.GetId())
	}

	return &tallypb.RemovePostResponse{Removed: removed}, nil
}

// IsAnonymousAllowed implements tallypb.PostsServer.IsAnonymousAllowed
func (server *Server) IsAnonymousAllowed(ctx context.Context, req *empty.Empty) (*wrappers.BoolValue, error) {
	return &wrappers.BoolValue{Value: server.service.IsAnonymousAllowed(ctx)}, nil
}
