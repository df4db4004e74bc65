package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/protobuf/proto"
	empty "github.com/golang/protobuf/ptypes/empty"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/jrife/tally/tally/tallypb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	patternList      = runtime.MustPattern(runtime.NewPattern(1, []int{2, 0, 2, 1}, []string{"v1", "posts"}, ""))
	patternPost      = runtime.MustPattern(runtime.NewPattern(1, []int{2, 0, 2, 1, 1, 0, 4, 1, 5, 2}, []string{"v1", "posts", "id"}, ""))
	patternVotes     = runtime.MustPattern(runtime.NewPattern(1, []int{2, 0, 2, 1, 1, 0, 4, 1, 5, 2, 2, 3}, []string{"v1", "posts", "id", "votes"}, ""))
	patternAnonymous = runtime.MustPattern(runtime.NewPattern(1, []int{2, 0, 2, 1, 2, 2}, []string{"v1", "policy", "anonymous"}, ""))
)

func postID(pathParams map[string]string) (uint32, error) {
	val, ok := pathParams["id"]

	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing parameter %s", "id")
	}

	id, err := runtime.Uint32(val)

	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "type mismatch, parameter: %s, error: %v", "id", err)
	}

	return id, nil
}

func decode(inbound runtime.Marshaler, req *http.Request, v interface{}) error {
	if err := inbound.NewDecoder(req.Body).Decode(v); err != nil && err != io.EOF {
		return status.Errorf(codes.InvalidArgument, "%v", err)
	}

	return nil
}

func (frontend *Frontend) list(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	return frontend.server.List(ctx, &empty.Empty{})
}

func (frontend *Frontend) get(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	id, err := postID(pathParams)

	if err != nil {
		return nil, err
	}

	return frontend.server.Get(ctx, &tallypb.GetPostRequest{Id: id})
}

func (frontend *Frontend) insert(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	id, err := postID(pathParams)

	if err != nil {
		return nil, err
	}

	var post tallypb.Post

	if err := decode(inbound, req, &post); err != nil {
		return nil, err
	}

	// the path decides which post is written
	post.Id = id

	return frontend.server.Insert(ctx, &tallypb.InsertPostRequest{Post: &post})
}

func (frontend *Frontend) remove(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	id, err := postID(pathParams)

	if err != nil {
		return nil, err
	}

	return frontend.server.Remove(ctx, &tallypb.RemovePostRequest{Id: id})
}

func (frontend *Frontend) castVote(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	id, err := postID(pathParams)

	if err != nil {
		return nil, err
	}

	var castVoteRequest tallypb.CastVoteRequest

	if err := decode(inbound, req, &castVoteRequest); err != nil {
		return nil, err
	}

	castVoteRequest.Id = id

	return frontend.server.CastVote(ctx, &castVoteRequest)
}

func (frontend *Frontend) isAnonymousAllowed(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error) {
	return frontend.server.IsAnonymousAllowed(ctx, &empty.Empty{})
}
