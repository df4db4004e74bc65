// Package clients provides a Go client for the tally.Posts service
package clients

import (
	"context"

	empty "github.com/golang/protobuf/ptypes/empty"
	"github.com/jrife/tally/tally/tallypb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls a tally server over gRPC
type Client struct {
	client tallypb.PostsClient
	header string
}

// New creates a client that uses conn. If header is not empty
// the principal passed to WithPrincipal is sent in that header,
// for servers that sit behind an authenticating proxy.
func New(conn grpc.ClientConnInterface, header string) *Client {
	return &Client{client: tallypb.NewPostsClient(conn), header: header}
}

// WithPrincipal returns a context that makes calls on behalf of principal
func (client *Client) WithPrincipal(ctx context.Context, principal string) context.Context {
	if client.header == "" {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, client.header, principal)
}

// Get returns the post with this id
func (client *Client) Get(ctx context.Context, id uint32) (*tallypb.Post, error) {
	resp, err := client.client.Get(ctx, &tallypb.GetPostRequest{Id: id})

	if err != nil {
		return nil, err
	}

	return resp.Post, nil
}

// List returns every post
func (client *Client) List(ctx context.Context) ([]*tallypb.Post, error) {
	resp, err := client.client.List(ctx, &empty.Empty{})

	if err != nil {
		return nil, err
	}

	return resp.Posts, nil
}

// Insert inserts a post and returns the post it replaced
func (client *Client) Insert(ctx context.Context, post *tallypb.Post) (*tallypb.Post, error) {
	resp, err := client.client.Insert(ctx, &tallypb.InsertPostRequest{Post: post})

	if err != nil {
		return nil, err
	}

	return resp.Previous, nil
}

// CastVote votes on a post and returns the updated post
func (client *Client) CastVote(ctx context.Context, id uint32, direction tallypb.Direction) (*tallypb.Post, error) {
	resp, err := client.client.CastVote(ctx, &tallypb.CastVoteRequest{Id: id, Direction: direction})

	if err != nil {
		return nil, err
	}

	return resp.Post, nil
}

// Remove removes a post and returns it
func (client *Client) Remove(ctx context.Context, id uint32) (*tallypb.Post, error) {
	resp, err := client.client.Remove(ctx, &tallypb.RemovePostRequest{Id: id})

	if err != nil {
		return nil, err
	}

	return resp.Removed, nil
}

// IsAnonymousAllowed reports the server's anonymous access policy
func (client *Client) IsAnonymousAllowed(ctx context.Context) (bool, error) {
	resp, err := client.client.IsAnonymousAllowed(ctx, &empty.Empty{})

	if err != nil {
		return false, err
	}

	return resp.Value, nil
}
