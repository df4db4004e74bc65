package transport

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/voting"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// ViolationDuplicateVote is the PreconditionFailure
	// violation type attached to duplicate votes
	ViolationDuplicateVote = "DUPLICATE_VOTE"
	// ResourceTypePost is the ResourceInfo resource
	// type attached to missing posts
	ResourceTypePost = "tally.Post"
)

func notFound(id uint32) error {
	return fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
}

// Status converts an error returned by the service into a
// gRPC status error. id is the post the request referred to.
func Status(err error, id uint32) error {
	if err == nil {
		return nil
	}

	var encodingError *marshaled.EncodingError

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return withDetails(status.New(codes.NotFound, err.Error()), &errdetails.ResourceInfo{
			ResourceType: ResourceTypePost,
			ResourceName: fmt.Sprintf("%d", id),
			Description:  err.Error(),
		})
	case errors.Is(err, voting.ErrDuplicateVote):
		return withDetails(status.New(codes.AlreadyExists, err.Error()), &errdetails.PreconditionFailure{
			Violations: []*errdetails.PreconditionFailure_Violation{
				{
					Type:        ViolationDuplicateVote,
					Subject:     fmt.Sprintf("%s/%d", ResourceTypePost, id),
					Description: err.Error(),
				},
			},
		})
	case errors.Is(err, voting.ErrInvalidDirection):
		return withDetails(status.New(codes.InvalidArgument, err.Error()), &errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: "direction", Description: err.Error()},
			},
		})
	case errors.Is(err, storage.ErrNilPost):
		return withDetails(status.New(codes.InvalidArgument, err.Error()), &errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: "post", Description: err.Error()},
			},
		})
	case errors.As(err, &encodingError):
		if encodingError.IsDecode() {
			return status.Error(codes.DataLoss, err.Error())
		}

		return status.Error(codes.InvalidArgument, err.Error())
	}

	return status.Error(codes.Internal, err.Error())
}

func withDetails(st *status.Status, details ...proto.Message) error {
	withDetails, err := st.WithDetails(details...)

	if err != nil {
		return st.Err()
	}

	return withDetails.Err()
}
