// Package tallypb contains the messages described by tally.proto.
// They are plain structs carrying protobuf field tags, which is all
// the reflection based codecs of golang/protobuf and gogo/protobuf
// need to encode them for gRPC, for the REST gateway and for storage.
package tallypb

import (
	proto "github.com/golang/protobuf/proto"
)

// Direction is the direction of a vote
type Direction int32

const (
	// Direction_DIRECTION_UNSPECIFIED is the zero value. It is never a valid vote.
	Direction_DIRECTION_UNSPECIFIED Direction = 0
	// Direction_UP counts +1
	Direction_UP Direction = 1
	// Direction_DOWN counts -1
	Direction_DOWN Direction = 2
)

// Direction_name maps enum values to names
var Direction_name = map[int32]string{
	0: "DIRECTION_UNSPECIFIED",
	1: "UP",
	2: "DOWN",
}

// Direction_value maps enum names to values
var Direction_value = map[string]int32{
	"DIRECTION_UNSPECIFIED": 0,
	"UP":                    1,
	"DOWN":                  2,
}

func (x Direction) String() string {
	return proto.EnumName(Direction_name, int32(x))
}

// Weight returns the contribution of a single
// vote in this direction to a post's score
func (x Direction) Weight() int64 {
	switch x {
	case Direction_UP:
		return 1
	case Direction_DOWN:
		return -1
	}

	return 0
}

// Post is a piece of content and its score
type Post struct {
	Id      uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Content string `protobuf:"bytes,2,opt,name=content,proto3" json:"content,omitempty"`
	Votes   int64  `protobuf:"zigzag64,3,opt,name=votes,proto3" json:"votes,omitempty"`
}

func (m *Post) Reset()         { *m = Post{} }
func (m *Post) String() string { return proto.CompactTextString(m) }
func (*Post) ProtoMessage()    {}

func (m *Post) GetId() uint32 {
	if m != nil {
		return m.Id
	}
	return 0
}

func (m *Post) GetContent() string {
	if m != nil {
		return m.Content
	}
	return ""
}

func (m *Post) GetVotes() int64 {
	if m != nil {
		return m.Votes
	}
	return 0
}

// Ballot records the direction a single voter voted in
type Ballot struct {
	Voter     string    `protobuf:"bytes,1,opt,name=voter,proto3" json:"voter,omitempty"`
	Direction Direction `protobuf:"varint,2,opt,name=direction,proto3,enum=tally.Direction" json:"direction,omitempty"`
}

func (m *Ballot) Reset()         { *m = Ballot{} }
func (m *Ballot) String() string { return proto.CompactTextString(m) }
func (*Ballot) ProtoMessage()    {}

func (m *Ballot) GetVoter() string {
	if m != nil {
		return m.Voter
	}
	return ""
}

func (m *Ballot) GetDirection() Direction {
	if m != nil {
		return m.Direction
	}
	return Direction_DIRECTION_UNSPECIFIED
}

// Ledger lists the ballots cast for one post,
// sorted by voter with at most one ballot per voter.
type Ledger struct {
	Ballots []*Ballot `protobuf:"bytes,1,rep,name=ballots,proto3" json:"ballots,omitempty"`
}

func (m *Ledger) Reset()         { *m = Ledger{} }
func (m *Ledger) String() string { return proto.CompactTextString(m) }
func (*Ledger) ProtoMessage()    {}

func (m *Ledger) GetBallots() []*Ballot {
	if m != nil {
		return m.Ballots
	}
	return nil
}

type GetPostRequest struct {
	Id uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *GetPostRequest) Reset()         { *m = GetPostRequest{} }
func (m *GetPostRequest) String() string { return proto.CompactTextString(m) }
func (*GetPostRequest) ProtoMessage()    {}

func (m *GetPostRequest) GetId() uint32 {
	if m != nil {
		return m.Id
	}
	return 0
}

type GetPostResponse struct {
	Post *Post `protobuf:"bytes,1,opt,name=post,proto3" json:"post,omitempty"`
}

func (m *GetPostResponse) Reset()         { *m = GetPostResponse{} }
func (m *GetPostResponse) String() string { return proto.CompactTextString(m) }
func (*GetPostResponse) ProtoMessage()    {}

func (m *GetPostResponse) GetPost() *Post {
	if m != nil {
		return m.Post
	}
	return nil
}

type ListPostsResponse struct {
	Posts []*Post `protobuf:"bytes,1,rep,name=posts,proto3" json:"posts,omitempty"`
}

func (m *ListPostsResponse) Reset()         { *m = ListPostsResponse{} }
func (m *ListPostsResponse) String() string { return proto.CompactTextString(m) }
func (*ListPostsResponse) ProtoMessage()    {}

func (m *ListPostsResponse) GetPosts() []*Post {
	if m != nil {
		return m.Posts
	}
	return nil
}

type InsertPostRequest struct {
	Post *Post `protobuf:"bytes,1,opt,name=post,proto3" json:"post,omitempty"`
}

func (m *InsertPostRequest) Reset()         { *m = InsertPostRequest{} }
func (m *InsertPostRequest) String() string { return proto.CompactTextString(m) }
func (*InsertPostRequest) ProtoMessage()    {}

func (m *InsertPostRequest) GetPost() *Post {
	if m != nil {
		return m.Post
	}
	return nil
}

type InsertPostResponse struct {
	Previous *Post `protobuf:"bytes,1,opt,name=previous,proto3" json:"previous,omitempty"`
}

func (m *InsertPostResponse) Reset()         { *m = InsertPostResponse{} }
func (m *InsertPostResponse) String() string { return proto.CompactTextString(m) }
func (*InsertPostResponse) ProtoMessage()    {}

func (m *InsertPostResponse) GetPrevious() *Post {
	if m != nil {
		return m.Previous
	}
	return nil
}

type CastVoteRequest struct {
	Id        uint32    `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Direction Direction `protobuf:"varint,2,opt,name=direction,proto3,enum=tally.Direction" json:"direction,omitempty"`
}

func (m *CastVoteRequest) Reset()         { *m = CastVoteRequest{} }
func (m *CastVoteRequest) String() string { return proto.CompactTextString(m) }
func (*CastVoteRequest) ProtoMessage()    {}

func (m *CastVoteRequest) GetId() uint32 {
	if m != nil {
		return m.Id
	}
	return 0
}

func (m *CastVoteRequest) GetDirection() Direction {
	if m != nil {
		return m.Direction
	}
	return Direction_DIRECTION_UNSPECIFIED
}

type CastVoteResponse struct {
	Post *Post `protobuf:"bytes,1,opt,name=post,proto3" json:"post,omitempty"`
}

func (m *CastVoteResponse) Reset()         { *m = CastVoteResponse{} }
func (m *CastVoteResponse) String() string { return proto.CompactTextString(m) }
func (*CastVoteResponse) ProtoMessage()    {}

func (m *CastVoteResponse) GetPost() *Post {
	if m != nil {
		return m.Post
	}
	return nil
}

type RemovePostRequest struct {
	Id uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *RemovePostRequest) Reset()         { *m = RemovePostRequest{} }
func (m *RemovePostRequest) String() string { return proto.CompactTextString(m) }
func (*RemovePostRequest) ProtoMessage()    {}

func (m *RemovePostRequest) GetId() uint32 {
	if m != nil {
		return m.Id
	}
	return 0
}

type RemovePostResponse struct {
	Removed *Post `protobuf:"bytes,1,opt,name=removed,proto3" json:"removed,omitempty"`
}

func (m *RemovePostResponse) Reset()         { *m = RemovePostResponse{} }
func (m *RemovePostResponse) String() string { return proto.CompactTextString(m) }
func (*RemovePostResponse) ProtoMessage()    {}

func (m *RemovePostResponse) GetRemoved() *Post {
	if m != nil {
		return m.Removed
	}
	return nil
}

func init() {
	proto.RegisterEnum("tally.Direction", Direction_name, Direction_value)
	proto.RegisterType((*Post)(nil), "tally.Post")
	proto.RegisterType((*Ballot)(nil), "tally.Ballot")
	proto.RegisterType((*Ledger)(nil), "tally.Ledger")
	proto.RegisterType((*GetPostRequest)(nil), "tally.GetPostRequest")
	proto.RegisterType((*GetPostResponse)(nil), "tally.GetPostResponse")
	proto.RegisterType((*ListPostsResponse)(nil), "tally.ListPostsResponse")
	proto.RegisterType((*InsertPostRequest)(nil), "tally.InsertPostRequest")
	proto.RegisterType((*InsertPostResponse)(nil), "tally.InsertPostResponse")
	proto.RegisterType((*CastVoteRequest)(nil), "tally.CastVoteRequest")
	proto.RegisterType((*CastVoteResponse)(nil), "tally.CastVoteResponse")
	proto.RegisterType((*RemovePostRequest)(nil), "tally.RemovePostRequest")
	proto.RegisterType((*RemovePostResponse)(nil), "tally.RemovePostResponse")
}
