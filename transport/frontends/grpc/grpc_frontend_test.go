package grpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/tally/storage/kv/plugins/memory"
	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/service"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/tally/voting"
	"github.com/jrife/tally/transport"
	"github.com/jrife/tally/transport/clients"
	"github.com/jrife/tally/transport/frontends"
	grpcfrontend "github.com/jrife/tally/transport/frontends/grpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newClient(t *testing.T, allowAnonymous bool) *clients.Client {
	store := storage.New(storage.StoreConfig{RootStore: memory.New()})
	svc := service.New(service.Config{
		Guard:  auth.NewGuard(allowAnonymous),
		Engine: voting.New(voting.EngineConfig{Store: store}),
	})

	frontend := &grpcfrontend.Frontend{}

	if err := frontend.Init(frontends.Options{Server: transport.NewServer(svc), Resolver: auth.HeaderResolver{Header: auth.DefaultHeader}}); err != nil {
		t.Fatalf("could not initialize frontend: %s", err.Error())
	}

	listener := bufconn.Listen(1 << 20)
	done := make(chan error)

	go func() {
		done <- frontend.Listen(listener)
	}()

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithInsecure(),
	)

	if err != nil {
		t.Fatalf("could not dial frontend: %s", err.Error())
	}

	t.Cleanup(func() {
		conn.Close()
		frontend.Stop()

		if err := <-done; err != nil {
			t.Errorf("expected Listen to return nil, got %#v", err)
		}
	})

	return clients.New(conn, auth.DefaultHeader)
}

func TestGRPCFrontend(t *testing.T) {
	client := newClient(t, false)
	anonymous := context.Background()
	alice := client.WithPrincipal(context.Background(), "alice")
	bob := client.WithPrincipal(context.Background(), "bob")

	allowed, err := client.IsAnonymousAllowed(anonymous)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if allowed {
		t.Errorf("expected anonymous callers to be disallowed")
	}

	_, err = client.Insert(anonymous, &tallypb.Post{Id: 1, Content: "hello"})

	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %#v", err)
	}

	previous, err := client.Insert(alice, &tallypb.Post{Id: 1, Content: "hello"})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if previous != nil {
		t.Errorf("expected no previous post, got %#v", previous)
	}

	post, err := client.CastVote(alice, 1, tallypb.Direction_UP)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 1, Content: "hello", Votes: 1}, post); diff != "" {
		t.Errorf(diff)
	}

	_, err = client.CastVote(alice, 1, tallypb.Direction_UP)
	st := status.Convert(err)

	if st.Code() != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %#v", err)
	}

	if len(st.Details()) != 1 {
		t.Fatalf("expected one detail, got %#v", st.Details())
	}

	if preconditionFailure, ok := st.Details()[0].(*errdetails.PreconditionFailure); !ok {
		t.Errorf("expected a PreconditionFailure, got %#v", st.Details()[0])
	} else if preconditionFailure.Violations[0].Type != transport.ViolationDuplicateVote {
		t.Errorf("expected a %s violation, got %#v", transport.ViolationDuplicateVote, preconditionFailure)
	}

	if _, err := client.CastVote(bob, 1, tallypb.Direction_DOWN); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	_, err = client.CastVote(bob, 1, tallypb.Direction_DIRECTION_UNSPECIFIED)

	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %#v", err)
	}

	_, err = client.CastVote(bob, 999, tallypb.Direction_UP)
	st = status.Convert(err)

	if st.Code() != codes.NotFound {
		t.Fatalf("expected NotFound, got %#v", err)
	}

	if len(st.Details()) != 1 {
		t.Fatalf("expected one detail, got %#v", st.Details())
	}

	if resourceInfo, ok := st.Details()[0].(*errdetails.ResourceInfo); !ok {
		t.Errorf("expected a ResourceInfo, got %#v", st.Details()[0])
	} else if resourceInfo.ResourceName != "999" {
		t.Errorf("expected resource 999, got %s", resourceInfo.ResourceName)
	}

	_, err = client.Get(anonymous, 2)

	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %#v", err)
	}

	post, err = client.Get(anonymous, 1)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 1, Content: "hello", Votes: 0}, post); diff != "" {
		t.Errorf(diff)
	}

	posts, err := client.List(anonymous)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff([]*tallypb.Post{{Id: 1, Content: "hello"}}, posts); diff != "" {
		t.Errorf(diff)
	}

	removed, err := client.Remove(alice, 1)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 1, Content: "hello"}, removed); diff != "" {
		t.Errorf(diff)
	}

	removed, err = client.Remove(alice, 1)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if removed != nil {
		t.Errorf("expected nil, got %#v", removed)
	}
}

func TestGRPCFrontendNilPost(t *testing.T) {
	client := newClient(t, true)

	_, err := client.Insert(context.Background(), nil)

	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %#v", err)
	}
}
