package auth

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

const (
	// ResolverTLS names the resolver that uses verified client certificates
	ResolverTLS = "tls"
	// ResolverHeader names the resolver that trusts a request header
	ResolverHeader = "header"
	// DefaultHeader is the header read by the header resolver by default
	DefaultHeader = "x-tally-principal"
)

// Resolver works out the principal of the caller
// from incoming request state. It returns Anonymous
// when no identity can be established.
type Resolver interface {
	Resolve(ctx context.Context) Principal
}

// NewResolver creates the resolver named kind. header is
// only used by the header resolver.
func NewResolver(kind string, header string) (Resolver, error) {
	switch kind {
	case ResolverTLS:
		return TLSResolver{}, nil
	case ResolverHeader:
		if header == "" {
			header = DefaultHeader
		}

		return HeaderResolver{Header: header}, nil
	}

	return nil, fmt.Errorf("unknown identity resolver %q", kind)
}

// TLSResolver uses the common name of the caller's
// verified client certificate
type TLSResolver struct {
}

// Resolve implements Resolver.Resolve
func (TLSResolver) Resolve(ctx context.Context) Principal {
	p, ok := peer.FromContext(ctx)

	if !ok || p.AuthInfo == nil {
		return Anonymous
	}

	tlsInfo, ok := p.AuthInfo.(credentials.TLSInfo)

	if !ok {
		return Anonymous
	}

	// VerifiedChains is empty unless the client certificate was verified
	for _, chain := range tlsInfo.State.VerifiedChains {
		if len(chain) > 0 && chain[0].Subject.CommonName != "" {
			return Principal(chain[0].Subject.CommonName)
		}
	}

	return Anonymous
}

// HeaderResolver reads the principal from a header set by an
// authenticating proxy. Only use it behind a proxy that strips
// the header from untrusted requests.
type HeaderResolver struct {
	Header string
}

// Resolve implements Resolver.Resolve
func (resolver HeaderResolver) Resolve(ctx context.Context) Principal {
	md, ok := metadata.FromIncomingContext(ctx)

	if !ok {
		return Anonymous
	}

	for _, value := range md.Get(resolver.Header) {
		if value = strings.TrimSpace(value); value != "" {
			return Principal(value)
		}
	}

	return Anonymous
}

// UnaryServerInterceptor resolves the caller's principal
// and attaches it to the context before calling handler
func UnaryServerInterceptor(resolver Resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(WithPrincipal(ctx, resolver.Resolve(ctx)), req)
	}
}
