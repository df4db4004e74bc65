package frontends

import (
	"crypto/tls"
	"net"

	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/tallypb"
	"go.uber.org/zap"
)

// Options define standard options
// passed to frontends during initialization
type Options struct {
	Server   tallypb.PostsServer
	Resolver auth.Resolver
	Logger   *zap.Logger
	// TLSConfig enables TLS when it is not nil. Set ClientAuth
	// to verify client certificates for the tls resolver.
	TLSConfig *tls.Config
}

// Frontend describes an interface
// that every tally frontend must
// implement.
type Frontend interface {
	// Init initializes the frontend. Use this
	// to pass configuration options to the frontend
	Init(options Options) error
	// Listen tells this frontend to start listening
	// using this listener. A frontend may be asked
	// to listen on different interfaces, such as a TCP
	// socket and a Unix socket. It must accept
	// one or more calls to Listen. Listen must block
	// as long as it is actively accepting connections
	// from this listener. If the listener returns an
	// error Listen must return an error and return. If
	// Listen returns as a result of Stop being called it
	// must return nil.
	Listen(listener net.Listener) error
	// Stop tells this frontend to stop processing all
	// requests and stop listening to all listeners.
	// In-flight requests are allowed to finish.
	Stop() error
}
