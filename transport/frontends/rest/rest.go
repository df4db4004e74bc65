// Package rest serves the tally.Posts protocol as JSON over HTTP
// using the grpc-gateway runtime.
//
//	GET    /v1/posts                list
//	GET    /v1/posts/{id}           get
//	PUT    /v1/posts/{id}           insert, body is a post
//	DELETE /v1/posts/{id}           remove
//	POST   /v1/posts/{id}/votes     cast vote, body is {"direction": "UP"}
//	GET    /v1/policy/anonymous     is anonymous allowed
//	GET    /healthz                 liveness
package rest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"github.com/felixge/httpsnoop"
	"github.com/golang/protobuf/proto"
	"github.com/gorilla/mux"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"
	"github.com/jrife/tally/tally/auth"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/transport/frontends"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
)

var _ frontends.Frontend = (*Frontend)(nil)

// Frontend is an implementation of
// Frontend for REST
type Frontend struct {
	mu         sync.Mutex
	server     tallypb.PostsServer
	resolver   auth.Resolver
	logger     *zap.Logger
	tlsConfig  *tls.Config
	gwmux      *runtime.ServeMux
	handler    http.Handler
	httpServer *http.Server
}

// Init initializes the frontend
func (frontend *Frontend) Init(options frontends.Options) error {
	if options.Server == nil {
		return fmt.Errorf("a server is required")
	}

	if options.Resolver == nil {
		return fmt.Errorf("an identity resolver is required")
	}

	frontend.mu.Lock()
	defer frontend.mu.Unlock()

	frontend.server = options.Server
	frontend.resolver = options.Resolver
	frontend.logger = options.Logger
	frontend.tlsConfig = options.TLSConfig

	if frontend.logger == nil {
		frontend.logger = zap.L()
	}

	frontend.gwmux = runtime.NewServeMux(
		runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{OrigName: true, EmitDefaults: true}),
		runtime.WithIncomingHeaderMatcher(headerMatcher(options.Resolver)),
	)

	frontend.gwmux.Handle("GET", patternList, frontend.handle(frontend.list))
	frontend.gwmux.Handle("GET", patternPost, frontend.handle(frontend.get))
	frontend.gwmux.Handle("PUT", patternPost, frontend.handle(frontend.insert))
	frontend.gwmux.Handle("DELETE", patternPost, frontend.handle(frontend.remove))
	frontend.gwmux.Handle("POST", patternVotes, frontend.handle(frontend.castVote))
	frontend.gwmux.Handle("GET", patternAnonymous, frontend.handle(frontend.isAnonymousAllowed))

	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthz).Methods("GET")
	router.PathPrefix("/v1/").Handler(frontend.gwmux)

	frontend.handler = accessLog(frontend.logger, router)
	frontend.httpServer = &http.Server{Handler: frontend.handler, TLSConfig: options.TLSConfig}

	return nil
}

// Handler returns the root HTTP handler
func (frontend *Frontend) Handler() http.Handler {
	frontend.mu.Lock()
	defer frontend.mu.Unlock()

	return frontend.handler
}

// Listen accepts connections from this listener
func (frontend *Frontend) Listen(listener net.Listener) error {
	frontend.mu.Lock()
	httpServer := frontend.httpServer
	frontend.mu.Unlock()

	if httpServer == nil {
		return fmt.Errorf("frontend is not initialized")
	}

	frontend.logger.Info("rest frontend listening", zap.String("address", listener.Addr().String()))

	var err error

	if frontend.tlsConfig != nil {
		// certificates come from TLSConfig
		err = httpServer.ServeTLS(listener, "", "")
	} else {
		err = httpServer.Serve(listener)
	}

	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops accepting connections from listeners and causes
// all calls to Listen to return
func (frontend *Frontend) Stop() error {
	frontend.mu.Lock()
	defer frontend.mu.Unlock()

	if frontend.httpServer == nil {
		return nil
	}

	return frontend.httpServer.Shutdown(context.Background())
}

type method func(ctx context.Context, inbound runtime.Marshaler, req *http.Request, pathParams map[string]string) (proto.Message, error)

// handle adapts a method to the gateway's handler signature. It follows
// the shape of generated gateway handlers: annotate the context, call the
// method, then forward the response or the error.
func (frontend *Frontend) handle(m method) runtime.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request, pathParams map[string]string) {
		ctx, cancel := context.WithCancel(req.Context())
		defer cancel()

		inboundMarshaler, outboundMarshaler := runtime.MarshalerForRequest(frontend.gwmux, req)
		rctx, err := runtime.AnnotateIncomingContext(ctx, frontend.gwmux, req)

		if err != nil {
			runtime.HTTPError(ctx, frontend.gwmux, outboundMarshaler, w, req, err)

			return
		}

		if req.TLS != nil {
			rctx = peer.NewContext(rctx, &peer.Peer{AuthInfo: credentials.TLSInfo{State: *req.TLS}})
		}

		rctx = auth.WithPrincipal(rctx, frontend.resolver.Resolve(rctx))
		resp, err := m(rctx, inboundMarshaler, req, pathParams)

		if err != nil {
			runtime.HTTPError(ctx, frontend.gwmux, outboundMarshaler, w, req, err)

			return
		}

		runtime.ForwardResponseMessage(ctx, frontend.gwmux, outboundMarshaler, w, req, resp, frontend.gwmux.GetForwardResponseOptions()...)
	}
}

// headerMatcher forwards the identity header under its own name. The
// same header sent with the gateway's metadata prefix is dropped so that
// a proxy stripping the identity header leaves no other way to set it.
func headerMatcher(resolver auth.Resolver) runtime.HeaderMatcherFunc {
	header := ""

	if headerResolver, ok := resolver.(auth.HeaderResolver); ok {
		header = textproto.CanonicalMIMEHeaderKey(headerResolver.Header)
	}

	return func(key string) (string, bool) {
		if header == "" {
			return runtime.DefaultHeaderMatcher(key)
		}

		key = textproto.CanonicalMIMEHeaderKey(key)

		if key == header {
			return key, true
		}

		if strings.HasPrefix(key, runtime.MetadataHeaderPrefix) && textproto.CanonicalMIMEHeaderKey(strings.TrimPrefix(key, runtime.MetadataHeaderPrefix)) == header {
			return "", false
		}

		return runtime.DefaultHeaderMatcher(key)
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func accessLog(logger *zap.Logger, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(handler, w, r)

		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", metrics.Code),
			zap.Int64("bytes", metrics.Written),
			zap.Duration("duration", metrics.Duration),
		)
	})
}
