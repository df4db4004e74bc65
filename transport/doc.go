// Package transport adapts the tally service to the tally.Posts
// protocol described in tallypb. Frontends expose that protocol
// over different wire formats. The gRPC frontend serves it directly
// and the REST frontend translates HTTP requests into calls to it,
// so error codes and validation are the same for every transport.
package transport
