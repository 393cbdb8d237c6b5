package connect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/hifigo/hifigo/internal/app/protocol"
)

// DispatchClient is the client for the Dispatch procedure.
type DispatchClient = connect.Client[protocol.Action, DispatchResponse]

// SnapshotClient is the client for the Snapshot procedure.
type SnapshotClient = connect.Client[SnapshotRequest, SnapshotResponse]

// SubscribeClient is the client for the Subscribe procedure.
type SubscribeClient = connect.Client[SubscribeRequest, protocol.Notification]

// NewDispatchClient creates a Dispatch client against the given base URL.
func NewDispatchClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DispatchClient {
	return connect.NewClient[protocol.Action, DispatchResponse](
		httpClient, baseURL+DispatchProcedure, withClientCodec(opts)...)
}

// NewSnapshotClient creates a Snapshot client against the given base URL.
func NewSnapshotClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SnapshotClient {
	return connect.NewClient[SnapshotRequest, SnapshotResponse](
		httpClient, baseURL+SnapshotProcedure, withClientCodec(opts)...)
}

// NewSubscribeClient creates a Subscribe client against the given base URL.
func NewSubscribeClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SubscribeClient {
	return connect.NewClient[SubscribeRequest, protocol.Notification](
		httpClient, baseURL+SubscribeProcedure, withClientCodec(opts)...)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
}

var _ connect.HTTPClient = (*http.Client)(nil)
