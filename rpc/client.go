package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/formstate/form"
)

// Client calls a remote form service.
type Client struct {
	open     *connect.Client[OpenRequest, Session]
	dispatch *connect.Client[DispatchRequest, Session]
	get      *connect.Client[SessionRequest, Session]
	close    *connect.Client[CloseRequest, CloseResponse]
}

// NewClient targets the service at baseURL, e.g. "http://127.0.0.1:8080".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)

	return &Client{
		open:     connect.NewClient[OpenRequest, Session](httpClient, baseURL+OpenProcedure, opts...),
		dispatch: connect.NewClient[DispatchRequest, Session](httpClient, baseURL+DispatchProcedure, opts...),
		get:      connect.NewClient[SessionRequest, Session](httpClient, baseURL+GetProcedure, opts...),
		close:    connect.NewClient[CloseRequest, CloseResponse](httpClient, baseURL+CloseProcedure, opts...),
	}
}

func (c *Client) Open(ctx context.Context, req OpenRequest) (*Session, error) {
	resp, err := c.open.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return nil, err
	}
	return restore(resp.Msg), nil
}

func (c *Client) Dispatch(ctx context.Context, sessionID string, action Action) (*Session, error) {
	resp, err := c.dispatch.CallUnary(ctx, connect.NewRequest(&DispatchRequest{
		SessionID: sessionID,
		Action:    action,
	}))
	if err != nil {
		return nil, err
	}
	return restore(resp.Msg), nil
}

func (c *Client) Get(ctx context.Context, sessionID string) (*Session, error) {
	resp, err := c.get.CallUnary(ctx, connect.NewRequest(&SessionRequest{SessionID: sessionID}))
	if err != nil {
		return nil, err
	}
	return restore(resp.Msg), nil
}

// Close ends the session; with checkpoint set the server saves it first and
// the returned ID can be passed to Open as CheckpointID.
func (c *Client) Close(ctx context.Context, sessionID string, checkpoint bool) (string, error) {
	resp, err := c.close.CallUnary(ctx, connect.NewRequest(&CloseRequest{
		SessionID:  sessionID,
		Checkpoint: checkpoint,
	}))
	if err != nil {
		return "", err
	}
	return resp.Msg.CheckpointID, nil
}

// restore reattaches the initial values to the decoded view so the per-field
// pristine helpers work on the client.
func restore(s *Session) *Session {
	s.View = form.RestoreView(s.View.FormState, s.InitialValues)
	return s
}
