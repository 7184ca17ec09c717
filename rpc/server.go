// Package rpc serves form sessions over Connect. Each session is a form.Form
// held in server memory; clients open a session, dispatch wire actions to
// it, read its state, and close it.
//
// Messages are plain Go structs encoded with a JSON codec, so any Connect
// client or a bare HTTP POST with Content-Type application/json can call the
// service:
//
//	curl -d '{"definition":"signup"}' -H 'Content-Type: application/json' \
//	    http://127.0.0.1:8080/formstate.v1.FormService/Open
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/formstate/config"
	"github.com/tailored-agentic-units/formstate/form"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/schema"
)

const (
	EventSessionOpen  observability.EventType = "rpc.open"
	EventSessionClose observability.EventType = "rpc.close"
)

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithCatalog makes definitions available to Open by name.
func WithCatalog(catalog *schema.Catalog) ServerOption {
	return func(s *Server) {
		s.catalog = catalog
	}
}

// WithSubmitHandler sets what SUBMIT does with a valid form's values. Without
// one every valid submission succeeds.
func WithSubmitHandler(onSubmit form.OnSubmit) ServerOption {
	return func(s *Server) {
		s.onSubmit = onSubmit
	}
}

// WithServerObserver receives session lifecycle events. Forms use the
// observer named in the form config.
func WithServerObserver(observer observability.Observer) ServerOption {
	return func(s *Server) {
		s.observer = observer
	}
}

// Server holds open sessions keyed by form ID.
type Server struct {
	cfg      config.FormConfig
	catalog  *schema.Catalog
	onSubmit form.OnSubmit
	observer observability.Observer

	sessions map[string]*form.Form
	mu       sync.RWMutex
}

func NewServer(cfg config.FormConfig, opts ...ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		catalog:  schema.NewCatalog(),
		observer: observability.NoOpObserver{},
		sessions: make(map[string]*form.Form),
		onSubmit: func(context.Context, map[string]any) error { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the mount path and handler for the service.
func (s *Server) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	open := connect.NewUnaryHandler(OpenProcedure, s.Open, opts...)
	dispatch := connect.NewUnaryHandler(DispatchProcedure, s.Dispatch, opts...)
	get := connect.NewUnaryHandler(GetProcedure, s.Get, opts...)
	closeSession := connect.NewUnaryHandler(CloseProcedure, s.Close, opts...)

	return "/" + ServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case OpenProcedure:
			open.ServeHTTP(w, r)
		case DispatchProcedure:
			dispatch.ServeHTTP(w, r)
		case GetProcedure:
			get.ServeHTTP(w, r)
		case CloseProcedure:
			closeSession.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

func (s *Server) Open(ctx context.Context, req *connect.Request[OpenRequest]) (*connect.Response[Session], error) {
	f, err := s.openForm(req.Msg)
	if err != nil {
		return nil, connectError(err)
	}

	s.mu.Lock()
	s.sessions[f.ID()] = f
	s.mu.Unlock()

	s.emit(ctx, EventSessionOpen, map[string]any{
		"session":    f.ID(),
		"definition": req.Msg.Definition,
		"resumed":    req.Msg.CheckpointID != "",
	})
	return connect.NewResponse(sessionOf(f, false)), nil
}

func (s *Server) openForm(req *OpenRequest) (*form.Form, error) {
	var def *schema.Definition
	if req.Definition != "" {
		d, ok := s.catalog.Get(req.Definition)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDefinition, req.Definition)
		}
		def = d
	}

	if req.CheckpointID != "" {
		if s.cfg.Checkpoint.Store == "" {
			return nil, form.ErrNoCheckpointStore
		}
		store, err := form.GetCheckpointStore(s.cfg.Checkpoint.Store)
		if err != nil {
			return nil, err
		}
		cp, err := store.Load(req.CheckpointID)
		if err != nil {
			return nil, err
		}
		if def != nil {
			return def.Resume(s.cfg, cp)
		}
		return form.Resume(s.cfg, cp)
	}

	if def != nil {
		return def.Build(s.cfg)
	}
	return form.New(s.cfg, form.WithInitialValues(req.InitialValues))
}

func (s *Server) Dispatch(ctx context.Context, req *connect.Request[DispatchRequest]) (*connect.Response[Session], error) {
	f, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, connectError(err)
	}

	if req.Msg.Action.Type == ActionSubmit {
		err := f.HandleSubmit(ctx, s.onSubmit)
		if err != nil && !errors.Is(err, form.ErrInvalid) {
			return nil, connectError(err)
		}
		return connect.NewResponse(sessionOf(f, true)), nil
	}

	action, err := toAction(req.Msg.Action)
	if err != nil {
		return nil, connectError(err)
	}
	changed := f.Dispatch(action)
	return connect.NewResponse(sessionOf(f, changed)), nil
}

func (s *Server) Get(_ context.Context, req *connect.Request[SessionRequest]) (*connect.Response[Session], error) {
	f, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(sessionOf(f, false)), nil
}

func (s *Server) Close(ctx context.Context, req *connect.Request[CloseRequest]) (*connect.Response[CloseResponse], error) {
	f, err := s.session(req.Msg.SessionID)
	if err != nil {
		return nil, connectError(err)
	}

	resp := &CloseResponse{}
	if req.Msg.Checkpoint {
		cp, err := f.Checkpoint()
		if err != nil {
			return nil, connectError(err)
		}
		resp.CheckpointID = cp.FormID
	}

	s.mu.Lock()
	delete(s.sessions, f.ID())
	s.mu.Unlock()

	s.emit(ctx, EventSessionClose, map[string]any{
		"session":    f.ID(),
		"checkpoint": resp.CheckpointID != "",
	})
	return connect.NewResponse(resp), nil
}

// Sessions lists open session IDs in sorted order.
func (s *Server) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Server) session(id string) (*form.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return f, nil
}

func sessionOf(f *form.Form, changed bool) *Session {
	state := f.State()
	return &Session{
		SessionID:     f.ID(),
		Name:          f.Name(),
		View:          form.Project(state),
		InitialValues: state.InitialValues(),
		Phase:         f.SubmitPhase().String(),
		Changed:       changed,
	}
}

func (s *Server) emit(ctx context.Context, typ observability.EventType, data map[string]any) {
	s.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "rpc.Server",
		Data:      data,
	})
}
