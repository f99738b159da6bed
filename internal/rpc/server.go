package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service"
)

// #region server-struct
// Server adapts service.Service to IngestServer.
type Server struct {
	svc    *service.Service
	store  *diagnostics.Store // optional; each call becomes a run when set
	logger *zap.Logger
}

// NewServer wraps svc. store may be nil.
func NewServer(svc *service.Service, store *diagnostics.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, store: store, logger: logger}
}

var _ IngestServer = (*Server)(nil)
// #endregion server-struct

// #region grpc-server
// NewGRPCServer builds a grpc.Server with the ingest and health services.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logInterceptor(srv.logger)))
	gs := grpc.NewServer(opts...)
	RegisterIngestServer(gs, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs
}

// Serve listens on addr until ctx is cancelled, then stops gracefully.
func Serve(ctx context.Context, addr string, srv *Server) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	gs := NewGRPCServer(srv)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-done:
		}
	}()
	defer close(done)

	srv.logger.Info("ingest server listening", zap.String("addr", lis.Addr().String()))
	if err := gs.Serve(lis); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func logInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logger.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}
// #endregion grpc-server

// #region handlers
func (s *Server) ListSpectra(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, err := requireString(req, "category")
	if err != nil {
		return nil, err
	}
	files, err := s.scoped(methodListSpectra).ListSpectra(category)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"files": files})
}

func (s *Server) PreviewSpectra(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	category, err := requireString(req, "category")
	if err != nil {
		return nil, err
	}
	id, err := requireString(req, "id")
	if err != nil {
		return nil, err
	}
	limit := int(req.GetFields()["limit"].GetNumberValue())
	p, err := s.scoped(methodPreviewSpectra).PreviewSpectra(category, id, limit)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(p)
}

func (s *Server) Coverage(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	antibody := req.GetFields()["antibody"].GetStringValue()
	sets, err := s.scoped(methodCoverage).Coverage(antibody)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"datasets": sets})
}

func (s *Server) Indicator(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, err := requireString(req, "key")
	if err != nil {
		return nil, err
	}
	ds, err := s.scoped(methodIndicator).Indicator(ctx, key)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(ds)
}

func (s *Server) Indicators(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sets, failures := s.scoped(methodIndicators).Indicators(ctx)
	failed := make([]FailureView, len(failures))
	for i, f := range failures {
		failed[i] = FailureView{Key: f.Key, Error: f.Err.Error(), NotFound: ingesterr.IsNotFound(f.Err)}
	}
	return encode(map[string]any{"indicators": sets, "failures": failed})
}

func (s *Server) Efficiency(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	records, err := s.scoped(methodEfficiency).Efficiency()
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"records": records})
}
// #endregion handlers

// #region helpers

// scoped returns a service whose diagnostics also land in a fresh store run.
func (s *Server) scoped(method string) *service.Service {
	if s.store == nil {
		return s.svc
	}
	run, err := s.store.BeginRun("rpc " + method)
	if err != nil {
		s.logger.Error("begin diagnostics run", zap.String("method", method), zap.Error(err))
		return s.svc
	}
	return s.svc.WithRecorder(run)
}

func requireString(req *structpb.Struct, field string) (string, error) {
	v := req.GetFields()[field].GetStringValue()
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "missing %s", field)
	}
	return v, nil
}

// encode converts any JSON-marshalable value into a Struct.
func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "unmarshal response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build struct: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	if ingesterr.IsNotFound(err) {
		return status.Error(codes.NotFound, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// #endregion helpers
