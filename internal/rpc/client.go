package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/coverage"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/efficiency"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/indicator"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/spectrum"
)

// #region types
// IndicatorView is an indicator dataset as seen over the wire. Rows are
// flattened to {"tool": ..., field: value}.
type IndicatorView struct {
	Descriptor indicator.Descriptor        `json:"descriptor"`
	Fields     []string                    `json:"fields"`
	Tools      []string                    `json:"tools"`
	RowsByTool map[string][]map[string]any `json:"rows_by_tool"`
}

// FailureView reports one indicator that could not be parsed.
type FailureView struct {
	Key      string `json:"key"`
	Error    string `json:"error"`
	NotFound bool   `json:"not_found"`
}
// #endregion types

// #region client-struct
// Client calls a remote ingest server.
type Client struct {
	conn grpc.ClientConnInterface
	cc   *grpc.ClientConn // nil when built over an injected connection
}
// #endregion client-struct

// #region constructor
// NewClient connects to the ingest server at addr. Extra dial options are
// appended after the default insecure transport.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn wraps an existing connection. Close is a no-op.
func NewClientWithConn(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.cc == nil {
		return nil
	}
	return c.cc.Close()
}
// #endregion constructor

// #region calls
// ListSpectra lists the spectral files of one category.
func (c *Client) ListSpectra(ctx context.Context, category string) ([]service.SpectrumFile, error) {
	var out struct {
		Files []service.SpectrumFile `json:"files"`
	}
	if err := c.call(ctx, methodListSpectra, map[string]any{"category": category}, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// PreviewSpectra fetches the first limit spectra of a file; limit <= 0 uses
// the server's default.
func (c *Client) PreviewSpectra(ctx context.Context, category, id string, limit int) (spectrum.Preview, error) {
	var out spectrum.Preview
	req := map[string]any{"category": category, "id": id, "limit": limit}
	if err := c.call(ctx, methodPreviewSpectra, req, &out); err != nil {
		return spectrum.Preview{}, err
	}
	return out, nil
}

// Coverage fetches coverage datasets; an empty antibody returns all.
func (c *Client) Coverage(ctx context.Context, antibody string) ([]coverage.Dataset, error) {
	var out struct {
		Datasets []coverage.Dataset `json:"datasets"`
	}
	if err := c.call(ctx, methodCoverage, map[string]any{"antibody": antibody}, &out); err != nil {
		return nil, err
	}
	return out.Datasets, nil
}

// Indicator fetches one indicator by key.
func (c *Client) Indicator(ctx context.Context, key string) (IndicatorView, error) {
	var out IndicatorView
	if err := c.call(ctx, methodIndicator, map[string]any{"key": key}, &out); err != nil {
		return IndicatorView{}, err
	}
	return out, nil
}

// Indicators fetches every registered indicator plus the per-key failures.
func (c *Client) Indicators(ctx context.Context) ([]IndicatorView, []FailureView, error) {
	var out struct {
		Indicators []IndicatorView `json:"indicators"`
		Failures   []FailureView   `json:"failures"`
	}
	if err := c.call(ctx, methodIndicators, nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Indicators, out.Failures, nil
}

// Efficiency fetches the throughput records.
func (c *Client) Efficiency(ctx context.Context) ([]efficiency.Record, error) {
	var out struct {
		Records []efficiency.Record `json:"records"`
	}
	if err := c.call(ctx, methodEfficiency, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}
// #endregion calls

// #region invoke
func (c *Client) call(ctx context.Context, method string, req map[string]any, out any) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, resp); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	data, err := json.Marshal(resp.AsMap())
	if err != nil {
		return fmt.Errorf("%s response: %w", method, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s decode: %w", method, err)
	}
	return nil
}
// #endregion invoke
