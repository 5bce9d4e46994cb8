package codec

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region types
// ModelInfo is the model shape and parameters reported by Describe.
type ModelInfo struct {
	InputSize    int       `json:"input_size"`
	LearningRate float64   `json:"learning_rate"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	LogEntries   int       `json:"log_entries"`
}
// #endregion types

// #region client-struct
// ClassifierClient calls a remote Classifier service.
type ClassifierClient struct {
	conn grpc.ClientConnInterface
	own  *grpc.ClientConn
}
// #endregion client-struct

// #region constructor
// NewClassifierClient connects to a Classifier server at addr.
func NewClassifierClient(addr string) (*ClassifierClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &ClassifierClient{conn: conn, own: conn}, nil
}

// NewClassifierClientWithConn uses an existing connection, which the caller
// keeps ownership of.
func NewClassifierClientWithConn(conn grpc.ClientConnInterface) *ClassifierClient {
	return &ClassifierClient{conn: conn}
}
// #endregion constructor

// #region close
// Close shuts down the connection if the client opened it.
func (c *ClassifierClient) Close() error {
	if c.own == nil {
		return nil
	}
	return c.own.Close()
}
// #endregion close

// #region predict
// Predict sends inputs to the remote model.
func (c *ClassifierClient) Predict(ctx context.Context, inputs []float64) (perceptron.Label, error) {
	in := &structpb.ListValue{Values: make([]*structpb.Value, len(inputs))}
	for i, x := range inputs {
		in.Values[i] = structpb.NewNumberValue(x)
	}
	out := new(wrapperspb.Int32Value)
	if err := c.conn.Invoke(ctx, predictMethod, in, out); err != nil {
		return 0, fmt.Errorf("predict rpc: %w", err)
	}
	return perceptron.Label(out.GetValue()), nil
}
// #endregion predict

// #region describe
// Describe fetches the remote model parameters.
func (c *ClassifierClient) Describe(ctx context.Context) (ModelInfo, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, describeMethod, &emptypb.Empty{}, out); err != nil {
		return ModelInfo{}, fmt.Errorf("describe rpc: %w", err)
	}

	f := out.GetFields()
	info := ModelInfo{
		InputSize:    int(f["input_size"].GetNumberValue()),
		LearningRate: f["learning_rate"].GetNumberValue(),
		Bias:         f["bias"].GetNumberValue(),
		LogEntries:   int(f["log_entries"].GetNumberValue()),
	}
	for _, v := range f["weights"].GetListValue().GetValues() {
		info.Weights = append(info.Weights, v.GetNumberValue())
	}
	return info, nil
}
// #endregion describe
