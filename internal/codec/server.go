package codec

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region server-struct
// Server answers Classifier RPCs from an in-process perceptron. Calls are
// serialized because the perceptron has a single owner.
type Server struct {
	mu     sync.Mutex
	model  *perceptron.Perceptron
	logger *slog.Logger
}

// NewServer wraps p. A nil logger uses slog.Default().
func NewServer(p *perceptron.Perceptron, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{model: p, logger: logger}
}
// #endregion server-struct

// #region classify
// Classify predicts the class of inputs. Arity errors wrap
// perceptron.ErrInvalidArgument.
func (s *Server) Classify(inputs []float64) (perceptron.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Predict(inputs)
}

// Info returns a snapshot of the model parameters.
func (s *Server) Info() ModelInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ModelInfo{
		InputSize:    s.model.InputSize(),
		LearningRate: s.model.LearningRate(),
		Weights:      s.model.Weights(),
		Bias:         s.model.Bias(),
		LogEntries:   s.model.LogLen(),
	}
}
// #endregion classify

// #region predict
// Predict classifies a list of numbers.
func (s *Server) Predict(_ context.Context, in *structpb.ListValue) (*wrapperspb.Int32Value, error) {
	inputs := make([]float64, len(in.GetValues()))
	for i, v := range in.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "input %d is not a number", i)
		}
		inputs[i] = n.NumberValue
	}

	label, err := s.Classify(inputs)
	if errors.Is(err, perceptron.ErrInvalidArgument) {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	s.logger.Debug("predict", "inputs", len(inputs), "label", label)
	return wrapperspb.Int32(int32(label)), nil
}
// #endregion predict

// #region describe
// Describe reports the model shape and current parameters.
func (s *Server) Describe(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info := s.Info()
	ws := make([]interface{}, len(info.Weights))
	for i, w := range info.Weights {
		ws[i] = w
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"input_size":    info.InputSize,
		"learning_rate": info.LearningRate,
		"bias":          info.Bias,
		"log_entries":   info.LogEntries,
		"weights":       ws,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
// #endregion describe
