package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/perceptron/internal/codec"
	"github.com/danielpatrickdp/perceptron/internal/dataset"
	"github.com/danielpatrickdp/perceptron/internal/export"
	"github.com/danielpatrickdp/perceptron/internal/logging"
	"github.com/danielpatrickdp/perceptron/internal/perceptron"
	"github.com/danielpatrickdp/perceptron/internal/restapi"
	"github.com/danielpatrickdp/perceptron/internal/store"
	"github.com/danielpatrickdp/perceptron/internal/trainer"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// #region options
type options struct {
	dataPath   string
	xlsxPath   string
	csvPath    string
	dbPath     string
	serveAddr  string
	httpAddr   string
	batch      int
	maxBatches int
	rate       float64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dataPath, "data", envOr("PERCEPTRON_DATA", ""), "JSON fixture (default: built-in reference dataset)")
	flag.StringVar(&o.xlsxPath, "xlsx", envOr("PERCEPTRON_XLSX", "perceptron_training.xlsx"), "spreadsheet output path, empty to skip")
	flag.StringVar(&o.csvPath, "csv", "", "CSV output path")
	flag.StringVar(&o.dbPath, "db", envOr("PERCEPTRON_DB", ""), "SQLite database recording the run")
	flag.StringVar(&o.serveAddr, "serve", envOr("PERCEPTRON_SERVE", ""), "serve the trained model over gRPC at this address")
	flag.StringVar(&o.httpAddr, "http", envOr("PERCEPTRON_HTTP", ""), "serve the trained model over HTTP at this address")
	flag.IntVar(&o.batch, "batch", 0, "generations per batch (overrides fixture)")
	flag.IntVar(&o.maxBatches, "max-batches", -1, "stop after N batches, 0 = unbounded (overrides fixture)")
	flag.Float64Var(&o.rate, "lr", 0, "learning rate (overrides fixture)")
	flag.Parse()
	return o
}
// #endregion options

// #region main
func main() {
	logger := logging.Configure(os.Stderr)
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	fixture := dataset.Reference()
	if opts.dataPath != "" {
		f, err := dataset.LoadFixture(opts.dataPath)
		if err != nil {
			return err
		}
		fixture = f
	}
	if opts.rate != 0 {
		fixture.LearningRate = opts.rate
	}
	if opts.batch > 0 {
		fixture.BatchGenerations = opts.batch
	}
	if opts.maxBatches >= 0 {
		fixture.MaxBatches = opts.maxBatches
	}

	p, err := perceptron.New(fixture.InputSize, fixture.LearningRate)
	if err != nil {
		return fmt.Errorf("create perceptron: %w", err)
	}
	tr := trainer.NewTrainer(p, fixture.TrainerConfig(), logger)

	var st *store.Store
	var runID string
	if opts.dbPath != "" {
		st, err = store.NewStore(opts.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		cfg := tr.Config()
		rec, err := st.CreateRun(store.RunRecord{
			Description:      fixture.Description,
			InputSize:        p.InputSize(),
			LearningRate:     p.LearningRate(),
			BatchGenerations: cfg.BatchGenerations,
			MaxBatches:       cfg.MaxBatches,
			ExampleCount:     len(fixture.Samples),
			Probe:            cfg.Probe,
			Target:           int(cfg.Target),
		})
		if err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		runID = rec.RunID
		logger.Info("recording run", "db", opts.dbPath, "run_id", runID)

		// A batch that finished before a signal is still recorded.
		persistCtx := context.WithoutCancel(ctx)
		persisted := 0
		tr.OnBatch(func(_ int, m *perceptron.Perceptron) error {
			if err := st.AppendLogContext(persistCtx, runID, m.LogSince(persisted)); err != nil {
				return err
			}
			persisted = m.LogLen()
			return nil
		})
	}

	logger.Info("training",
		"examples", len(fixture.Samples),
		"inputs", p.InputSize(),
		"learning_rate", p.LearningRate(),
		"batch_generations", tr.Config().BatchGenerations,
		"max_batches", tr.Config().MaxBatches,
	)
	res, runErr := tr.Run(ctx, fixture.Examples())

	if st != nil {
		if err := st.FinishRun(runID, store.Outcome{
			Batches:   res.Batches,
			Converged: res.Converged,
			Status:    runStatus(res, runErr),
		}); err != nil {
			logger.Error("finish run", "err", err)
		}
	}

	// The log is exported even when the run stopped early.
	if err := exportLog(p.Log(), opts, logger); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}

	if rep, err := trainer.Evaluate(p, fixture.Examples()); err == nil {
		logger.Info("training set accuracy",
			"correct", rep.Correct,
			"total", rep.Total,
			"accuracy", rep.Accuracy,
			"weight_norm", rep.WeightNorm,
		)
	}
	fmt.Printf("converged after %d batches (%d generations): weights=%s bias=%v\n",
		res.Batches, res.Generations, export.FormatVector(p.Weights()), p.Bias())

	if opts.serveAddr != "" || opts.httpAddr != "" {
		return serve(ctx, opts, p, logger)
	}
	return nil
}
// #endregion main

// #region helpers
func runStatus(res trainer.Result, err error) string {
	switch {
	case res.Converged:
		return store.StatusConverged
	case errors.Is(err, trainer.ErrMaxBatches), errors.Is(err, context.Canceled):
		return store.StatusStopped
	default:
		return store.StatusFailed
	}
}

func exportLog(entries []perceptron.LogEntry, opts options, logger *slog.Logger) error {
	var sinks []export.Sink
	if opts.xlsxPath != "" {
		sinks = append(sinks, export.XLSXFile{Path: opts.xlsxPath, Sheet: export.DefaultSheet})
	}
	if opts.csvPath != "" {
		sinks = append(sinks, export.CSVFile{Path: opts.csvPath})
	}
	for _, s := range sinks {
		if err := s.Export(entries); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	logger.Info("exported training log", "entries", len(entries), "xlsx", opts.xlsxPath, "csv", opts.csvPath)
	return nil
}

// serve runs the gRPC and HTTP front ends until ctx is done or one fails.
func serve(ctx context.Context, opts options, p *perceptron.Perceptron, logger *slog.Logger) error {
	model := codec.NewServer(p, logger)
	g, ctx := errgroup.WithContext(ctx)

	if opts.serveAddr != "" {
		lis, err := net.Listen("tcp", opts.serveAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", opts.serveAddr, err)
		}
		srv := grpc.NewServer()
		codec.RegisterClassifierServer(srv, model)
		g.Go(func() error {
			<-ctx.Done()
			srv.GracefulStop()
			return nil
		})
		g.Go(func() error {
			logger.Info("serving classifier", "transport", "grpc", "addr", lis.Addr().String())
			if err := srv.Serve(lis); !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
	}

	if opts.httpAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		hs := &http.Server{Addr: opts.httpAddr, Handler: restapi.NewRouter(model)}
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdown)
		})
		g.Go(func() error {
			logger.Info("serving classifier", "transport", "http", "addr", opts.httpAddr)
			if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
