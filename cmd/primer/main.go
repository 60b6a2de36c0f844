// Package main provides the primer training CLI.
//
// Commands:
//
//	train     train a model with hold-out validation and score it on the test set
//	crossval  evaluate a model with k-fold or iterated k-fold cross-validation
//	runs      list persisted experiment results
//	version   show version
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/primer-ml/primer/internal/config"
	"github.com/primer-ml/primer/internal/dataset"
	"github.com/primer-ml/primer/internal/logging"
	"github.com/primer-ml/primer/internal/model"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
	"github.com/primer-ml/primer/internal/store"
	"github.com/primer-ml/primer/internal/train"
	"github.com/primer-ml/primer/internal/validation"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = runTrain(os.Args[2:])
	case "crossval":
		err = runCrossval(os.Args[2:])
	case "runs":
		err = runList(os.Args[2:])
	case "version":
		fmt.Printf("primer %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("primer - convolutional networks with principled model evaluation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      train with hold-out validation, then score on the test set")
	fmt.Println("  crossval   k-fold or iterated k-fold cross-validation")
	fmt.Println("  runs       list persisted experiment results")
	fmt.Println("  version    show version")
}

// loadConfig parses the shared flags of train/crossval and merges them
// over the config file (or defaults when no file is given).
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	configPath := fs.String("config", "", "YAML config file")
	dataDir := fs.String("data", "", "directory with MNIST IDX files (empty: synthetic data)")
	modelName := fs.String("model", "", "model architecture: convnet or mlp")
	epochs := fs.Int("epochs", 0, "training epochs")
	batchSize := fs.Int("batch-size", 0, "mini-batch size")
	optimizer := fs.String("optimizer", "", "optimizer: sgd or adam")
	lr := fs.Float64("lr", 0, "learning rate")
	seed := fs.Int64("seed", 0, "random seed")
	folds := fs.Int("folds", 0, "number of folds (crossval)")
	iterations := fs.Int("iterations", 0, "k-fold iterations (crossval)")
	valSize := fs.Int("val-size", 0, "hold-out validation size (train)")
	resultsDB := fs.String("results-db", "", "SQLite file for experiment results")
	logFile := fs.String("log-file", "", "rotating log file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags set on the command line win over the file.
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *modelName != "" {
		cfg.Model = *modelName
	}
	if *epochs > 0 {
		cfg.Epochs = *epochs
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if *optimizer != "" {
		cfg.Optimizer = *optimizer
	}
	if *lr > 0 {
		cfg.LR = float32(*lr)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *folds > 0 {
		cfg.Folds = *folds
	}
	if *iterations > 0 {
		cfg.Iterations = *iterations
	}
	if *valSize > 0 {
		cfg.ValSize = *valSize
	}
	if *resultsDB != "" {
		cfg.ResultsDB = *resultsDB
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	return cfg, cfg.Validate()
}

// loadData returns the train and test datasets per the config. Without
// a data directory a synthetic dataset is generated and the test set
// is nil.
func loadData(cfg *config.Config, logger *zap.Logger) (trainSet, testSet *dataset.Dataset, err error) {
	if cfg.DataDir == "" {
		logger.Info("no data directory, generating synthetic dataset",
			zap.Int("samples", cfg.Synthetic))
		return dataset.Synthetic(cfg.Synthetic, cfg.NumClasses, cfg.Seed), nil, nil
	}

	trainSet, err = dataset.LoadMNIST(cfg.DataDir, true)
	if err != nil {
		return nil, nil, err
	}
	testSet, err = dataset.LoadMNIST(cfg.DataDir, false)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("dataset loaded",
		zap.Int("train_samples", trainSet.Len()),
		zap.Int("test_samples", testSet.Len()))
	return trainSet, testSet, nil
}

// modelFactory builds the fresh-model factory the protocols require.
// Each invocation re-seeds the weights, so folds never share state.
func modelFactory(cfg *config.Config) validation.ModelFactory {
	return func() (*nn.Sequential, optim.Optimizer) {
		var m *nn.Sequential
		switch cfg.Model {
		case "mlp":
			m = model.NewMLP(cfg.NumClasses, cfg.Seed)
		default:
			m = model.NewConvNet(cfg.NumClasses, cfg.Seed)
		}

		var opt optim.Optimizer
		switch cfg.Optimizer {
		case "adam":
			opt = optim.NewAdam(m.Parameters(), optim.AdamConfig{LR: cfg.LR})
		default:
			opt = optim.NewSGD(m.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
		}
		return m, opt
	}
}

func fitConfig(cfg *config.Config) train.FitConfig {
	return train.FitConfig{
		Epochs:    cfg.Epochs,
		BatchSize: cfg.BatchSize,
		Seed:      cfg.Seed,
	}
}

func configSummary(cfg *config.Config) string {
	return fmt.Sprintf("model=%s optimizer=%s lr=%g epochs=%d batch=%d seed=%d",
		cfg.Model, cfg.Optimizer, cfg.LR, cfg.Epochs, cfg.BatchSize, cfg.Seed)
}

// persistResult writes a protocol result to the results database, when
// one is configured.
func persistResult(cfg *config.Config, protocol string, result *validation.Result, logger *zap.Logger) error {
	if cfg.ResultsDB == "" {
		return nil
	}

	db, err := store.Open(cfg.ResultsDB)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.BeginRun(protocol, cfg.Model, configSummary(cfg))
	if err != nil {
		return err
	}
	for _, fold := range result.Folds {
		if err := db.RecordFold(runID, fold.Iteration, fold.Fold,
			float64(fold.Score.Loss), float64(fold.Score.Accuracy)); err != nil {
			return err
		}
	}

	var testLoss, testAcc *float64
	if result.Test != nil {
		l, a := float64(result.Test.Loss), float64(result.Test.Accuracy)
		testLoss, testAcc = &l, &a
	}
	if err := db.FinishRun(runID, float64(result.Mean.Loss), float64(result.Mean.Accuracy),
		testLoss, testAcc); err != nil {
		return err
	}

	logger.Info("results persisted", zap.Int64("run_id", runID), zap.String("db", cfg.ResultsDB))
	return nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{File: cfg.LogFile})
	defer logger.Sync()

	trainSet, testSet, err := loadData(cfg, logger)
	if err != nil {
		return err
	}

	valSize := cfg.ValSize
	if valSize >= trainSet.Len() {
		valSize = trainSet.Len() / 5
		logger.Warn("val_size too large for dataset, shrinking",
			zap.Int("val_size", valSize))
	}

	sample := trainSet.SampleShape()
	m, _ := modelFactory(cfg)()
	fmt.Println(m.Summary(sample))

	result, err := validation.RunHoldOut(modelFactory(cfg), trainSet, testSet,
		valSize, fitConfig(cfg), logger)
	if err != nil {
		return err
	}

	fmt.Printf("validation: loss=%.4f accuracy=%.4f\n", result.Mean.Loss, result.Mean.Accuracy)
	if result.Test != nil {
		fmt.Printf("test:       loss=%.4f accuracy=%.4f\n", result.Test.Loss, result.Test.Accuracy)
	}

	return persistResult(cfg, "holdout", result, logger)
}

func runCrossval(args []string) error {
	fs := flag.NewFlagSet("crossval", flag.ExitOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if cfg.Protocol == "holdout" {
		cfg.Protocol = "kfold"
	}
	if cfg.Iterations > 1 {
		cfg.Protocol = "iterated-kfold"
	}

	logger := logging.New(logging.Options{File: cfg.LogFile})
	defer logger.Sync()

	trainSet, testSet, err := loadData(cfg, logger)
	if err != nil {
		return err
	}

	var result *validation.Result
	switch cfg.Protocol {
	case "iterated-kfold":
		result, err = validation.RunIteratedKFold(modelFactory(cfg), trainSet, testSet,
			cfg.Folds, cfg.Iterations, fitConfig(cfg), logger)
	default:
		result, err = validation.RunKFold(modelFactory(cfg), trainSet, testSet,
			cfg.Folds, fitConfig(cfg), logger)
	}
	if err != nil {
		return err
	}

	for _, fold := range result.Folds {
		fmt.Printf("iteration %d fold %d: loss=%.4f accuracy=%.4f\n",
			fold.Iteration+1, fold.Fold+1, fold.Score.Loss, fold.Score.Accuracy)
	}
	fmt.Printf("mean over %d folds: loss=%.4f accuracy=%.4f\n",
		len(result.Folds), result.Mean.Loss, result.Mean.Accuracy)
	if result.Test != nil {
		fmt.Printf("test: loss=%.4f accuracy=%.4f\n", result.Test.Loss, result.Test.Accuracy)
	}

	return persistResult(cfg, cfg.Protocol, result, logger)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	resultsDB := fs.String("results-db", "results.db", "SQLite file with experiment results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := store.Open(*resultsDB)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, run := range runs {
		status := "running"
		scores := ""
		if run.FinishedAt != nil {
			status = "finished"
			if run.MeanLoss != nil && run.MeanAcc != nil {
				scores = fmt.Sprintf(" loss=%.4f acc=%.4f", *run.MeanLoss, *run.MeanAcc)
			}
			if run.TestAcc != nil {
				scores += fmt.Sprintf(" test_acc=%.4f", *run.TestAcc)
			}
		}
		fmt.Printf("#%d %s %s [%s]%s  %s\n",
			run.ID, run.Protocol, run.Model, status, scores, run.Config)
	}
	return nil
}
