package validation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/primer-ml/primer/internal/dataset"
	"github.com/primer-ml/primer/internal/nn"
	"github.com/primer-ml/primer/internal/optim"
	"github.com/primer-ml/primer/internal/train"
)

// ModelFactory builds a fresh, untrained model plus its optimizer.
//
// Every protocol run calls the factory once per fold, so no weights
// leak between folds.
type ModelFactory func() (*nn.Sequential, optim.Optimizer)

// FoldScore is the validation result of a single fold.
type FoldScore struct {
	Iteration int
	Fold      int
	Score     train.Score
}

// Result aggregates the outcome of a protocol run.
//
// Final holds the model retrained on all non-test data, when the
// protocol performs that retraining step.
type Result struct {
	Folds []FoldScore
	Mean  train.Score
	Test  *train.Score
	Final *nn.Sequential
}

// meanScore averages fold scores.
func meanScore(folds []FoldScore) train.Score {
	var mean train.Score
	for _, f := range folds {
		mean.Loss += f.Score.Loss
		mean.Accuracy += f.Score.Accuracy
	}
	n := float32(len(folds))
	mean.Loss /= n
	mean.Accuracy /= n
	return mean
}

// RunHoldOut evaluates the model with simple hold-out validation.
//
// A fresh model is trained on the training split and scored on the
// held-out validation split. The model is then retrained from scratch
// on training+validation and, when test is non-nil, scored on it.
func RunHoldOut(factory ModelFactory, data, test *dataset.Dataset, valSize int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	split, err := HoldOut(data.Len(), valSize, config.Seed)
	if err != nil {
		return nil, err
	}

	model, opt := factory()
	trainer := train.NewTrainer(model, opt, logger)
	trainer.Fit(data.Subset(split.Train), nil, config)
	valScore := trainer.Evaluate(data.Subset(split.Val), config.BatchSize)

	logger.Info("hold-out validation complete",
		zap.Float32("val_loss", valScore.Loss),
		zap.Float32("val_acc", valScore.Accuracy))

	result := &Result{
		Folds: []FoldScore{{Iteration: 0, Fold: 0, Score: valScore}},
		Mean:  valScore,
	}

	// Hyperparameters are settled at this point, so the validation data
	// goes back into the pot for the final model.
	finalModel, finalOpt := factory()
	finalTrainer := train.NewTrainer(finalModel, finalOpt, logger)
	finalTrainer.Fit(data, nil, config)
	result.Final = finalModel

	if test != nil {
		testScore := finalTrainer.Evaluate(test, config.BatchSize)
		result.Test = &testScore
		logger.Info("test evaluation complete",
			zap.Float32("test_loss", testScore.Loss),
			zap.Float32("test_acc", testScore.Accuracy))
	}

	return result, nil
}

// RunKFold evaluates the model with K-fold cross-validation.
//
// K fresh models are trained, one per fold, and the mean of the K
// validation scores is the headline metric. Afterwards a final model
// is retrained on all of data and scored on test when test is non-nil.
func RunKFold(factory ModelFactory, data, test *dataset.Dataset, k int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	splits, err := KFold(data.Len(), k, config.Seed)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for fold, split := range splits {
		model, opt := factory()
		trainer := train.NewTrainer(model, opt, logger)
		trainer.Fit(data.Subset(split.Train), nil, config)
		score := trainer.Evaluate(data.Subset(split.Val), config.BatchSize)

		logger.Info("fold complete",
			zap.Int("fold", fold+1),
			zap.Int("folds", k),
			zap.Float32("val_loss", score.Loss),
			zap.Float32("val_acc", score.Accuracy))

		result.Folds = append(result.Folds, FoldScore{Iteration: 0, Fold: fold, Score: score})
	}
	result.Mean = meanScore(result.Folds)

	logger.Info("k-fold cross-validation complete",
		zap.Int("folds", k),
		zap.Float32("mean_val_loss", result.Mean.Loss),
		zap.Float32("mean_val_acc", result.Mean.Accuracy))

	finalModel, finalOpt := factory()
	finalTrainer := train.NewTrainer(finalModel, finalOpt, logger)
	finalTrainer.Fit(data, nil, config)
	result.Final = finalModel

	if test != nil {
		testScore := finalTrainer.Evaluate(test, config.BatchSize)
		result.Test = &testScore
	}

	return result, nil
}

// RunIteratedKFold evaluates the model with iterated K-fold validation:
// p repetitions of K-fold with a different shuffle each time, p*k
// trained models in total.
//
// Expensive but low-variance; the headline metric is the grand mean
// over all p*k fold scores.
func RunIteratedKFold(factory ModelFactory, data, test *dataset.Dataset, k, p int,
	config train.FitConfig, logger *zap.Logger) (*Result, error) {

	if logger == nil {
		logger = zap.NewNop()
	}

	splits, err := IteratedKFold(data.Len(), k, p, config.Seed)
	if err != nil {
		return nil, err
	}
	if len(splits) != p*k {
		return nil, fmt.Errorf("validation: expected %d splits, got %d", p*k, len(splits))
	}

	result := &Result{}
	for i, split := range splits {
		iteration := i / k
		fold := i % k

		model, opt := factory()
		trainer := train.NewTrainer(model, opt, logger)
		trainer.Fit(data.Subset(split.Train), nil, config)
		score := trainer.Evaluate(data.Subset(split.Val), config.BatchSize)

		logger.Info("fold complete",
			zap.Int("iteration", iteration+1),
			zap.Int("iterations", p),
			zap.Int("fold", fold+1),
			zap.Int("folds", k),
			zap.Float32("val_loss", score.Loss),
			zap.Float32("val_acc", score.Accuracy))

		result.Folds = append(result.Folds, FoldScore{Iteration: iteration, Fold: fold, Score: score})
	}
	result.Mean = meanScore(result.Folds)

	logger.Info("iterated k-fold validation complete",
		zap.Int("runs", len(result.Folds)),
		zap.Float32("mean_val_loss", result.Mean.Loss),
		zap.Float32("mean_val_acc", result.Mean.Accuracy))

	finalModel, finalOpt := factory()
	finalTrainer := train.NewTrainer(finalModel, finalOpt, logger)
	finalTrainer.Fit(data, nil, config)
	result.Final = finalModel

	if test != nil {
		testScore := finalTrainer.Evaluate(test, config.BatchSize)
		result.Test = &testScore
	}

	return result, nil
}
