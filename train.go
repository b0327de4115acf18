package probcast

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/trunghlt/probcast/hyperparams"
	"github.com/trunghlt/probcast/optimizers"
	"github.com/trunghlt/probcast/penalties"
)

// Result is a wrapper for sending back the progress of training or testing.
type Result struct {
	// The iteration the result is being sent before
	Iteration int

	// Loss is the batch-mean loss: averaged over the training batches since
	// the last status for status results, over the whole testing supplier for
	// test results.
	Loss float64

	// The result is either from a test or a status update
	IsTest bool
}

// TrainArgs is used as a proxy for the type of optional arguments that are
// available in other languages. Only Data and RunCondition are required.
type TrainArgs struct {
	// Data supplies the training batches.
	Data DataSupplier

	// TestData is the source of held-out data while training. This can be nil
	// if ShouldTest is also nil.
	TestData DataSupplier

	// ShouldTest indicates whether testing should be done before the current
	// iteration.
	ShouldTest func(int) bool

	// SendStatus indicates whether to send back the average training loss
	// since the last time 'true' was returned. SendStatus can be left nil to
	// represent an unconditional false.
	//
	// 'true' will be ignored on iteration 0.
	SendStatus func(int) bool

	// RunCondition will be called at each successive iteration to determine if
	// training should continue. Training will stop if 'false' is returned.
	RunCondition func(int) bool

	// LearningRate gives the learning rate at each iteration. Defaults to
	// hyperparams.Constant(1e-3).
	LearningRate hyperparams.Schedule

	// Optimizer constructs one optimizer per parameter tensor, so stateful
	// optimizers keep per-tensor state. Defaults to optimizers.Adam.
	Optimizer func() optimizers.Optimizer

	// Penalty, if not nil, regularizes every gradient before the optimizer
	// sees it.
	Penalty penalties.Penalty

	// Update is how testing and status updates are returned. If both
	// ShouldTest and SendStatus are nil, then Update can also be left nil.
	Update func(Result)

	// Logger receives status and test lines. Defaults to logrus.New().
	Logger *logrus.Logger
}

// Train runs the training loop: fetch a batch, fit distributions, propagate
// the loss, and let one optimizer per parameter tensor apply the updates.
func (t *TrainingNetwork) Train(args TrainArgs) error {
	// handle error cases and set defaults
	{
		if args.Data == nil {
			return NilArgError{"TrainArgs.Data"}
		}

		if args.RunCondition == nil {
			return NilArgError{"TrainArgs.RunCondition"}
		}

		if args.TestData == nil && args.ShouldTest != nil {
			return errors.Errorf("TestData is nil but ShouldTest is not")
		}

		if args.ShouldTest == nil {
			args.ShouldTest = func(int) bool { return false }
		}

		if args.SendStatus == nil {
			args.SendStatus = func(int) bool { return false }
		}

		if args.Update == nil {
			args.Update = func(Result) {}
		}

		if args.LearningRate == nil {
			args.LearningRate = hyperparams.Constant(1e-3)
		}

		if args.Optimizer == nil {
			args.Optimizer = func() optimizers.Optimizer { return optimizers.Adam() }
		}

		if args.Logger == nil {
			args.Logger = logrus.New()
		}
	}

	ps := t.Params()
	opts := make([]optimizers.Optimizer, len(ps))
	for i := range opts {
		opts[i] = args.Optimizer()
	}

	var statusLoss float64
	var statusSize int

	for iter := 0; ; iter++ {
		if args.SendStatus(iter) && iter != 0 && statusSize != 0 {
			r := Result{Iteration: iter, Loss: statusLoss / float64(statusSize)}
			args.Update(r)
			args.Logger.WithFields(logrus.Fields{
				"iter": iter,
				"loss": r.Loss,
			}).Info("Training status")

			statusLoss, statusSize = 0, 0
		}

		if args.ShouldTest(iter) {
			loss, err := t.Test(args.TestData)
			if err != nil {
				return errors.Wrapf(err, "Testing on iteration %d failed", iter)
			}

			args.Update(Result{Iteration: iter, Loss: loss, IsTest: true})
			args.Logger.WithFields(logrus.Fields{
				"iter": iter,
				"loss": loss,
			}).Info("Test result")
		}

		if !args.RunCondition(iter) {
			break
		}

		b, err := args.Data.Get(iter)
		if err != nil {
			return errors.Wrapf(err, "Failed to get training data on iteration %d", iter)
		}

		losses, err := t.Forward(b.Context, b.Target)
		if err != nil {
			return errors.Wrapf(err, "Forward pass failed on iteration %d", iter)
		}

		t.ZeroGrads()
		if err = t.Backward(); err != nil {
			return errors.Wrapf(err, "Backward pass failed on iteration %d", iter)
		}

		lr := args.LearningRate.Value(iter)
		for i, p := range ps {
			grad := func(j int) float64 { return p.Grad[j] }
			if args.Penalty != nil {
				grad = func(j int) float64 { return args.Penalty.Penalize(p.Data[j], p.Grad[j]) }
			}

			add := func(j int, v float64) { p.Data[j] += v }

			if err = opts[i].Run(len(p.Data), grad, add, lr); err != nil {
				return errors.Wrapf(err, "Optimizer failed on %s (iteration %d)", p.Name, iter)
			}
		}

		statusLoss += floats.Sum(losses) / float64(len(losses))
		statusSize++
	}

	return nil
}

// Test averages the loss over everything data supplies, running the network in
// inference mode. Testing touches neither weights nor batch statistics.
func (t *TrainingNetwork) Test(data DataSupplier) (float64, error) {
	if data == nil {
		return 0, NilArgError{"data"}
	}

	var sum float64
	var n int
	for iter := 0; !data.DoneTesting(iter); iter++ {
		b, err := data.Get(iter)
		if err != nil {
			return 0, errors.Wrapf(err, "Failed to get test batch %d", iter)
		}

		losses, err := t.forward(b.Context, b.Target, false)
		if err != nil {
			return 0, errors.Wrapf(err, "Forward pass failed on test batch %d", iter)
		}

		sum += floats.Sum(losses)
		n += len(losses)
	}

	if n == 0 {
		return 0, errors.Errorf("Testing data supplied no batches")
	}

	return sum / float64(n), nil
}

// TrainUntil returns a function that satisfies TrainArgs.RunCondition, stopping
// training after maxIterations.
func TrainUntil(maxIterations int) func(int) bool {
	return func(iteration int) bool {
		return iteration < maxIterations
	}
}

// Every returns a function that satisfies TrainArgs.SendStatus or
// TrainArgs.ShouldTest. 'frequency' is in units of iterations.
//
// this function is self-explanatory from viewing the source
func Every(frequency int) func(int) bool {
	return func(iteration int) bool {
		return iteration%frequency == 0
	}
}
