// Package probcast provides probabilistic forecasting of univariate time series
// with a feed-forward network. Instead of predicting one future path, the
// network fits a Student's t-distribution to every future step, so that samples,
// quantiles and calibrated uncertainty all come from the same model.
//
// Creating Networks
//
// Everything starts from a Config:
//
//	conf := probcast.Config{
//		ContextLength:    24,
//		PredictionLength: 12,
//		HiddenDimensions: []int{40, 40},
//	}
//	net, err := probcast.NewTraining(conf)
//
// Fields left at their zero values fall back to sensible defaults; the ones
// above are the three with no default. The network always consists of the
// configured scaler, a trunk of fully connected blocks, and a projection to
// per-step distribution parameters. The pieces plug in from the subpackages
// "scalers", "layers" and "initializers".
//
// Training
//
// Training mirrors the style of optional arguments in other languages with the
// TrainArgs struct:
//
//	err := net.Train(probcast.TrainArgs{
//		Data:         data,
//		RunCondition: probcast.TrainUntil(5000),
//	})
//
// Data is batched through the DataSupplier interface; Windows builds one from a
// Dataset by drawing random history/future window pairs. Optimizers and
// learning-rate schedules come from the subpackages "optimizers" and
// "hyperparams".
//
// Sampling
//
// Forecasts are drawn from a separate SamplingNetwork, which shares weights
// with a trained network only through an explicit copy:
//
//	sampler, err := probcast.NewSampling(conf)
//	err = sampler.SyncFrom(net)
//	trajectories, err := sampler.Forward(context)
//
// Each series in the batch yields NumSamples independent future trajectories in
// the original scale of the data.
//
// Saving and Loading
//
// Networks are written to a directory:
//
//	err := net.Save(dirPath, false)
//	restored, err := probcast.Load(dirPath, conf)
//
// Load is given the same Config that built the saved network; the directory
// holds the weights and enough topology to refuse a mismatched Config.
package probcast
