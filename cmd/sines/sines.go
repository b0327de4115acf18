package main

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	pc "github.com/trunghlt/probcast"
	"github.com/trunghlt/probcast/backtest"
	"github.com/trunghlt/probcast/hyperparams"
)

const (
	statusFrequency int = 200
	testFrequency   int = 1000

	// main hyperparameters
	contextLength    int     = 48
	predictionLength int     = 12
	batchSize        int     = 32
	learningRate     float64 = 1e-3
	maxIterations    int     = 5000

	// dataset shape: noisy sine waves, one cycle per day at an hourly period
	numSeries    int = 20
	seriesLength int = 400
	season       int = 24

	// where to save/load the network
	path string = "sines save"
)

func makeDataset(src *rand.Rand) pc.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ds := make(pc.Dataset, numSeries)
	for i := range ds {
		amp := 1 + 4*src.Float64()
		phase := float64(src.Intn(season))

		vs := make([]float64, seriesLength)
		for t := range vs {
			vs[t] = amp * (2 + math.Sin(2*math.Pi*(float64(t)+phase)/float64(season)))
			vs[t] += 0.1 * amp * src.NormFloat64()
		}

		ds[i] = pc.Series{
			Name:   fmt.Sprintf("sine-%d", i),
			Start:  start,
			Period: time.Hour,
			Values: vs,
		}
	}

	return ds
}

func train(net *pc.TrainingNetwork, ds pc.Dataset) {
	trainData, err := pc.Windows(ds, contextLength, predictionLength, batchSize, rand.New(rand.NewSource(1)))
	if err != nil {
		panic(err.Error())
	}

	testData, err := pc.LastWindows(ds, contextLength, predictionLength, batchSize)
	if err != nil {
		panic(err.Error())
	}

	// the CSV lines below already say everything the Info lines would
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	fmt.Println("Starting training...")
	fmt.Println("Iteration, Kind, Loss")

	err = net.Train(pc.TrainArgs{
		Data:         trainData,
		TestData:     testData,
		ShouldTest:   pc.Every(testFrequency),
		SendStatus:   pc.Every(statusFrequency),
		RunCondition: pc.TrainUntil(maxIterations),
		LearningRate: hyperparams.Constant(learningRate),
		Update: func(r pc.Result) {
			kind := "status"
			if r.IsTest {
				kind = "test"
			}
			fmt.Printf("%d, %s, %v\n", r.Iteration, kind, r.Loss)
		},
		Logger: logger,
	})
	if err != nil {
		panic(err.Error())
	}

	fmt.Println("Done training!")
}

func evaluate(net *pc.SamplingNetwork, ds pc.Dataset) {
	fmt.Println("Backtesting...")

	p := backtest.NewPredictor(net).BatchSize(batchSize)
	fs, full, err := backtest.MakeEvaluationPredictions(ds, p)
	if err != nil {
		panic(err.Error())
	}

	m, err := backtest.NewEvaluator().Seasonality(season).Run(fs, full)
	if err != nil {
		panic(err.Error())
	}

	fmt.Printf("MSE:      %v\n", m.MSE)
	fmt.Printf("RMSE:     %v\n", m.RMSE)
	fmt.Printf("ND:       %v\n", m.ND)
	fmt.Printf("sMAPE:    %v\n", m.SMAPE)
	fmt.Printf("MASE:     %v\n", m.MASE)
	fmt.Printf("mean wQL: %v\n", m.MeanWeightedQuantileLoss)
	for _, q := range []float64{0.1, 0.5, 0.9} {
		fmt.Printf("coverage[%v]: %v\n", q, m.Coverage[q])
	}
}

func save(net *pc.TrainingNetwork) {
	fmt.Println("Saving...")
	if err := net.Save(path, true); err != nil {
		panic(err.Error())
	}
	fmt.Println("Done!")
}

func load(conf pc.Config) *pc.SamplingNetwork {
	fmt.Println("Loading...")
	net, err := pc.LoadSampling(path, conf)
	if err != nil {
		panic(err.Error())
	}
	fmt.Println("Done!")

	return net
}

func main() {
	dataset := makeDataset(rand.New(rand.NewSource(0)))

	// hold the last day out of training; the backtest predicts it
	training := make(pc.Dataset, len(dataset))
	for i, s := range dataset {
		training[i] = s
		training[i].Values = s.Values[:len(s.Values)-predictionLength]
	}

	conf := pc.Config{
		ContextLength:    contextLength,
		PredictionLength: predictionLength,
		HiddenDimensions: []int{64, 64},
		BatchNorm:        true,
		NumSamples:       200,
		Seed:             1,
	}

	fmt.Println("Setting up network...")
	net, err := pc.NewTraining(conf)
	if err != nil {
		panic(err.Error())
	}
	fmt.Println("Done!")

	train(net, training)

	sampler, err := pc.NewSampling(conf)
	if err != nil {
		panic(err.Error())
	}
	if err = sampler.SyncFrom(net); err != nil {
		panic(err.Error())
	}

	evaluate(sampler, dataset)

	// a loaded network scores the backtest identically
	save(net)
	evaluate(load(conf), dataset)
}
