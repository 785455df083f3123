package main

import (
	"fmt"
	"os"

	"tradinganalysis/cmd/fetchcandles"
	"tradinganalysis/cmd/scheduler"
	"tradinganalysis/src/database"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Trading Analysis CMD"
	app.Usage = "The trading analysis command line interface"

	app.Commands = []cli.Command{
		schedulerCMD,
		fetchCandlesCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	schedulerCMD = cli.Command{
		Name:        "scheduler",
		Usage:       "run the candle ingestion scheduler",
		Action:      schedulerAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the periodic candle ingestion and signal generation beat`,
	}
	fetchCandlesCMD = cli.Command{
		Name:        "fetch_candles",
		Usage:       "fetch candles for one symbol",
		Action:      fetchCandlesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run a single fetch-and-store cycle for the symbol in $SYMBOL`,
	}
)

func schedulerAction(_ *cli.Context) error {

	logrus.Info("Starting scheduler CMD")

	sched := &scheduler.Scheduler{}
	err := sched.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

// fetchCandlesAction runs one ingestion cycle for a single symbol.
func fetchCandlesAction(_ *cli.Context) error {

	logrus.Info("Starting fetch candles CMD")
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	fetch := &fetchcandles.FetchCandles{
		Log: logrus.WithField("cmd", "fetch_candles"),
	}

	err := fetch.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting fetch candles cmd")
		return err
	}

	return nil
}
