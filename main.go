package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tradinganalysis/src/cache"
	"tradinganalysis/src/connectors"
	"tradinganalysis/src/database"
	"tradinganalysis/src/repository"
	"tradinganalysis/src/server"
	"tradinganalysis/src/signals"

	logger "github.com/sirupsen/logrus"
)

var (
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	signalCache, err := cache.NewRedisCacheFromConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create redis cache client")
	}

	chatAI, err := connectors.NewLiaraAIClient()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create AI client")
	}

	deps := server.Dependencies{
		Symbols:      repository.NewSymbolRepository(),
		Candles:      repository.NewCandleRepository(),
		Chat:         repository.NewChatMessageRepository(),
		SignalReader: signals.NewReader(signalCache, repository.NewSignalRepository()),
		ChatAI:       chatAI,
	}

	config := server.GetConfig()
	server.StartServer(config.Port, deps)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
