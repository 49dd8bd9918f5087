package utils

import "go.uber.org/zap"

func SetupLogger() *zap.SugaredLogger {
	logger := zap.Must(zap.NewDevelopment())
	sugar := logger.Sugar()

	return sugar
}

func SetupLoggerWithLevel(level string) *zap.SugaredLogger {
	var parsedLevel, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return SetupLogger()
	}

	var cfg = zap.NewDevelopmentConfig()
	cfg.Level = parsedLevel
	logger := zap.Must(cfg.Build())

	return logger.Sugar()
}
