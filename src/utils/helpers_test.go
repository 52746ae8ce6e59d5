package utils

import "market-sync/src/logger"

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "test")
}
