// Command test runs a stub market backend for local development: a handful
// of simulated stocks on a random walk, pushed over /ws once per second,
// plus the REST fixtures the sync daemon calls.
package main

import (
	"flag"
	"fmt"

	"market-sync/src/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Parse command line flags
	port := flag.Int("port", 9000, "port to serve the stub backend on")
	tickMs := flag.Int("tick", 1000, "milliseconds between market ticks")
	flag.Parse()

	// 2. Setup Logger
	appLogger := logger.NewLogger("DEBUG", "StubBackend")

	// 3. Simulated market
	market := newMarket(tickDuration(*tickMs))
	go market.run()

	// 4. REST fixtures + push channel
	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	registerRoutes(engine, market, appLogger)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	appLogger.Info("Stub market backend on http://%s (ws at /ws)", addr)
	if err := engine.Run(addr); err != nil {
		appLogger.Critical("Stub backend failed: %v", err)
	}
}
