package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/willofcode/flowmind/internal/api"
	"github.com/willofcode/flowmind/internal/cli"
	"github.com/willofcode/flowmind/internal/logger"
)

type ServeCmd struct {
	Addr            string        `help:"Listen address. Defaults to FLOWMIND_HTTP_ADDR."`
	ShutdownTimeout time.Duration `help:"How long in-flight requests may take after a shutdown signal." default:"10s"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTPAddr
	}

	eng, cal, release, err := ctx.Engine(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	defer release()

	httpServer := api.New(eng, cal).Server(addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr,
			"calendar", ctx.Config.Calendar, "markers", ctx.Config.MarkerBackend,
			"generative", ctx.Config.GenerativeEnabled())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	fmt.Printf("flowmind listening on %s\n", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down gracefully")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	fmt.Println("flowmind stopped")
	return nil
}
