package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tkingovr/context-continuity/api"
	"github.com/tkingovr/context-continuity/internal/config"
	"github.com/tkingovr/context-continuity/internal/engine"
	"github.com/tkingovr/context-continuity/internal/mcp"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Serve the context tools to an MCP client over JSON-RPC on stdin/stdout.

If the engine data stores cannot be opened, the server still starts: the
protocol handshake succeeds, tools/list reports an empty catalog, and tool
calls report the engine as unavailable.`,
	Example: `  contextd serve -c ~/.contextd/config.yaml
  contextd serve --listen 127.0.0.1:7450`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "also serve over WebSocket on this address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Engine construction may fail (missing data dir, bad policy file). The
	// server runs regardless; availability is an explicit state the router
	// branches on, never a half-built engine.
	var facade engine.Facade
	eng, err := engine.New(cfg)
	if err != nil {
		logger.Error("context engine unavailable", "error", err)
	} else {
		facade = eng
		defer func() {
			_ = eng.Close()
		}()
	}

	registry := mcp.NewRegistry()
	info := api.ServerInfo{Name: "context-continuity", Version: version}
	newRouter := func() *mcp.Router {
		return mcp.NewRouter(logger, registry, facade, info)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting MCP server",
		"engine", availability(facade),
		"listen", listenAddr,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		server := mcp.NewServer(logger, newRouter(), os.Stdin, os.Stdout)
		return server.Run(ctx)
	})
	if listenAddr != "" {
		g.Go(func() error {
			return mcp.NewWSListener(logger, listenAddr, newRouter).Listen(ctx)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func availability(f engine.Facade) string {
	if f == nil {
		return "unavailable"
	}
	return "available"
}
