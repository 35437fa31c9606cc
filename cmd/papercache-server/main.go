/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/papercache/papercache/internal/allocator"
	"github.com/papercache/papercache/internal/banner"
	"github.com/papercache/papercache/internal/cache"
	"github.com/papercache/papercache/internal/config"
	"github.com/papercache/papercache/internal/engine"
	"github.com/papercache/papercache/internal/metrics"
	"github.com/papercache/papercache/internal/server"
	"github.com/papercache/papercache/internal/vault"
	"github.com/papercache/papercache/internal/version"
)

const envConfigPath = "PAPERCACHE_CONFIG"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath   string
		slowTierPath string
		slowTierCap  int64
		dramLimit    int64
		metricsAddr  string
		quiet        bool
		logLevel     string
		logFormat    string
	)

	cmd := &cobra.Command{
		Use:     "papercache-server",
		Short:   "PaperCache networked in-memory cache server",
		Version: version.Get(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv(envConfigPath)
			}
			if configPath == "" {
				return fmt.Errorf("no config file given (use --config or %s)", envConfigPath)
			}
			return run(cmd.Context(), runOptions{
				configPath:   configPath,
				slowTierPath: slowTierPath,
				slowTierCap:  slowTierCap,
				dramLimit:    dramLimit,
				metricsAddr:  metricsAddr,
				quiet:        quiet,
				logLevel:     logLevel,
				logFormat:    logFormat,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the key=value config file (env "+envConfigPath+")")
	cmd.Flags().StringVar(&slowTierPath, "slow-tier-path", "", "file path backing the slow/persistent allocator tier")
	cmd.Flags().Int64Var(&slowTierCap, "slow-tier-capacity", 0, "byte capacity of the slow allocator tier")
	cmd.Flags().Int64Var(&dramLimit, "dram-limit", 256<<20, "byte budget of the fast/DRAM allocator tier")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "bind address for the /metrics admin endpoint (disabled if empty)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the startup banner")
	cmd.Flags().StringVar(&logLevel, "log.level", "info", "log level (panic, fatal, error, warn, info, debug, trace)")
	cmd.Flags().StringVar(&logFormat, "log.format", "text", "log output format (text, json)")

	return cmd
}

type runOptions struct {
	configPath   string
	slowTierPath string
	slowTierCap  int64
	dramLimit    int64
	metricsAddr  string
	quiet        bool
	logLevel     string
	logFormat    string
}

func run(ctx context.Context, opts runOptions) error {
	log := newLogger(opts.logLevel, opts.logFormat)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	alloc := allocator.New(opts.dramLimit, opts.slowTierPath, opts.slowTierCap)
	defer alloc.Close()

	eng, err := engine.New(engine.Config{
		MaxSize:       cfg.MaxSize.Uint64(),
		AllowedPolicy: cfg.AllowedPolicy,
		InitialPolicy: cfg.InitialPolicy,
		Version:       version.Get(),
		Alloc:         alloc,
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	facade := cache.NewFacade(eng)
	v := vault.New(facade, cfg.AuthTokenHash)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	ln, err := server.New(addr, cfg.MaxConnections, v, version.Get(), log)
	if err != nil {
		return err
	}

	banner.Print(os.Stdout, opts.quiet, banner.Info{
		Version:        version.Get(),
		Addr:           ln.Addr().String(),
		MaxSize:        cfg.MaxSize.String(),
		InitialPolicy:  cfg.InitialPolicy.String(),
		MaxConnections: cfg.MaxConnections,
	})

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.metricsAddr != "" {
		collector := metrics.New()
		go observeLoop(runCtx, collector, facade, alloc, ln)
		go func() {
			if err := collector.Serve(runCtx, opts.metricsAddr); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	log.WithField("addr", ln.Addr().String()).Info("papercache listening")
	return ln.Run(runCtx)
}

func observeLoop(ctx context.Context, collector *metrics.Collector, facade *cache.Facade, alloc *allocator.Allocator, ln *server.Listener) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collector.Observe(facade.Stats())
			collector.SetConnections(ln.Connections())
			collector.SetDRAMUsed(alloc.DRAMUsed())
		}
	}
}

func newLogger(level, format string) *logrus.Logger {
	log := logrus.New()

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
