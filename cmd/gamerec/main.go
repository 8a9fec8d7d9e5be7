// Command gamerec 启动游戏推荐 HTTP 服务。
//
//	gamerec -config config.yaml
//
// 配置也可以完全来自环境变量（MAIN_SERVER_API_BASE_URL、PORT 等）和 .env 文件。
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/server"
	"github.com/rushteam/gamerec/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: $GAMEREC_CONFIG or ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: os.Stderr,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("gamerec exited")
	}
}

func run(cfg *config.Settings) error {
	st, err := store.New(store.Config{
		Driver:    cfg.Store.Driver,
		Addr:      cfg.Store.Addr,
		Password:  cfg.Store.Password,
		DB:        cfg.Store.DB,
		KeyPrefix: cfg.Store.KeyPrefix,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := buildProvider(cfg, st)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, st)
	if err != nil {
		return err
	}

	handler := server.New(eng, provider, server.Config{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.Server.RateLimit,
		TopK:            cfg.Recommend.TopK,
		MaxFilterLength: cfg.Recommend.MaxFilterLength,
		RequestTimeout:  cfg.Server.WriteTimeout,
	}).Router()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("source", provider.Name()).
			Str("store", st.Name()).
			Strs("pipeline", eng.Pipeline().NodeNames()).
			Msg("gamerec listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
