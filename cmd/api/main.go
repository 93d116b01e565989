package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisutil "github.com/kthomas/go-redisutil"

	"github.com/hyli-org/attest/common"
	"github.com/hyli-org/attest/prover"
)

func main() {
	common.Log.Debug("installing API listener")

	if common.CacheEnabled {
		redisutil.RequireRedis()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	prover.InstallAPI(r)

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}

	go func() {
		common.Log.Debugf("attest API listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.Log.Panicf("failed to serve attest API; %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.Log.Debug("shutting down attest API")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.Log.Warningf("failed to gracefully shut down attest API; %s", err.Error())
	}
}
