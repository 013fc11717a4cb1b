// Copyright 2024 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package check

import (
	"context"
	"net"
	"net/http"
	"time"

	cerror "github.com/pingcap/chunkdeque/pkg/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const metricsServerShutdownTimeout = 5 * time.Second

type metricsServer struct {
	srv  *http.Server
	addr string
	done chan struct{}
}

func startMetricsServer(addr string, registry *prometheus.Registry) (*metricsServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrMetricsServer, err, addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: l.Addr().String(),
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		log.Info("start metrics server", zap.String("addr", s.addr))
		if err := s.srv.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server exited", zap.String("addr", s.addr), zap.Error(err))
		}
	}()
	return s, nil
}

func (s *metricsServer) close() {
	ctx, cancel := context.WithTimeout(context.Background(), metricsServerShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown metrics server failed", zap.String("addr", s.addr), zap.Error(err))
	}
	<-s.done
}
