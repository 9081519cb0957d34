package app

import (
	"context"
	"net/http"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"Stylus/cmd/tracelog/app/options"
	"Stylus/pkg/control"
	"Stylus/pkg/tracelog"
)

type TraceLogServer struct {
	session *tracelog.Session
	ctl     *control.Server
	watcher *control.ConfigWatcher
	nats    *natssrv.Server
	http    *http.Server
	opts    *options.Options

	watchCancel context.CancelFunc
}

func NewTraceLogServer(opts *options.Options) *TraceLogServer {
	s := new(TraceLogServer)
	s.session = tracelog.NewSession(opts.NewStore(), opts.GetWriterOpts())
	s.opts = opts
	return s
}

func (s *TraceLogServer) Run() error {
	klog.Info("Run trace log writer server")
	klog.Info("Staging dir: ", s.opts.GetWriterOpts().StagingDir)
	klog.Info("Max file pages: ", s.opts.GetWriterOpts().MaxFilePages())

	natsURL := s.opts.GetNatsURL()
	if s.opts.IsNatsEmbedded() {
		ns, err := natssrv.NewServer(&natssrv.Options{
			Port: s.opts.GetNatsPort(),
		})
		if err != nil {
			klog.Fatalf("failed to create nats server: %v", err)
		}
		go ns.Start()
		if !ns.ReadyForConnections(10 * time.Second) {
			klog.Fatalf("nats server not ready")
		}
		s.nats = ns
		natsURL = ns.ClientURL()
		klog.Infoln("Embedded NATS listen on: ", natsURL)
	}

	ctl, err := control.NewServer(natsURL, s.opts.GetControlSubject(), s.session)
	if err != nil {
		klog.Fatalf("failed to connect control plane: %v", err)
	}
	if err := ctl.Start(); err != nil {
		klog.Fatalf("failed to start control server: %v", err)
	}
	s.ctl = ctl

	if eps := s.opts.GetEtcdEndpoints(); len(eps) > 0 {
		w, err := control.NewConfigWatcher(eps, s.opts.GetEtcdKey(), s.session)
		if err != nil {
			klog.Errorln("config watcher disabled: ", err)
		} else {
			s.watcher = w
			ctx, cancel := context.WithCancel(context.Background())
			s.watchCancel = cancel
			go w.Run(ctx)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s.http = &http.Server{Addr: s.opts.GetMetricsAddr(), Handler: mux}

	klog.Infoln("Metrics listen on: ", s.opts.GetMetricsAddr())
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		klog.Fatalf("failed to serve: %s", err)
	}
	return nil
}

func (s *TraceLogServer) Shutdown() error {
	if s.http != nil {
		_ = s.http.Close()
	}
	if s.watchCancel != nil {
		s.watchCancel()
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.ctl != nil {
		_ = s.ctl.Close()
	}
	if err := s.session.Close(); err != nil {
		klog.Errorln("close session err: ", err)
	}
	if s.nats != nil {
		s.nats.Shutdown()
	}
	return nil
}
