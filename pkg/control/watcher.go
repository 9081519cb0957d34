package control

import (
	"context"
	"encoding/json"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"k8s.io/klog/v2"

	"Stylus/pkg/tracelog"
)

// DefaultConfigKey is the etcd key the watcher follows when the daemon
// does not override it.
const DefaultConfigKey = "/stylus/tracelog/config"

// writerConfig is the JSON document stored under the config key.
type writerConfig struct {
	StagingDir       string `json:"staging_dir"`
	MaxFileSizeBytes uint64 `json:"max_file_size_bytes"`
}

// ConfigWatcher mirrors an etcd key into the session configuration, so
// a fleet of writers can be re-pointed without addressing each control
// subject.
type ConfigWatcher struct {
	cli     *clientv3.Client
	key     string
	session *tracelog.Session
}

func NewConfigWatcher(endpoints []string, key string, session *tracelog.Session) (*ConfigWatcher, error) {
	if key == "" {
		key = DefaultConfigKey
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &ConfigWatcher{cli: cli, key: key, session: session}, nil
}

// Run applies the current value once, then follows updates until ctx is
// cancelled. Bad documents are logged and skipped.
func (w *ConfigWatcher) Run(ctx context.Context) {
	resp, err := w.cli.Get(ctx, w.key)
	if err != nil {
		klog.Errorf("control: get %s: %v", w.key, err)
	} else if len(resp.Kvs) > 0 {
		w.apply(resp.Kvs[0].Value)
	}
	for wresp := range w.cli.Watch(ctx, w.key) {
		if err := wresp.Err(); err != nil {
			klog.Errorf("control: watch %s: %v", w.key, err)
			continue
		}
		for _, ev := range wresp.Events {
			if ev.Type == clientv3.EventTypePut {
				w.apply(ev.Kv.Value)
			}
		}
	}
}

func (w *ConfigWatcher) apply(value []byte) {
	var cfg writerConfig
	if err := json.Unmarshal(value, &cfg); err != nil {
		klog.Errorf("control: bad config document under %s: %v", w.key, err)
		return
	}
	if err := w.session.Configure(cfg.StagingDir, cfg.MaxFileSizeBytes); err != nil {
		klog.Errorf("control: apply config: %v", err)
	}
}

func (w *ConfigWatcher) Close() error {
	return w.cli.Close()
}
