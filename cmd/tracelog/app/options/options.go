package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"Stylus/pkg/control"
	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
)

const (
	PageStoreFile = "file"
	PageStoreMmap = "mmap"
)

type Options struct {
	writerOpts *common.Options

	pageStore      string
	natsEmbedded   bool
	natsPort       int
	natsURL        string
	controlSubject string
	metricsAddr    string
	etcdEndpoints  []string
	etcdKey        string
}

func New() *Options {
	return &Options{
		writerOpts:     common.NewDefaultOptions(),
		pageStore:      PageStoreFile,
		natsEmbedded:   true,
		natsPort:       4222,
		controlSubject: control.DefaultSubject,
		metricsAddr:    ":9090",
		etcdKey:        control.DefaultConfigKey,
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {

	fs.StringVar(&o.writerOpts.StagingDir, "staging-dir", o.writerOpts.StagingDir,
		"Directory trace files are created in")
	fs.Uint64Var(&o.writerOpts.MaxFileBytes, "max-file-size", o.writerOpts.MaxFileBytes,
		"Maximum trace file size in bytes, rounded down to whole pages")
	fs.BoolVar(&o.writerOpts.SyncWrites, "sync-writes", o.writerOpts.SyncWrites,
		"Enable sync writes")
	fs.StringVar(&o.pageStore, "page-store", o.pageStore,
		"Page store backend, one of: file, mmap")

	fs.BoolVar(&o.natsEmbedded, "nats-embedded", o.natsEmbedded,
		"Run an embedded NATS server for the control plane")
	fs.IntVar(&o.natsPort, "nats-port", o.natsPort,
		"Listen port of the embedded NATS server")
	fs.StringVar(&o.natsURL, "nats-url", o.natsURL,
		"External NATS server URL, used when --nats-embedded=false")
	fs.StringVar(&o.controlSubject, "control-subject", o.controlSubject,
		"NATS subject control messages arrive on")

	fs.StringVar(&o.metricsAddr, "metrics-addr", o.metricsAddr,
		"Prometheus metrics listen address")

	fs.StringSliceVar(&o.etcdEndpoints, "etcd-endpoints", o.etcdEndpoints,
		"Etcd endpoints for the runtime config watcher, empty disables it")
	fs.StringVar(&o.etcdKey, "etcd-key", o.etcdKey,
		"Etcd key holding the writer config document")
}

// Validate will check the requirements of options
func (o *Options) Validate() []error {
	errs := []error{}
	if o.pageStore != PageStoreFile && o.pageStore != PageStoreMmap {
		errs = append(errs, fmt.Errorf("unknown page store %q", o.pageStore))
	}
	if o.writerOpts.MaxFileBytes < pagestore.PageSize {
		errs = append(errs, fmt.Errorf("max-file-size %d is below one page (%d)",
			o.writerOpts.MaxFileBytes, pagestore.PageSize))
	}
	return errs
}

func (o *Options) GetWriterOpts() *common.Options {
	return o.writerOpts
}

// NewStore builds the page store backend selected by --page-store.
func (o *Options) NewStore() pagestore.Store {
	if o.pageStore == PageStoreMmap {
		return pagestore.NewMmapStore(o.writerOpts.SyncWrites)
	}
	return pagestore.NewFileStore(o.writerOpts.SyncWrites)
}

func (o *Options) IsNatsEmbedded() bool {
	return o.natsEmbedded
}

func (o *Options) GetNatsPort() int {
	return o.natsPort
}

func (o *Options) GetNatsURL() string {
	return o.natsURL
}

func (o *Options) GetControlSubject() string {
	return o.controlSubject
}

func (o *Options) GetMetricsAddr() string {
	return o.metricsAddr
}

func (o *Options) GetEtcdEndpoints() []string {
	return o.etcdEndpoints
}

func (o *Options) GetEtcdKey() string {
	return o.etcdKey
}
