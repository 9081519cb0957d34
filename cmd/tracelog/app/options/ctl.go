package options

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"

	"Stylus/pkg/control"
	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
)

// CtlOptions carries the connection flags shared by the control
// subcommands.
type CtlOptions struct {
	natsURL string
	subject string
	timeout time.Duration
}

func NewCtlOptions() *CtlOptions {
	return &CtlOptions{
		natsURL: nats.DefaultURL,
		subject: control.DefaultSubject,
		timeout: 5 * time.Second,
	}
}

// NewTriggerOptions allows a wait long enough for a full load test run,
// the writer acks only after the loop finishes.
func NewTriggerOptions() *CtlOptions {
	o := NewCtlOptions()
	o.timeout = 10 * time.Minute
	return o
}

func (o *CtlOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.natsURL, "nats-url", o.natsURL,
		"NATS server URL of the writer's control plane")
	fs.StringVar(&o.subject, "control-subject", o.subject,
		"NATS subject the writer listens on")
	fs.DurationVar(&o.timeout, "timeout", o.timeout,
		"How long to wait for the acknowledgement")
}

func (o *CtlOptions) Validate() []error {
	errs := []error{}
	if o.natsURL == "" {
		errs = append(errs, fmt.Errorf("nats-url must not be empty"))
	}
	return errs
}

func (o *CtlOptions) GetNatsURL() string {
	return o.natsURL
}

func (o *CtlOptions) GetSubject() string {
	return o.subject
}

func (o *CtlOptions) GetTimeout() time.Duration {
	return o.timeout
}

// RegisterOptions adds the register payload flags.
type RegisterOptions struct {
	CtlOptions

	stagingDir   string
	maxFileBytes uint64
}

func NewRegisterOptions() *RegisterOptions {
	return &RegisterOptions{
		CtlOptions:   *NewCtlOptions(),
		maxFileBytes: common.DefaultMaxFilePages * pagestore.PageSize,
	}
}

func (o *RegisterOptions) AddFlags(fs *pflag.FlagSet) {
	o.CtlOptions.AddFlags(fs)
	fs.StringVar(&o.stagingDir, "staging-dir", o.stagingDir,
		"Directory the writer should create trace files in")
	fs.Uint64Var(&o.maxFileBytes, "max-file-size", o.maxFileBytes,
		"Maximum trace file size in bytes")
}

func (o *RegisterOptions) Validate() []error {
	errs := o.CtlOptions.Validate()
	if o.stagingDir == "" {
		errs = append(errs, fmt.Errorf("staging-dir is required"))
	}
	if o.maxFileBytes < pagestore.PageSize {
		errs = append(errs, fmt.Errorf("max-file-size %d is below one page (%d)",
			o.maxFileBytes, pagestore.PageSize))
	}
	return errs
}

func (o *RegisterOptions) GetStagingDir() string {
	return o.stagingDir
}

func (o *RegisterOptions) GetMaxFileBytes() uint64 {
	return o.maxFileBytes
}
