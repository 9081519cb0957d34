package common

import (
	"os"

	"Stylus/pkg/tracelog/pagestore"
)

const (
	// MaxDirPath bounds the staging directory path. The control wire
	// format carries the directory as a fixed field of this size with a
	// forced trailing NUL, so at most MaxDirPath-1 bytes survive.
	MaxDirPath = 256

	DefaultMaxFilePages = 1024
)

type Options struct {
	StagingDir   string `mapstructure:"staging-dir"`
	MaxFileBytes uint64 `mapstructure:"max-file-size"`
	SyncWrites   bool   `mapstructure:"sync-writes"`
}

func NewDefaultOptions() *Options {
	opts := &Options{}
	opts.StagingDir = os.TempDir()
	opts.MaxFileBytes = DefaultMaxFilePages * pagestore.PageSize
	opts.SyncWrites = false
	return opts
}

func (o *Options) MaxFilePages() int64 {
	return int64(o.MaxFileBytes / pagestore.PageSize)
}
