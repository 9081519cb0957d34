package control

import (
	"encoding/json"
	"strings"
	"testing"

	"gotest.tools/assert"

	"Stylus/pkg/tracelog"
	"Stylus/pkg/tracelog/common"
	"Stylus/pkg/tracelog/pagestore"
)

func TestConfigWatcherApply(t *testing.T) {
	dir := t.TempDir()
	session := tracelog.NewSession(pagestore.NewFileStore(false), common.NewDefaultOptions())
	t.Cleanup(func() { _ = session.Close() })

	w := &ConfigWatcher{key: DefaultConfigKey, session: session}
	doc, err := json.Marshal(writerConfig{
		StagingDir:       dir,
		MaxFileSizeBytes: 16 * pagestore.PageSize,
	})
	assert.Assert(t, err == nil, err)
	w.apply(doc)

	session.Start()
	msg, err := session.Alloc(32, tracelog.TypeRaw)
	assert.Assert(t, err == nil, err)
	copy(msg.Bytes(), "from etcd")
	assert.Assert(t, session.Commit() == nil)
	assert.Assert(t, strings.HasPrefix(session.FilePath(), dir))
	assert.Assert(t, session.Stop() == nil)
}

func TestConfigWatcherApplyBadDocument(t *testing.T) {
	session := tracelog.NewSession(pagestore.NewFileStore(false), common.NewDefaultOptions())

	w := &ConfigWatcher{key: DefaultConfigKey, session: session}
	// neither a broken document nor an empty dir may take the writer down
	w.apply([]byte("{"))
	w.apply([]byte(`{"staging_dir":"","max_file_size_bytes":1}`))
}
