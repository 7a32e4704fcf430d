package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit, BuildTime = "1.2.0", "abc1234", "2025-01-01T00:00:00Z"
	info := Get()

	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "abc1234", info.GitCommit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, "packsmith 1.2.0 (abc1234) built at 2025-01-01T00:00:00Z on "+info.Platform, info.String())
}
