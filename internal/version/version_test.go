package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(v, c, b string) { Version, Commit, BuildTime = v, c, b }(Version, Commit, BuildTime)

	Version, Commit, BuildTime = "v0.3.0", "0123456789abcdef", "2026-03-14T09:00:00Z"
	assert.Equal(t, "v0.3.0 (commit: 0123456, built: 2026-03-14T09:00:00Z)", String())

	Commit = "abc"
	assert.Equal(t, "v0.3.0 (commit: abc, built: 2026-03-14T09:00:00Z)", String())
}
