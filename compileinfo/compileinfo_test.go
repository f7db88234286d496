package compileinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	c := CompileInfo{Package: "sumstats", Version: "(devel)", GoVersion: "go1.24.0", Commit: "abc123", CommitTime: "2024-01-01T00:00:00Z"}
	assert.Equal(t, "This sumstats binary ((devel)) was built with go1.24.0 at commit abc123 at time 2024-01-01T00:00:00Z.", c.String())

	c.Modified = true
	assert.Contains(t, c.String(), "modified after that commit")
}

func TestFields(t *testing.T) {
	assert.Len(t, CompileInfo{}.Fields(), 6)
}

func TestGet(t *testing.T) {
	c := Get()
	assert.NotEmpty(t, c.GoVersion)
}
