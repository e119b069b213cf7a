package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"rocket-admin/internal/metadata"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("listen: address in use")))
	assert.Equal(t, 1, exitCode(metadata.DatabaseError(errors.New("connection refused"))))
	assert.Equal(t, exitConfig, exitCode(metadata.ConfigError("2 resource configuration problem(s); not serving")))
	assert.Equal(t, exitConfig, exitCode(fmt.Errorf("serve: %w", metadata.ConfigError("bad port"))))
}
