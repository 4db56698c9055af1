package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	err := Data("polar %s: row %d", "test.pol", 3)
	assert.True(t, errors.Is(err, ErrData))
	assert.False(t, errors.Is(err, ErrPhysics))
	assert.Equal(t, "data error: polar test.pol: row 3", err.Error())

	wrapped := fmt.Errorf("boat: %w", Physics("speed is NaN"))
	assert.True(t, errors.Is(wrapped, ErrPhysics))
}
