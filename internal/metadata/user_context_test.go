package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceContext(t *testing.T) {
	_, ok := ResourceFromContext(context.Background())
	assert.False(t, ok)

	r := simpleResource(t, "cards", Options{})
	got, ok := ResourceFromContext(WithResource(context.Background(), r))
	assert.True(t, ok)
	assert.Same(t, r, got)
}

func TestUserContext(t *testing.T) {
	assert.Nil(t, UserFromContext(context.Background()))
	ctx := WithUser(context.Background(), &UserContext{ID: "u1", Email: "a@b.co"})
	assert.Equal(t, "a@b.co", UserFromContext(ctx).Email)
}
