package notice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd_CollectsUniqueMessages(t *testing.T) {
	ctx, n := With(context.Background())

	Add(ctx, "drafts reset")
	Add(ctx, "drafts reset")
	Add(ctx, "stories reset")

	assert.Equal(t, []string{"drafts reset", "stories reset"}, n.Messages())
	assert.Equal(t, n.Messages(), From(ctx))
}

func TestAdd_WithoutCollector(t *testing.T) {
	ctx := context.Background()

	Add(ctx, "lost")

	assert.Nil(t, From(ctx))
}
