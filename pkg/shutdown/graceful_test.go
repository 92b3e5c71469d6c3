package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopRunsAllInOrder(t *testing.T) {
	var order []string
	first := Func(func(context.Context) error {
		order = append(order, "server")
		return errors.New("busy")
	})
	second := Func(func(context.Context) error {
		order = append(order, "cache")
		return nil
	})

	err := Stop(context.Background(), first, nil, second)
	assert.EqualError(t, err, "busy")
	assert.Equal(t, []string{"server", "cache"}, order)

	assert.NoError(t, Stop(context.Background()))
}
