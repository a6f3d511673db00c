package extract

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comicmeta/cmi/pkg/logger"
)

func passthroughStrategies(names ...string) []Strategy {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		strategies = append(strategies, Strategy{
			Name: name,
			Args: func(archive, dest string) []string {
				return []string{"tool", archive, dest}
			},
		})
	}
	return strategies
}

func TestExtract_FirstSuccessWins(t *testing.T) {
	var calls int

	e := New(time.Minute, logger.GetLogger("test")).
		WithStrategies(passthroughStrategies("first", "second", "third")).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			calls++
			return nil, nil
		})

	tool, err := e.Extract(context.Background(), "vol1.cbr", "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "first", tool)
	assert.Equal(t, 1, calls)
}

func TestExtract_FallsThroughOnFailure(t *testing.T) {
	var calls int

	e := New(time.Minute, logger.GetLogger("test")).
		WithStrategies(passthroughStrategies("first", "second")).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			calls++
			if calls == 1 {
				return []byte("cannot open"), errors.New("exit status 2")
			}
			return nil, nil
		})

	tool, err := e.Extract(context.Background(), "vol1.cbr", "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "second", tool)
	assert.Equal(t, 2, calls)
}

func TestExtract_AllFail(t *testing.T) {
	e := New(time.Minute, logger.GetLogger("test")).
		WithStrategies(passthroughStrategies("first", "second")).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("boom"), errors.New("exit status 2")
		})

	_, err := e.Extract(context.Background(), "vol1.cbr", "/tmp/out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.Contains(t, err.Error(), "boom")
}

func TestListOutput(t *testing.T) {
	var gotName string
	var gotArgs []string

	e := New(time.Minute, logger.GetLogger("test")).
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			gotName = name
			gotArgs = args
			return []byte("Date Time Attr Size Name\npage01.jpg\nThumbs.db\n"), nil
		})

	out, err := e.ListOutput(context.Background(), "vol1.cbr")
	require.NoError(t, err)
	assert.Equal(t, "7z", gotName)
	assert.Equal(t, []string{"l", "vol1.cbr"}, gotArgs)
	assert.Contains(t, out, "Thumbs.db")
}
