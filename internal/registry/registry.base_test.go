package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot_admin/internal/common"
)

func TestRegistry(t *testing.T) {
	t.Run("đăng ký và ghi đè", func(t *testing.T) {
		r := NewRegistry[int]()
		isNew, err := r.Register("a", 1)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = r.Register("a", 2)
		require.NoError(t, err)
		assert.False(t, isNew)

		v, ok := r.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, v)
	})

	t.Run("tên rỗng bị từ chối", func(t *testing.T) {
		r := NewRegistry[int]()
		_, err := r.Register("", 1)
		assert.True(t, errors.Is(err, common.ErrRequiredField))
	})

	t.Run("MustGet trả ErrNotFound", func(t *testing.T) {
		r := NewRegistry[string]()
		_, err := r.MustGet("missing")
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})

	t.Run("GetOrCreate chỉ tạo một lần", func(t *testing.T) {
		r := NewRegistry[int]()
		calls := 0
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = r.GetOrCreate("x", func() (int, error) {
					calls++
					return 42, nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, calls)
	})

	t.Run("Keys sắp xếp và Clear", func(t *testing.T) {
		r := NewRegistry[int]()
		_, _ = r.Register("b", 1)
		_, _ = r.Register("a", 1)
		assert.Equal(t, []string{"a", "b"}, r.Keys())

		cleaned := 0
		deleted, err := r.Clear("a", func(int) error { cleaned++; return nil })
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, 1, cleaned)
		assert.Equal(t, []string{"b"}, r.Keys())
	})
}
