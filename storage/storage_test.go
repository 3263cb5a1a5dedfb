package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		stores, err := Open(context.Background(), &core.Config{Storage: core.StorageMemory}, true)
		require.NoError(t, err)
		assert.Equal(t, core.StorageMemory, stores.Backend)

		ctx := context.Background()
		err = stores.Transactor.RunInTx(ctx, func(ctx context.Context) error {
			_, err := stores.Students.CreateStudent(ctx, student.Student{FirstName: "Ama", LastName: "Mensah", GradeLevel: 7})
			return err
		})
		require.NoError(t, err)
		got, err := stores.Students.QueryStudents(ctx, nil, nil)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, stores.Close(ctx))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(context.Background(), &core.Config{Storage: "sqlite"}, false)
		assert.EqualError(t, err, `unknown storage backend "sqlite"`)
	})
}
