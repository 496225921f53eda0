package repositories_test

import (
	"fmt"
	"sync"
	"testing"

	"netguard/internal/models"
	"netguard/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *repositories.GORMUserRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repositories.CloseDatabase(db) })
	return repositories.NewGORMUserRepository(db)
}

// implementations runs every assertion against both repository backends.
func implementations(t *testing.T) map[string]repositories.UserRepository {
	return map[string]repositories.UserRepository{
		"gorm":   newSQLiteRepo(t),
		"memory": repositories.NewMemoryUserRepository(),
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "secret"}
			require.NoError(t, repo.Create(user))
			assert.NotZero(t, user.ID)

			got, err := repo.GetByEmail("ada@example.com")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Ada", got.Name)
			assert.Equal(t, "secret", got.Password)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			got, err := repo.GetByEmail("nobody@example.com")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Create(&models.User{Name: "First", Email: "dup@example.com", Password: "one"}))

			err := repo.Create(&models.User{Name: "Second", Email: "dup@example.com", Password: "two"})
			assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

			n, err := repo.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			got, err := repo.GetByEmail("dup@example.com")
			require.NoError(t, err)
			assert.Equal(t, "First", got.Name)
			assert.Equal(t, "one", got.Password)
		})
	}
}

func TestUserRepository_ConcurrentDuplicateInserts(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 8
			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs <- repo.Create(&models.User{Name: fmt.Sprintf("u%d", i), Email: "race@example.com", Password: "pw"})
				}(i)
			}
			wg.Wait()
			close(errs)

			succeeded := 0
			for err := range errs {
				if err == nil {
					succeeded++
				} else {
					assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
				}
			}
			assert.Equal(t, 1, succeeded)

			n, err := repo.Count()
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	_, err := repositories.OpenDatabase("oracle", "whatever")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
