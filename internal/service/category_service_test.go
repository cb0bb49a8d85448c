package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
)

var errCategoryNotFound = fmt.Errorf("category: %w", apperrors.ErrNotFound)

func TestCategoryService_CreateThenList(t *testing.T) {
	repo := new(MockCategoryRepository)
	var stored []model.Category
	repo.On("FindByName", mock.Anything, "Electronics").Return(nil, errCategoryNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).
		Run(func(args mock.Arguments) {
			c := args.Get(1).(*model.Category)
			c.ID = uuid.New()
			stored = append(stored, *c)
		}).Return(nil)
	svc := NewCategoryService(repo, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), "Electronics")
	require.NoError(t, err)
	assert.Equal(t, "electronics", created.Slug)

	repo.On("List", mock.Anything).Return(stored, nil)
	categories, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Electronics", categories[0].Name)
	assert.Equal(t, "electronics", categories[0].Slug)
}

func TestCategoryService_Create(t *testing.T) {
	existing := &model.Category{ID: uuid.New(), Name: "Books", Slug: "books"}

	tests := []struct {
		name          string
		input         string
		setupMock     func(*MockCategoryRepository)
		expectedError error
		status        int
	}{
		{
			name:      "name required",
			input:     "  ",
			setupMock: func(m *MockCategoryRepository) {},
			status:    http.StatusUnauthorized,
		},
		{
			name:  "already exists",
			input: "Books",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByName", mock.Anything, "Books").Return(existing, nil)
			},
			expectedError: apperrors.ErrCategoryExists,
		},
		{
			name:  "lookup failure",
			input: "Books",
			setupMock: func(m *MockCategoryRepository) {
				m.On("FindByName", mock.Anything, "Books").Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCategoryRepository)
			tt.setupMock(repo)
			svc := NewCategoryService(repo, nil, zap.NewNop())

			_, err := svc.Create(context.Background(), tt.input)

			require.Error(t, err)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			}
			if tt.status != 0 {
				verr, ok := apperrors.AsValidation(err)
				require.True(t, ok)
				assert.Equal(t, "Name is required", verr.Message)
				assert.Equal(t, tt.status, verr.Status)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCategoryService_UpdateRederivesSlug(t *testing.T) {
	id := uuid.New()
	category := &model.Category{ID: id, Name: "Phones", Slug: "phones"}
	repo := new(MockCategoryRepository)
	repo.On("FindByID", mock.Anything, id).Return(category, nil)
	repo.On("Update", mock.Anything, category).Return(nil)

	updated, err := NewCategoryService(repo, nil, zap.NewNop()).Update(context.Background(), id, "Smart Phones")

	require.NoError(t, err)
	assert.Equal(t, "Smart Phones", updated.Name)
	assert.Equal(t, "smart-phones", updated.Slug)
	repo.AssertExpectations(t)
}

func TestCategoryService_Delete(t *testing.T) {
	id := uuid.New()
	repo := new(MockCategoryRepository)
	repo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, NewCategoryService(repo, nil, zap.NewNop()).Delete(context.Background(), id))
	repo.AssertExpectations(t)
}
