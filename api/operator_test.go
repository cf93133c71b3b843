package api_test

import (
	"context"
	"testing"

	"github.com/korylprince/library-desk-server/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorLifecycle(t *testing.T) {
	db := newTestDB(t)

	var id int64
	require.NoError(t, inTx(t, db, func(ctx context.Context) (err error) {
		id, err = api.CreateOperatorWithCredentials(ctx, "desk@library.test", "hunter2", "Front Desk")
		return err
	}))

	err := inTx(t, db, func(ctx context.Context) error {
		_, err := api.CreateOperatorWithCredentials(ctx, "desk@library.test", "other", "Second Desk")
		return err
	})
	require.Error(t, err)
	assert.Equal(t, api.ErrorTypeDuplicate, api.ErrorTypeOf(err))
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, id, apiErr.DuplicateID)

	require.NoError(t, inTx(t, db, func(ctx context.Context) error {
		op, err := api.ReadOperator(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, op)
		assert.Equal(t, "Front Desk", op.Name)
		assert.NoError(t, op.Authenticate("hunter2"))
		assert.Error(t, op.Authenticate("wrong"))

		err = op.ChangePassword(ctx, "wrong", "new")
		assert.Equal(t, api.ErrorTypeValidation, api.ErrorTypeOf(err))
		return op.ChangePassword(ctx, "hunter2", "correct horse")
	}))

	require.NoError(t, inTx(t, db, func(ctx context.Context) error {
		op, err := api.ReadOperatorByEmail(ctx, "desk@library.test")
		require.NoError(t, err)
		assert.NoError(t, op.Authenticate("correct horse"))
		return nil
	}))
}

func TestOperatorValidation(t *testing.T) {
	db := newTestDB(t)

	err := inTx(t, db, func(ctx context.Context) error {
		_, err := api.CreateOperatorWithCredentials(ctx, "not an email", "pw", "Desk")
		return err
	})
	assert.Equal(t, api.ErrorTypeValidation, api.ErrorTypeOf(err))

	err = inTx(t, db, func(ctx context.Context) error {
		_, err := api.CreateOperatorWithCredentials(ctx, "desk@library.test", "", "Desk")
		return err
	})
	assert.Equal(t, api.ErrorTypeValidation, api.ErrorTypeOf(err))
}

func TestEnsureOperator(t *testing.T) {
	db := newTestDB(t)

	var first, second int64
	var created bool
	require.NoError(t, inTx(t, db, func(ctx context.Context) (err error) {
		first, created, err = api.EnsureOperator(ctx, "admin@library.test", "pw", "Admin")
		return err
	}))
	assert.True(t, created)

	require.NoError(t, inTx(t, db, func(ctx context.Context) (err error) {
		second, created, err = api.EnsureOperator(ctx, "admin@library.test", "ignored", "Admin")
		return err
	}))
	assert.False(t, created)
	assert.Equal(t, first, second)
}
