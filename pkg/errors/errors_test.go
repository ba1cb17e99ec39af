package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrBatchFull, "morning batch is full")
	require.ErrorIs(t, cloned, ErrBatchFull)
	require.NotErrorIs(t, cloned, ErrEmailExists)

	wrapped := fmt.Errorf("submit: %w", WithCause(ErrPaymentFailed, errors.New("declined")))
	require.ErrorIs(t, wrapped, ErrPaymentFailed)
	require.Equal(t, http.StatusPaymentRequired, FromError(wrapped).Status)
	require.Equal(t, "payment failed, please try again: declined", FromError(wrapped).Error())
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	require.Nil(t, FromError(nil))
	appErr := FromError(errors.New("boom"))
	require.Equal(t, ErrInternal.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)
}

func TestWithFieldsDoesNotMutateOriginal(t *testing.T) {
	withFields := WithFields(ErrValidation, map[string]string{"email": "email must be a valid address"})
	require.Len(t, withFields.Fields, 1)
	require.Nil(t, ErrValidation.Fields)
	require.Nil(t, WithFields(nil, nil))
}
