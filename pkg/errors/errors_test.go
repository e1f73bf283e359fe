package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOfWrapped(t *testing.T) {
	base := Wrap(CodeCityNotFound, "City not found", nil)
	wrapped := fmt.Errorf("search: %w", base)

	require.Equal(t, CodeCityNotFound, CodeOf(wrapped))
	require.True(t, IsCode(wrapped, CodeCityNotFound))
	require.False(t, IsCode(wrapped, CodeFetchFailed))
	require.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestMessageOfHidesCause(t *testing.T) {
	err := Wrap(CodeFetchFailed, "Request failed with status code 401", errors.New("upstream body"))

	require.Equal(t, "Request failed with status code 401", MessageOf(err))
	require.Equal(t, "Request failed with status code 401: upstream body", err.Error())
	require.Equal(t, "plain", MessageOf(errors.New("plain")))
	require.Equal(t, "", MessageOf(nil))
}
