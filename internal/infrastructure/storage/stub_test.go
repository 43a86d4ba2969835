package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubImageStorage_PutImage(t *testing.T) {
	s := NewStubImageStorage()

	url, err := s.PutImage(context.Background(), "products/a.jpg", "image/jpeg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/a.jpg", url)

	data, ok := s.Object("products/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = s.PutImage(context.Background(), "", "image/jpeg", nil)
	assert.Error(t, err)
}
