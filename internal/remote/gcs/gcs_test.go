package gcs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), "  ", "", goption.WithoutAuthentication())
	assert.Error(t, err)
}

func TestNewMissingCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), "receipts", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	s, err := New(context.Background(), "receipts", "", goption.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/receipts/e1/a.jpg", s.PublicURL("e1/a.jpg"))
	assert.Equal(t, "https://storage.googleapis.com/receipts/e1/a.jpg", s.PublicURL("/e1/a.jpg"))
}
