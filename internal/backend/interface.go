package backend

import (
	"context"
	"time"

	"expensesync/internal/remote"
)

// Result holds the remote data service and object store chosen by config.
type Result struct {
	Remote  remote.Service
	Objects remote.ObjectStore
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Remote      RemoteType
	ObjectStore ObjectStoreType

	// Supabase specific
	SupabaseURL         string
	SupabaseKey         string
	SupabaseAccessToken string
	SupabaseBucket      string
	HTTPTimeout         time.Duration

	// GCS specific
	GCSBucket          string
	GCSCredentialsFile string
}

type RemoteType string

const (
	MemoryRemote   RemoteType = "memory"
	SupabaseRemote RemoteType = "supabase"
)

func (t RemoteType) String() string {
	return string(t)
}

func (t RemoteType) IsValid() bool {
	switch t {
	case MemoryRemote, SupabaseRemote:
		return true
	default:
		return false
	}
}

type ObjectStoreType string

const (
	SupabaseObjects ObjectStoreType = "supabase"
	GCSObjects      ObjectStoreType = "gcs"
	MemoryObjects   ObjectStoreType = "memory"
)

func (t ObjectStoreType) String() string {
	return string(t)
}

func (t ObjectStoreType) IsValid() bool {
	switch t {
	case SupabaseObjects, GCSObjects, MemoryObjects:
		return true
	default:
		return false
	}
}
