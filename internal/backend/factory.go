package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expensesync/internal/remote"
	"expensesync/internal/remote/gcs"
	"expensesync/internal/remote/memory"
	"expensesync/internal/remote/supabase"
)

// memoryBaseURL prefixes public URLs handed out by the in-memory object store.
const memoryBaseURL = "http://localhost"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend builds the remote data service and the object store. A
// supabase remote and a supabase object store share one client.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var client *supabase.Client
	if config.Remote == SupabaseRemote || config.ObjectStore == SupabaseObjects {
		var err error
		client, err = supabase.New(supabase.Options{
			URL:         config.SupabaseURL,
			Key:         config.SupabaseKey,
			AccessToken: config.SupabaseAccessToken,
			Bucket:      config.SupabaseBucket,
			Timeout:     config.HTTPTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
		}
		f.logger.Info("Initialized Supabase client",
			"url", config.SupabaseURL,
			"authenticated", client.UserID() != "")
	}

	result := &Result{}

	switch config.Remote {
	case SupabaseRemote:
		result.Remote = client
	case MemoryRemote:
		result.Remote = memory.New()
		f.logger.Info("Initialized memory remote")
	default:
		return nil, fmt.Errorf("unsupported remote backend: %s", config.Remote)
	}

	objects, err := f.createObjectStore(ctx, config, client)
	if err != nil {
		return nil, err
	}
	result.Objects = objects

	return result, nil
}

func (f *DefaultFactory) createObjectStore(ctx context.Context, config Config, client *supabase.Client) (remote.ObjectStore, error) {
	switch config.ObjectStore {
	case SupabaseObjects:
		return client, nil
	case GCSObjects:
		store, err := gcs.New(ctx, config.GCSBucket, config.GCSCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS object store: %w", err)
		}
		f.logger.Info("Initialized GCS object store", "bucket", config.GCSBucket)
		return store, nil
	case MemoryObjects:
		bucket := config.SupabaseBucket
		if bucket == "" {
			bucket = supabase.DefaultBucket
		}
		f.logger.Info("Initialized memory object store", "bucket", bucket)
		return memory.NewObjectStore(memoryBaseURL, bucket), nil
	default:
		return nil, fmt.Errorf("unsupported object store: %s", config.ObjectStore)
	}
}
