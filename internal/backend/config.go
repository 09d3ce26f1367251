package backend

import (
	"errors"
	"fmt"

	"expensesync/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	cfg := Config{
		Remote:      RemoteType(appConfig.RemoteBackend),
		ObjectStore: ObjectStoreType(appConfig.ObjectStore),

		SupabaseURL:         appConfig.SupabaseURL,
		SupabaseKey:         appConfig.SupabaseKey,
		SupabaseAccessToken: appConfig.SupabaseAccessToken,
		SupabaseBucket:      appConfig.SupabaseBucket,
		HTTPTimeout:         appConfig.HTTPTimeout,

		GCSBucket:          appConfig.GCSBucket,
		GCSCredentialsFile: appConfig.GCSCredentialsFile,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Remote.IsValid() {
		return fmt.Errorf("invalid remote backend: %s", c.Remote)
	}
	if !c.ObjectStore.IsValid() {
		return fmt.Errorf("invalid object store: %s", c.ObjectStore)
	}

	if c.Remote == SupabaseRemote || c.ObjectStore == SupabaseObjects {
		if c.SupabaseURL == "" {
			return errors.New("Supabase URL is required for the supabase backend")
		}
		if c.SupabaseKey == "" {
			return errors.New("Supabase API key is required for the supabase backend")
		}
	}

	if c.ObjectStore == GCSObjects && c.GCSBucket == "" {
		return errors.New("GCS bucket is required for the gcs object store")
	}

	return nil
}

// RemoteTypeStrings returns all valid remote backend names
func RemoteTypeStrings() []string {
	return []string{MemoryRemote.String(), SupabaseRemote.String()}
}

// ObjectStoreTypeStrings returns all valid object store names
func ObjectStoreTypeStrings() []string {
	return []string{SupabaseObjects.String(), GCSObjects.String(), MemoryObjects.String()}
}
