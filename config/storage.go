package config

import "sync"

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig
)

type StorageConfig struct {
	// Backend is "s3" or "minio".
	Backend   string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()
		backend := getString("STORAGE_BACKEND", "s3")
		if backend == "minio" {
			storageConfig = &StorageConfig{
				Backend:   backend,
				Endpoint:  getString("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getString("MINIO_ACCESS_KEY", ""),
				SecretKey: getString("MINIO_SECRET_KEY", ""),
				UseSSL:    getBool("MINIO_USE_SSL", false),
			}
			return
		}
		storageConfig = &StorageConfig{
			Backend:   backend,
			Region:    getString("AWS_REGION", "eu-west-1"),
			AccessKey: getString("AWS_ACCESS_KEY", ""),
			SecretKey: getString("AWS_SECRET_KEY", ""),
		}
	})
	return storageConfig
}
