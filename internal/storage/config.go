package storage

import (
	"errors"
	"strings"
)

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// Prefix is prepended to every object key, e.g. "documents/".
	Prefix string
}

// Enabled reports whether an endpoint was configured at all.
func (c *MinIOConfig) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

func (c *MinIOConfig) Validate() error {
	if !c.Enabled() {
		return errors.New("minio endpoint missing")
	}
	if c.Bucket == "" {
		return errors.New("minio bucket missing")
	}
	if strings.HasPrefix(c.Prefix, "/") {
		return errors.New("minio prefix must be relative")
	}
	return nil
}
