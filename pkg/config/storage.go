package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageConfig holds the connection settings for the S3-compatible
// object store that hosts product images.
type StorageConfig struct {
	Endpoint  string        `koanf:"endpoint"`
	AccessKey string        `koanf:"accessKey"`
	SecretKey string        `koanf:"secretKey"`
	Bucket    string        `koanf:"bucket"`
	UseSSL    bool          `koanf:"useSSL"`
	PublicURL string        `koanf:"publicURL"`
	Timeout   time.Duration `koanf:"timeout"`
}

// String returns a string representation of the storage configuration with secrets masked.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", c.Endpoint))
	b.WriteString(fmt.Sprintf("  bucket: %s\n", c.Bucket))
	b.WriteString(fmt.Sprintf("  useSSL: %t\n", c.UseSSL))
	b.WriteString(fmt.Sprintf("  publicURL: %s\n", c.PublicURL))
	b.WriteString("  accessKey: ****\n")
	b.WriteString("  secretKey: ****\n")
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("storage endpoint is not configured")
	}
	if c.Bucket == "" {
		return fmt.Errorf("storage bucket is not configured")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("storage credentials are not configured")
	}
	return nil
}
