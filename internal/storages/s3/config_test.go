package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetDefaults(t *testing.T) {
	cfg := &Config{Region: "eu-west-1"}
	cfg.SetDefaults()
	assert.Equal(t, defaultStorageClass, cfg.StorageClass)
	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, int64(defaultMaxPartSize), cfg.MaxPartSize)

	cfg = &Config{StorageClass: "GLACIER", MaxRetries: 10, MaxPartSize: 1024}
	cfg.SetDefaults()
	assert.Equal(t, "GLACIER", cfg.StorageClass)
	assert.Equal(t, 10, cfg.MaxRetries)
	assert.Equal(t, int64(1024), cfg.MaxPartSize)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	require.Error(t, cfg.Validate())

	cfg.Region = "eu-west-1"
	require.NoError(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Endpoint = "http://localhost:9000"
	require.NoError(t, cfg.Validate())

	cfg.MaxPartSize = -1
	require.Error(t, cfg.Validate())
}
