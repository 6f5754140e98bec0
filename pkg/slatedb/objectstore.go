package slatedb

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ObjectStoreConfig describes an S3-compatible bucket. Credentials reach the
// engine through a short-lived env file, never as call arguments.
type ObjectStoreConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	AllowHTTP       bool
}

// Env returns the provider variables the engine reads for this store.
func (c ObjectStoreConfig) Env() (map[string]string, error) {
	if c.Bucket == "" {
		return nil, fmt.Errorf("%w: object store bucket is required", ErrInvalidArgument)
	}
	env := map[string]string{
		"CLOUD_PROVIDER": "aws",
		"AWS_BUCKET":     c.Bucket,
	}
	optional := map[string]string{
		"AWS_REGION":            c.Region,
		"AWS_ENDPOINT_URL":      c.Endpoint,
		"AWS_ACCESS_KEY_ID":     c.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": c.SecretAccessKey,
	}
	for k, v := range optional {
		if v != "" {
			env[k] = v
		}
	}
	if c.AllowHTTP {
		env["AWS_ALLOW_HTTP"] = "true"
	}
	return env, nil
}

// writeArtifact writes the env file and returns its path. The file is only
// readable by the current user.
func (c ObjectStoreConfig) writeArtifact() (string, error) {
	env, err := c.Env()
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp("", "slatedb-*.env")
	if err != nil {
		return "", fmt.Errorf("slatedb: create object store env file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	if err := godotenv.Write(env, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("slatedb: write object store env file: %w", err)
	}
	return path, nil
}
