package config

import (
	"os"
	"strconv"
)

// FromEnv applies environment variable overrides on top of cfg.
// Unset or unparsable variables leave the config untouched.
func FromEnv(cfg Config) Config {
	if dir := os.Getenv("TASKBOARD_DATA_DIR"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if val := getEnvInt("TASKBOARD_QUOTA_BYTES"); val > 0 {
		cfg.Storage.QuotaBytes = val
	}
	if val := getEnvInt("TASKBOARD_ACTIVITY_CAP"); val > 0 {
		cfg.Limits.ActivityCap = val
	}
	if val := getEnvInt("TASKBOARD_MAX_TAGS"); val > 0 {
		cfg.Limits.MaxTags = val
	}
	if val := getEnvInt("TASKBOARD_MAX_TAG_LEN"); val > 0 {
		cfg.Limits.MaxTagLen = val
	}
	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
