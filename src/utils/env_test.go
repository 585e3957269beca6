package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv("TEST_ENV_KEY", "value")

		value, err := GetEnv("TEST_ENV_KEY")
		assert.Nil(t, err)
		assert.Equal(t, "value", value)
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv("TEST_ENV_KEY", "")

		_, err := GetEnv("TEST_ENV_KEY")
		assert.NotNil(t, err)
	})
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("TEST_ENV_KEY", "fallback"))

	t.Setenv("TEST_ENV_KEY", "value")
	assert.Equal(t, "value", GetEnvOrDefault("TEST_ENV_KEY", "fallback"))
}
