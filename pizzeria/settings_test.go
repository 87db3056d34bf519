package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Act
	settings, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pizzeria", settings.App.Name)
	assert.Equal(t, "default_token", settings.Pizzeria.AdminToken)
	assert.Equal(t, []string{"Margherita", "Pepperoni"}, settings.Pizzeria.InitialMenu)
	assert.Equal(t, "orders", settings.Pizzeria.SubjectPrefix)
	assert.False(t, settings.Nats.Enabled)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	// Arrange
	t.Setenv("PIZZERIA_PIZZERIA_ADMINTOKEN", "super-secret")
	t.Setenv("PIZZERIA_HTTP_PORT", "9999")

	// Act
	settings, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "super-secret", settings.Pizzeria.AdminToken)
	assert.Equal(t, "9999", settings.HTTP.Port)
}
