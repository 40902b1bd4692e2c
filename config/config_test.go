package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJSONConfig_RoleTiers(t *testing.T) {
	path := writeConfigFile(t, `{
		"roles": {
			"BaseURL": "https://gateway.example/api",
			"Token": "tok",
			"Tiers": [
				{"Threshold": 1, "Name": "Dawn Walker"},
				{"Threshold": 7, "Name": "Dawn Runner"},
				{"Threshold": 30, "Name": "Dawn Master"}
			]
		}
	}`)

	var out AppConfig
	require.NoError(t, loadJSONConfig(path, &out))

	assert.Equal(t, "https://gateway.example/api", out.RolesBaseURL)
	require.Len(t, out.RoleTiers, 3)
	assert.Equal(t, RoleTier{Threshold: 1, Name: "Dawn Walker"}, out.RoleTiers[0])
	assert.Equal(t, RoleTier{Threshold: 7, Name: "Dawn Runner"}, out.RoleTiers[1])
	assert.Equal(t, RoleTier{Threshold: 30, Name: "Dawn Master"}, out.RoleTiers[2])
}

func TestLoadJSONConfig_RoleTiersSkipsInvalidEntries(t *testing.T) {
	path := writeConfigFile(t, `{
		"roles": {
			"Tiers": [
				{"Threshold": 0, "Name": "no threshold"},
				{"Threshold": 5, "Name": ""},
				"not an object",
				{"Threshold": 10, "Name": "Dawn Keeper"}
			]
		}
	}`)

	var out AppConfig
	require.NoError(t, loadJSONConfig(path, &out))

	require.Len(t, out.RoleTiers, 1)
	assert.Equal(t, RoleTier{Threshold: 10, Name: "Dawn Keeper"}, out.RoleTiers[0])
}

func TestLoadJSONConfig_NoRolesSectionLeavesTiersUnset(t *testing.T) {
	path := writeConfigFile(t, `{"app": {"AppPort": "9090"}}`)

	var out AppConfig
	require.NoError(t, loadJSONConfig(path, &out))

	assert.Equal(t, "9090", out.AppPort)
	assert.Nil(t, out.RoleTiers)
}
