package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileJSON(t *testing.T) {
	path := writeSchemaFile(t, "schema.json", `{
  "name": "discord",
  "primary_key": ["id"],
  "tables": [
    {
      "name": "discord__channels",
      "columns": [
        {"name": "permission_overwrites", "data_type": "complex", "nullable": true}
      ]
    }
  ],
  "propagation": {
    "root": {"_dlt_id": "_dlt_root_id"},
    "tables": [
      {"table": "discord__channels", "mapping": {"guild_id": "_guild"}}
    ]
  }
}`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "discord", s.Name())
	assert.True(t, s.IsComplex("discord__channels", "permission_overwrites"))
	assert.Equal(t, []string{"id"}, s.PrimaryKey("discord"))
	assert.Equal(t, map[string]string{"guild_id": "_guild"}, s.TablePropagation("discord__channels"))
}

func TestLoadFileHCL(t *testing.T) {
	path := writeSchemaFile(t, "schema.hcl", `
name        = "events"
primary_key = ["id"]

table "events__slots" {
  column "payload" {
    data_type = "complex"
    nullable  = true
  }
}

propagation {
  root = {
    "_dlt_id" = "_dlt_root_id"
  }

  table "events__slots" {
    mapping = {
      "slot" = "_slot"
    }
  }
}
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "events", s.Name())
	assert.True(t, s.IsComplex("events__slots", "payload"))
	assert.Equal(t, map[string]string{"_dlt_id": "_dlt_root_id"}, s.RootPropagation())
	assert.Equal(t, map[string]string{"slot": "_slot"}, s.TablePropagation("events__slots"))
}

func TestLoadFileUnsupportedFormat(t *testing.T) {
	path := writeSchemaFile(t, "schema.yaml", "name: x\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileBadPropagationTarget(t *testing.T) {
	path := writeSchemaFile(t, "schema.json", `{
  "name": "x",
  "propagation": {"root": {"ts": "_dlt_list_idx"}}
}`)
	_, err := LoadFile(path)
	assert.Error(t, err)
}
