package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/fireclass"
	"github.com/aretw0/fireclass/pkg/adapters/bolt"
	"github.com/aretw0/fireclass/pkg/core"
)

// seed writes a small bolt store and returns its path.
func seed(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.db")

	c, err := bolt.Open(path)
	require.NoError(t, err)
	defer c.Close()

	users := c.Collection("User")
	for id, data := range map[string]map[string]any{
		"u1": {"email_address": "a@b.com", "is_active": true, "tags": []any{"admin"}},
		"u2": {"email_address": "c@d.com", "is_active": false, "tags": []any{}},
		"u3": {"email_address": "e@f.com", "is_active": true, "tags": []any{"ops"}},
	} {
		_, err := users.Doc(id).Create(ctx, data)
		require.NoError(t, err)
	}
	_, err = c.Collection("Account").Doc("a1").Create(ctx, map[string]any{"owner": "u1"})
	require.NoError(t, err)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCollections(t *testing.T) {
	path := seed(t)

	out, err := run(t, "collections", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "Account\nUser\n", out)

	out, err = run(t, "collections", "--path", path, "--match", "U*")
	require.NoError(t, err)
	assert.Equal(t, "User\n", out)

	_, err = run(t, "collections", "--path", path, "--match", "[")
	require.Error(t, err)
}

func TestGet(t *testing.T) {
	path := seed(t)

	out, err := run(t, "get", "User", "u1", "--path", path)
	require.NoError(t, err)

	var doc struct {
		ID   string         `json:"id"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "u1", doc.ID)
	assert.Equal(t, "a@b.com", doc.Data["email_address"])
	assert.Equal(t, true, doc.Data["is_active"])

	out, err = run(t, "get", "User", "u1", "--path", path, "--format", "yaml")
	require.NoError(t, err)
	var ydoc document
	require.NoError(t, yaml.Unmarshal([]byte(out), &ydoc))
	assert.Equal(t, "u1", ydoc.ID)
	assert.Equal(t, "a@b.com", ydoc.Data["email_address"])

	_, err = run(t, "get", "User", "missing", "--path", path)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = run(t, "get", "User", "u1", "--path", path, "--format", "xml")
	require.Error(t, err)
}

func TestQuery(t *testing.T) {
	path := seed(t)

	ids := func(out string) []string {
		var docs []document
		require.NoError(t, json.Unmarshal([]byte(out), &docs))
		var ids []string
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		return ids
	}

	out, err := run(t, "query", "User", "--path", path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, ids(out))

	out, err = run(t, "query", "User", "--path", path, "--where", "is_active == true")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, ids(out))

	out, err = run(t, "query", "User", "--path", path,
		"--where", "is_active == true", "--where", `email_address == "e@f.com"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, ids(out))

	out, err = run(t, "query", "User", "--path", path, "--where", "tags array_contains admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(out))

	out, err = run(t, "query", "User", "--path", path, "--where", "is_active == true", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(out))

	out, err = run(t, "query", "User", "--path", path, "--where", "is_active == nope")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, err = run(t, "query", "User", "--path", path, "--where", "is_active ~ true")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	path := seed(t)

	out, err := run(t, "delete", "User", "u1", "u2", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "Document deleted: User/u1\nDocument deleted: User/u2\n", out)

	_, err = run(t, "get", "User", "u1", "--path", path)
	require.ErrorIs(t, err, core.ErrNotFound)

	out, err = run(t, "delete", "User", "u1", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "Document deleted: User/u1\n", out)
}

func TestConfigFile(t *testing.T) {
	path := seed(t)
	dir := filepath.Dir(path)
	cfg := filepath.Join(dir, "fireclass.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("adapter: bolt\npath: store.db\ntimeout: 2s\n"), 0o644))

	out, err := run(t, "collections", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Account\nUser\n", out)

	c, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Config{Adapter: "bolt", Path: "store.db", Timeout: 2 * time.Second}, c)

	require.NoError(t, os.WriteFile(cfg, []byte("adapter: bolt\ncolour: blue\n"), 0o644))
	_, err = LoadConfig(cfg)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(cfg, nil, 0o644))
	c, err = LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Config{}, c)
}

func TestParseWhere(t *testing.T) {
	tests := []struct {
		expr    string
		want    core.Predicate
		wantErr bool
	}{
		{expr: "is_active == true", want: core.Predicate{Field: "is_active", Op: core.OpEqual, Value: true}},
		{expr: "  age >= 18 ", want: core.Predicate{Field: "age", Op: core.OpGreaterEqual, Value: int64(18)}},
		{expr: `name == "Ada Lovelace"`, want: core.Predicate{Field: "name", Op: core.OpEqual, Value: "Ada Lovelace"}},
		{expr: "tags array_contains admin", want: core.Predicate{Field: "tags", Op: core.OpArrayContains, Value: "admin"}},
		{expr: "nick == null", want: core.Predicate{Field: "nick", Op: core.OpEqual, Value: nil}},
		{expr: "is_active", wantErr: true},
		{expr: "nick > null", wantErr: true},
		{expr: "tags array_contains null", wantErr: true},
		{expr: "is_active ==", wantErr: true},
		{expr: "is_active != true", wantErr: true},
		{expr: `name == "unterminated`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseWhere(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"1.5", 1.5},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"2024-01-02T03:04:05Z", ts},
		{`"42"`, "42"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fireclass version "+fireclass.Version+"\n", out)
}
