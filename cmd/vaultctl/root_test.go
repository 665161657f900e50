package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/pkg/dto"
)

func TestUploadEvent(t *testing.T) {
	tests := []struct {
		name string
		key  string
		raw  bool
		want string
	}{
		{name: "spaces become plus", key: "holiday/beach photo.jpg", want: "holiday/beach+photo.jpg"},
		{name: "plus is escaped", key: "a+b.png", want: "a%2Bb.png"},
		{name: "raw", key: "a+b.png", raw: true, want: "a+b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := invoke.FirstObject(uploadEvent("uploads", tt.key, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, "uploads", ref.Bucket)
			assert.Equal(t, tt.want, ref.Key)
		})
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, dto.AccessResult{Message: "Verification Complete: AUTHORIZED"}))
	assert.JSONEq(t, `{"Message":"Verification Complete: AUTHORIZED"}`, buf.String())
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"labels"},
		{"access"},
		{"compare"},
		{"collection", "create"},
		{"collection", "index"},
		{"collection", "search"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	flag := collectionIndexCmd.Flags().Lookup("name")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestCompare_StdoutIsJSONOnly(t *testing.T) {
	t.Setenv("VAULT_LOG_LEVEL", "info")
	t.Setenv("AWS_REGION", "us-east-1")
	prev := slog.Default()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	// Below the one-second floor, so the comparison never reaches the service.
	rootCmd.SetArgs([]string{"compare", "--timeout", "500ms"})
	t.Cleanup(func() {
		slog.SetDefault(prev)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var res dto.CompareResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res), "stdout: %s", stdout.String())
	assert.Equal(t, dto.CompareStatusError, res.Status)
	assert.Equal(t, "Not enough time to run AI comparison!", res.Reason)

	assert.Contains(t, stderr.String(), "executing face comparison")
	assert.NotContains(t, stdout.String(), "executing face comparison")
}
