package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverCredentials(t *testing.T) {
	tests := []struct {
		name       string
		accessFile string
		secretFile string
		accessEnv  string
		secretEnv  string
		wantFound  bool
		wantPair   *CredentialPair
	}{
		{
			name:       "files win over environment",
			accessFile: "AKIAFILE",
			secretFile: "filesecret",
			accessEnv:  "AKIAENV",
			secretEnv:  "envsecret",
			wantFound:  true,
			wantPair:   &CredentialPair{"AKIAFILE", "filesecret", SourceFile, SourceFile},
		},
		{
			name:      "environment only",
			accessEnv: "AKIAENV",
			secretEnv: "envsecret",
			wantFound: true,
			wantPair:  &CredentialPair{"AKIAENV", "envsecret", SourceEnv, SourceEnv},
		},
		{
			name:      "nothing populated",
			wantFound: false,
		},
		{
			name:       "each half resolves on its own",
			accessFile: "AKIAFILE",
			secretEnv:  "envsecret",
			wantFound:  true,
			wantPair:   &CredentialPair{"AKIAFILE", "envsecret", SourceFile, SourceEnv},
		},
		{
			name:       "secret from file when access key from environment",
			secretFile: "filesecret",
			accessEnv:  "AKIAENV",
			secretEnv:  "envsecret",
			wantFound:  true,
			wantPair:   &CredentialPair{"AKIAENV", "filesecret", SourceEnv, SourceFile},
		},
		{
			name:       "empty files fall back to environment",
			accessFile: "",
			secretFile: "  \n",
			accessEnv:  "AKIAENV",
			secretEnv:  "envsecret",
			wantFound:  true,
			wantPair:   &CredentialPair{"AKIAENV", "envsecret", SourceEnv, SourceEnv},
		},
		{
			name:       "missing secret",
			accessFile: "AKIAFILE",
			accessEnv:  "AKIAENV",
			wantFound:  false,
		},
		{
			name:       "key=value files are normalized",
			accessFile: "AWS_ACCESS_KEY_ID = AKIAFILE\n",
			secretFile: "aws_secret_access_key=filesecret\n",
			wantFound:  true,
			wantPair:   &CredentialPair{"AKIAFILE", "filesecret", SourceFile, SourceFile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv(ACCESSKEYENV, tt.accessEnv)
			t.Setenv(SECRETKEYENV, tt.secretEnv)

			if tt.accessFile != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ACCESSKEYFILENAME), []byte(tt.accessFile), 0o600))
			}
			if tt.secretFile != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, SECRETKEYFILENAME), []byte(tt.secretFile), 0o600))
			}

			pair, found, err := DiscoverCredentials(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantPair, pair)
		})
	}
}

func TestDiscoverCredentials_MissingDirectory(t *testing.T) {
	t.Setenv(ACCESSKEYENV, "")
	t.Setenv(SECRETKEYENV, "")

	pair, found, err := DiscoverCredentials(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, pair)
}

func TestDiscoverCredentials_UnreadableKeyFile(t *testing.T) {
	dir := t.TempDir()
	// a directory where the key file should be cannot be read as one
	require.NoError(t, os.Mkdir(filepath.Join(dir, ACCESSKEYFILENAME), 0o700))

	_, found, err := DiscoverCredentials(dir)
	require.Error(t, err)
	assert.False(t, found)
}

func TestNewCredentialPair(t *testing.T) {
	pair := NewCredentialPair("  AKIA\n", "\tsecret ", SourcePrompt)

	assert.Equal(t, "AKIA", pair.AccessKeyID)
	assert.Equal(t, "secret", pair.SecretAccessKey)
	assert.Equal(t, SourcePrompt, pair.AccessKeySource)
	assert.Equal(t, SourcePrompt, pair.SecretKeySource)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"AKIA":                    "AKIA",
		" AKIA \n":                "AKIA",
		"AWS_ACCESS_KEY_ID=AKIA":  "AKIA",
		"export AWS_KEY = AKIA\n": "AKIA",
		"KEY=":                    "",
		"":                        "",
	}

	for in, want := range tests {
		assert.Equal(t, want, normalizeKey(in), "normalizeKey(%q)", in)
	}
}
