package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ACCESSKEYFILENAME = "publicKeyFile"
	SECRETKEYFILENAME = "privateKeyFile"
	ACCESSKEYENV      = "AWS_ACCESS_KEY_ID"
	SECRETKEYENV      = "AWS_SECRET_ACCESS_KEY"
)

// Source tells where one half of a credential pair was read from.
type Source string

const (
	SourceFile   Source = "key file"
	SourceEnv    Source = "environment"
	SourcePrompt Source = "prompt"
)

type CredentialPair struct {
	AccessKeyID     string
	SecretAccessKey string
	AccessKeySource Source
	SecretKeySource Source
}

// Create new credential pair, both halves coming from the same source
//
// Returns CredentialPair pointer
func NewCredentialPair(accessKeyID string, secretAccessKey string, source Source) *CredentialPair {
	return &CredentialPair{
		AccessKeyID:     strings.TrimSpace(accessKeyID),
		SecretAccessKey: strings.TrimSpace(secretAccessKey),
		AccessKeySource: source,
		SecretKeySource: source,
	}
}

// Looks for credentials in the condor key files and in the environment.
// Each half is resolved on its own and the key file wins over the environment.
//
// Returns found=false unless both halves resolve to a non-empty value
func DiscoverCredentials(condorDir string) (pair *CredentialPair, found bool, err error) {
	accessKeyID, accessSource, err := lookupCredential(filepath.Join(condorDir, ACCESSKEYFILENAME), ACCESSKEYENV)

	if err != nil {
		return nil, false, err
	}

	secretAccessKey, secretSource, err := lookupCredential(filepath.Join(condorDir, SECRETKEYFILENAME), SECRETKEYENV)

	if err != nil {
		return nil, false, err
	}

	if accessKeyID == "" || secretAccessKey == "" {
		return nil, false, nil
	}

	return &CredentialPair{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		AccessKeySource: accessSource,
		SecretKeySource: secretSource,
	}, true, nil
}

func lookupCredential(path string, envVar string) (string, Source, error) {
	content, err := readKeyFile(path)

	if err != nil {
		return "", "", err
	}

	if value := normalizeKey(content); value != "" {
		return value, SourceFile, nil
	}

	if value := normalizeKey(os.Getenv(envVar)); value != "" {
		return value, SourceEnv, nil
	}

	return "", "", nil
}

// A missing key file is the same as an empty one
func readKeyFile(path string) (string, error) {
	content, err := os.ReadFile(path)

	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("reading key file %s: %w", path, err)
	}

	return string(content), nil
}

// Key files are sometimes written as KEY=value; only the value is kept.
func normalizeKey(value string) string {
	if i := strings.LastIndex(value, "="); i >= 0 {
		value = value[i+1:]
	}

	return strings.TrimSpace(value)
}
