package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bigkevmcd/go-configparser"
)

var (
	AWSCONFIGFILENAME = "credentials"
	SECRETFILEMODE    = os.FileMode(0o600)
	SECRETDIRMODE     = os.FileMode(0o700)
)

// Writes the access key id and secret key to their condor key files,
// creating the directory when missing. The files are left readable by
// the owner only, even when they existed before.
//
// Returns the paths written, access key file first
func WriteKeyFiles(condorDir string, pair *CredentialPair, out io.Writer) (paths []string, err error) {
	if err := os.MkdirAll(condorDir, SECRETDIRMODE); err != nil {
		return nil, fmt.Errorf("creating %s: %w", condorDir, err)
	}

	files := []struct {
		path  string
		value string
	}{
		{filepath.Join(condorDir, ACCESSKEYFILENAME), pair.AccessKeyID},
		{filepath.Join(condorDir, SECRETKEYFILENAME), pair.SecretAccessKey},
	}

	for _, file := range files {
		if err := writeSecretFile(file.path, file.value); err != nil {
			return paths, err
		}

		fmt.Fprintf(out, "Created %q\n", file.path)
		paths = append(paths, file.path)
	}

	return paths, nil
}

func writeSecretFile(path string, value string) error {
	if err := os.WriteFile(path, []byte(value), SECRETFILEMODE); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, SECRETFILEMODE); err != nil {
		return fmt.Errorf("restricting %s: %w", path, err)
	}

	return nil
}

// Sets AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY for this process and
// anything it starts. Values are never printed.
func ExportToEnv(pair *CredentialPair, out io.Writer) error {
	for _, env := range []struct{ name, value string }{
		{ACCESSKEYENV, pair.AccessKeyID},
		{SECRETKEYENV, pair.SecretAccessKey},
	} {
		if err := os.Setenv(env.name, env.value); err != nil {
			return fmt.Errorf("exporting %s: %w", env.name, err)
		}

		fmt.Fprintf(out, "Exported %s to environment variable.\n", env.name)
	}

	return nil
}

// Creates the credentials file and its directory when missing
func CreateCredsFile(configLoc string) error {
	if err := os.MkdirAll(filepath.Dir(configLoc), SECRETDIRMODE); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(configLoc), err)
	}

	if _, err := os.Stat(configLoc); errors.Is(err, fs.ErrNotExist) {
		file, err := os.OpenFile(configLoc, os.O_CREATE|os.O_WRONLY, SECRETFILEMODE)

		if err != nil {
			return fmt.Errorf("creating %s: %w", configLoc, err)
		}

		return file.Close()
	} else if err != nil {
		return fmt.Errorf("checking %s: %w", configLoc, err)
	}

	return nil
}

// Writes the pair as a named profile of the AWS CLI credentials file, keeping
// every other profile in it
func WriteAWSProfile(configLoc string, profile string, region string, pair *CredentialPair, out io.Writer) error {
	if err := CreateCredsFile(configLoc); err != nil {
		return err
	}

	config, err := configparser.NewConfigParserFromFile(configLoc)

	if err != nil {
		return fmt.Errorf("parsing %s: %w", configLoc, err)
	}

	if !config.HasSection(profile) {
		if err := config.AddSection(profile); err != nil {
			return fmt.Errorf("adding profile %s: %w", profile, err)
		}
	}

	options := [][2]string{
		{"aws_access_key_id", pair.AccessKeyID},
		{"aws_secret_access_key", pair.SecretAccessKey},
	}

	if region != "" {
		options = append(options, [2]string{"region", region})
	}

	for _, option := range options {
		if err := config.Set(profile, option[0], option[1]); err != nil {
			return fmt.Errorf("setting %s in profile %s: %w", option[0], profile, err)
		}
	}

	if err := config.SaveWithDelimiter(configLoc, "="); err != nil {
		return fmt.Errorf("saving %s: %w", configLoc, err)
	}

	if err := os.Chmod(configLoc, SECRETFILEMODE); err != nil {
		return fmt.Errorf("restricting %s: %w", configLoc, err)
	}

	fmt.Fprintf(out, "Wrote profile %s to %q\n", profile, configLoc)

	return nil
}
