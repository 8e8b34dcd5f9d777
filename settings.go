package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	DEFAULTCONDORDIR       = "~/.condor"
	DEFAULTSETTINGSFILE    = "~/.condor/aws-setup.yaml"
	DEFAULTCREDENTIALSFILE = "~/.aws/" + AWSCONFIGFILENAME
)

type Settings struct {
	CondorDir          string `yaml:"condor_dir"`
	Region             string `yaml:"region"`
	ValidationBucket   string `yaml:"validation_bucket"`
	AWSProfile         string `yaml:"aws_profile"`
	AWSCredentialsFile string `yaml:"aws_credentials_file"`
	VerifyExisting     bool   `yaml:"verify_existing"`
}

// Loads the settings file at path on top of the defaults. A missing file is
// only an error when required is set.
//
// Returns Settings pointer with every path expanded
func NewSettings(path string, required bool) (*Settings, error) {
	settings := &Settings{
		CondorDir:          DEFAULTCONDORDIR,
		ValidationBucket:   DEFAULTBUCKET,
		AWSCredentialsFile: DEFAULTCREDENTIALSFILE,
	}

	if path != "" {
		if err := settings.load(path, required); err != nil {
			return nil, err
		}
	}

	if err := settings.expandPaths(); err != nil {
		return nil, err
	}

	return settings, nil
}

func (s *Settings) load(path string, required bool) error {
	expanded, err := expandHome(path)

	if err != nil {
		return err
	}

	settingsData, err := os.ReadFile(expanded)

	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading settings %s: %w", expanded, err)
	}

	if err := yaml.Unmarshal(settingsData, s); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", expanded, err)
	}

	return nil
}

func (s *Settings) expandPaths() (err error) {
	if s.CondorDir, err = expandHome(s.CondorDir); err != nil {
		return err
	}

	s.AWSCredentialsFile, err = expandHome(s.AWSCredentialsFile)

	return err
}

// Replaces a leading ~ with the home directory of the current user
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	currentUser, err := user.Current()

	if err != nil {
		return "", fmt.Errorf("looking up home directory: %w", err)
	}

	return filepath.Join(currentUser.HomeDir, strings.TrimPrefix(path, "~")), nil
}
