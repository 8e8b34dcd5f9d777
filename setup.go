package main

import (
	"context"
	"fmt"
	"io"
)

// Setup runs discovery, acquisition, persistence and export in that order.
type Setup struct {
	settings  *Settings
	validator CredentialValidator
	user      *User
	out       io.Writer
}

func NewSetup(settings *Settings, validator CredentialValidator, user *User, out io.Writer) *Setup {
	return &Setup{
		settings:  settings,
		validator: validator,
		user:      user,
		out:       out,
	}
}

// Uses the credentials already on the machine when there are any, otherwise
// asks for them until they validate, then stores them everywhere HTCondor,
// Pegasus and the AWS CLI look.
func (s *Setup) Run(ctx context.Context) error {
	pair, found, err := DiscoverCredentials(s.settings.CondorDir)

	if err != nil {
		return err
	}

	if found {
		fmt.Fprintf(s.out, "\033[1;33mFound AWS Access Key ID in %s and AWS Secret Access Key in %s\033[0m\n", pair.AccessKeySource, pair.SecretKeySource)

		if s.settings.VerifyExisting {
			if found, err = s.validator.Validate(ctx, pair); err != nil {
				return err
			}

			if !found {
				fmt.Fprintln(s.out, "\033[1;31mCredentials found on this machine failed validation\033[0m")
			}
		}
	}

	if !found {
		if pair, err = s.user.RequestCredentials(ctx, s.validator); err != nil {
			return err
		}

		fmt.Fprintln(s.out)
	}

	if _, err := WriteKeyFiles(s.settings.CondorDir, pair, s.out); err != nil {
		return err
	}

	if err := ExportToEnv(pair, s.out); err != nil {
		return err
	}

	if s.settings.AWSProfile != "" {
		if err := WriteAWSProfile(s.settings.AWSCredentialsFile, s.settings.AWSProfile, s.settings.Region, pair, s.out); err != nil {
			return err
		}
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "\033[1;32mSet up done!\033[0m")

	return nil
}
