package main

import (
	"github.com/urfave/cli/v2"
)

// Values of the command line flags. Every flag is optional; an unset flag
// leaves the settings file (or the default) in place.
type Options struct {
	ConfigFile string
	CondorDir  string
	Region     string
	Bucket     string
	AWSProfile string
	Verify     bool
}

// Creates a new CLI which hands the set flags to action.
func NewCLI(action func(ctx *cli.Context, options *Options) error) *cli.App {
	options := &Options{}

	return &cli.App{
		Name:  "condor-aws-setup",
		Usage: "Provision AWS credentials for HTCondor and Pegasus, stored at ~/.condor/publicKeyFile and ~/.condor/privateKeyFile",
		Action: func(ctx *cli.Context) error {
			return action(ctx, options)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Value:       DEFAULTSETTINGSFILE,
				Usage:       "read settings from `file`; the default file may be absent",
				Destination: &options.ConfigFile,
				Category:    "Optional",
			},
			&cli.StringFlag{
				Name:        "condor-dir",
				Usage:       "`directory` holding the HTCondor key files",
				Destination: &options.CondorDir,
				Category:    "Optional",
			},
			&cli.StringFlag{
				Name:        "region",
				Aliases:     []string{"r"},
				Usage:       "AWS `region` used for validation and the AWS CLI profile",
				Destination: &options.Region,
				Category:    "Optional",
			},
			&cli.StringFlag{
				Name:        "bucket",
				Usage:       "`bucket` name the S3 permissions are simulated against",
				Destination: &options.Bucket,
				Category:    "Optional",
			},
			&cli.StringFlag{
				Name:        "aws-profile",
				Aliases:     []string{"p"},
				Usage:       "also write the credentials as `profile` in ~/.aws/credentials",
				Destination: &options.AWSProfile,
				Category:    "Optional",
			},
			&cli.BoolFlag{
				Name:        "verify",
				Usage:       "validate credentials found on the machine before using them",
				Destination: &options.Verify,
				Category:    "Optional",
			},
		},
	}
}

// Loads the settings file and lays the set flags over it
//
// Returns Settings pointer
func (o *Options) Settings(ctx *cli.Context) (*Settings, error) {
	settings, err := NewSettings(o.ConfigFile, ctx.IsSet("config"))

	if err != nil {
		return nil, err
	}

	if ctx.IsSet("condor-dir") {
		settings.CondorDir = o.CondorDir
	}

	if ctx.IsSet("region") {
		settings.Region = o.Region
	}

	if ctx.IsSet("bucket") {
		settings.ValidationBucket = o.Bucket
	}

	if ctx.IsSet("aws-profile") {
		settings.AWSProfile = o.AWSProfile
	}

	if ctx.IsSet("verify") {
		settings.VerifyExisting = o.Verify
	}

	if err := settings.expandPaths(); err != nil {
		return nil, err
	}

	return settings, nil
}
