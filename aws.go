package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

var (
	DEFAULTREGION = "us-east-1"
	DEFAULTBUCKET = "my-test-bucket"

	// Minimal set of S3 actions HTCondor and Pegasus need on their buckets
	REQUIREDACTIONS = []string{
		"s3:PutObject",
		"s3:GetObject",
		"s3:DeleteObject",
		"s3:GetBucketLocation",
		"s3:ListBucket",
	}
)

// CredentialValidator decides whether a credential pair is usable.
type CredentialValidator interface {
	Validate(ctx context.Context, pair *CredentialPair) (bool, error)
}

type callerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type awsClients struct {
	sts callerIdentityAPI
	iam iam.SimulatePrincipalPolicyAPIClient
}

type clientFactory func(ctx context.Context, pair *CredentialPair) (*awsClients, error)

// Validator checks credentials against STS and IAM.
type Validator struct {
	bucket     string
	newClients clientFactory
	out        io.Writer
}

// Create a validator talking to AWS in the configured region
//
// Returns Validator pointer
func NewValidator(settings *Settings, out io.Writer) *Validator {
	return newValidator(settings.ValidationBucket, newAWSClients(settings.Region), out)
}

func newValidator(bucket string, factory clientFactory, out io.Writer) *Validator {
	if bucket == "" {
		bucket = DEFAULTBUCKET
	}

	return &Validator{
		bucket:     bucket,
		newClients: factory,
		out:        out,
	}
}

// Builds STS and IAM clients signing with the given pair instead of the default chain
func newAWSClients(region string) clientFactory {
	return func(ctx context.Context, pair *CredentialPair) (*awsClients, error) {
		optFns := []func(*config.LoadOptions) error{
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				pair.AccessKeyID,
				pair.SecretAccessKey,
				"",
			)),
		}

		if region != "" {
			optFns = append(optFns, config.WithRegion(region))
		}

		cfg, err := config.LoadDefaultConfig(ctx, optFns...)

		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}

		if cfg.Region == "" {
			cfg.Region = DEFAULTREGION
		}

		return &awsClients{
			sts: sts.NewFromConfig(cfg),
			iam: iam.NewFromConfig(cfg),
		}, nil
	}
}

// Resolves the caller behind the pair and simulates its policy for REQUIREDACTIONS
// on the objects of the validation bucket. AWS API errors mean the credentials
// are unusable and are reported as a negative result; anything else is returned.
//
// Returns true only when every required action is allowed
func (v *Validator) Validate(ctx context.Context, pair *CredentialPair) (bool, error) {
	clients, err := v.newClients(ctx, pair)

	if err != nil {
		return false, err
	}

	identity, err := clients.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})

	if err != nil {
		if code, ok := apiErrorCode(err); ok {
			fmt.Fprintf(v.out, "\033[1;31mIncorrect credentials: %s\033[0m\n", code)
			return false, nil
		}

		return false, fmt.Errorf("resolving caller identity: %w", err)
	}

	paginator := iam.NewSimulatePrincipalPolicyPaginator(clients.iam, &iam.SimulatePrincipalPolicyInput{
		PolicySourceArn: identity.Arn,
		ResourceArns:    []string{v.resourceARN()},
		ActionNames:     append([]string(nil), REQUIREDACTIONS...),
	})

	allowed := make(map[string]bool, len(REQUIREDACTIONS))

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)

		if err != nil {
			if code, ok := apiErrorCode(err); ok {
				fmt.Fprintf(v.out, "\033[1;31mPolicy simulation failed for %s: %s\033[0m\n", aws.ToString(identity.Arn), code)
				return false, nil
			}

			return false, fmt.Errorf("simulating principal policy: %w", err)
		}

		for _, result := range page.EvaluationResults {
			action := aws.ToString(result.EvalActionName)
			fmt.Fprintf(v.out, "%s - %s\n", action, result.EvalDecision)

			// a single denial for an action outweighs any allow
			prev, seen := allowed[action]
			allowed[action] = (!seen || prev) && isAllowed(result.EvalDecision)
		}
	}

	for _, action := range REQUIREDACTIONS {
		if !allowed[action] {
			return false, nil
		}
	}

	return true, nil
}

func (v *Validator) resourceARN() string {
	return fmt.Sprintf("arn:aws:s3:::%s/*", v.bucket)
}

func isAllowed(decision types.PolicyEvaluationDecisionType) bool {
	return strings.EqualFold(string(decision), string(types.PolicyEvaluationDecisionTypeAllowed))
}

func apiErrorCode(err error) (string, bool) {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), true
	}

	return "", false
}
