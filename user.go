package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var SPLASHMESSAGE = `
No AWS credentials were detected on this machine. The following script will
help you set up correct AWS credentials for Pegasus, HTCondor and AWS CLI.

Please input the AWS Access Key ID and AWS Secret Access Key when
prompted.
` + strings.Repeat("=", 80)

// User is the person at the console of the freshly booted node.
type User struct {
	reader     *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
}

// Create a user reading answers from in. When in is a terminal the secret key
// is read without echo.
//
// Returns User pointer
func NewUser(in io.Reader, out io.Writer) *User {
	user := &User{
		reader: bufio.NewReader(in),
		out:    out,
	}

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		user.readSecret = func() (string, error) {
			secret, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(out)

			return string(secret), err
		}
	}

	return user
}

// Asks for an access key id and secret key until validator accepts them.
// There is no retry limit; running out of input is an error.
//
// Returns the validated pair
func (u *User) RequestCredentials(ctx context.Context, validator CredentialValidator) (*CredentialPair, error) {
	fmt.Fprintln(u.out, SPLASHMESSAGE)

	for {
		accessKeyID, err := u.ask("Input AWS Access Key ID: ")

		if err != nil {
			return nil, err
		}

		secretAccessKey, err := u.askSecret("Input AWS Secret Access Key: ")

		if err != nil {
			return nil, err
		}

		pair := NewCredentialPair(accessKeyID, secretAccessKey, SourcePrompt)

		if pair.AccessKeyID == "" || pair.SecretAccessKey == "" {
			fmt.Fprintln(u.out, "\033[1;31mBoth the Access Key ID and the Secret Access Key are required\033[0m")
			fmt.Fprintln(u.out)
			continue
		}

		valid, err := validator.Validate(ctx, pair)

		if err != nil {
			return nil, err
		}

		fmt.Fprintln(u.out)

		if valid {
			return pair, nil
		}
	}
}

func (u *User) ask(prompt string) (string, error) {
	fmt.Fprint(u.out, prompt)
	line, err := u.reader.ReadString('\n')

	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer to %q: %w", strings.TrimSpace(prompt), err)
	}

	return strings.TrimSpace(line), nil
}

func (u *User) askSecret(prompt string) (string, error) {
	if u.readSecret == nil {
		return u.ask(prompt)
	}

	fmt.Fprint(u.out, prompt)
	secret, err := u.readSecret()

	if err != nil {
		return "", fmt.Errorf("reading answer to %q: %w", strings.TrimSpace(prompt), err)
	}

	return strings.TrimSpace(secret), nil
}
