// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/blinklabs-io/tokenreg/auth"
	"github.com/blinklabs-io/tokenreg/internal/config"
	"github.com/blinklabs-io/tokenreg/internal/node"
	"github.com/blinklabs-io/tokenreg/internal/secret"
	"github.com/spf13/cobra"
)

func issueToken(cfg *config.Config, account string, ttl time.Duration) (string, error) {
	jwtSecret, err := node.JwtSecret(cfg)
	if err != nil {
		return "", err
	}
	tokens, err := auth.NewTokens(jwtSecret, cfg.JwtIssuer)
	if err != nil {
		return "", err
	}
	return tokens.Issue(account, ttl)
}

func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <account>",
		Short: "Issue a bearer token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := issueToken(configFromCommand(cmd), args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().
		DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "token lifetime")
	return cmd
}

func encryptSecretCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "encrypt-secret <file>",
		Short: "Encrypt a secret file with SOPS using the configured KMS keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			encrypted, err := secret.Encrypt(data)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(encrypted)
				return err
			}
			return os.WriteFile(output, encrypted, 0o600)
		},
	}
	cmd.Flags().
		StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
