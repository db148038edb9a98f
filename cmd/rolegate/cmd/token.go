package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/rolegate/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect bearer tokens",
	}
	tokenCmd.AddCommand(newTokenIssueCmd(a), newTokenVerifyCmd(a))
	return tokenCmd
}

func newTokenIssueCmd(a *app) *cobra.Command {
	var (
		username string
		role     string
	)

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a username and role",
		Long: `Signs a token with the configured secret without checking the user registry.
The token is printed to stdout.`,
		Example: `  rolegate token issue --username alice --role moderator`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}

			token, err := a.codec().Issue(cmd.Context(), username, r)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	issueCmd.Flags().StringVar(&username, "username", "", "Username carried by the token")
	issueCmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "admin|moderator|user")
	_ = issueCmd.MarkFlagRequired("username")
	return issueCmd
}

// verifyOutput is printed by token verify.
type verifyOutput struct {
	Username  string    `json:"username"`
	Role      auth.Role `json:"role"`
	Issuer    string    `json:"issuer,omitempty"`
	TokenID   string    `json:"jti,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newTokenVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.codec().Verify(cmd.Context(), args[0])
			if err != nil {
				var tokenErr *auth.TokenError
				if errors.As(err, &tokenErr) {
					return fmt.Errorf("token rejected: %w", err)
				}
				return fmt.Errorf("failed to verify token: %w", err)
			}

			id := claims.Identity()
			out := verifyOutput{
				Username:  id.Username,
				Role:      id.Role,
				Issuer:    claims.Issuer,
				TokenID:   id.TokenID,
				IssuedAt:  id.IssuedAt.UTC(),
				ExpiresAt: id.ExpiresAt.UTC(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
