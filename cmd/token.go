package cmd

import (
	"fmt"

	"backoffice/domain/identity"
	"backoffice/infrastructure/auth"

	"github.com/spf13/cobra"
)

type TokenOptions struct {
	*RootOptions
	UserType string
	ID       int64
	UserID   int64
	Email    string
}

// NewTokenCommand signs an access token with the configured secret, for
// operators and local testing.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token",
		Example: `  backoffice token --type Staff --id 3 --user-id 12
  backoffice token --type Customer --id 7 --user-id 40 --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}

			role, err := identity.ParseUserType(opts.UserType)
			if err != nil {
				return err
			}
			issuer, err := auth.NewIssuer(auth.OptionsFromConfig(&cfg.Auth))
			if err != nil {
				return err
			}

			p := identity.New(role, opts.UserID, opts.ID).WithEmail(opts.Email)
			token, err := issuer.Issue(auth.UserFor(p), 0)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.UserType, "type", "", "user type: Customer, Staff or Administrator")
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "customer, staff or admin id")
	cmd.Flags().Int64Var(&opts.UserID, "user-id", 0, "account id")
	cmd.Flags().StringVar(&opts.Email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
