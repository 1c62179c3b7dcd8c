package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/innkeeper/internal/auth"
)

// PasswordEnv is read by create-superadmin when --password is not given.
const PasswordEnv = "INNKEEPER_ADMIN_PASSWORD"

// readSecret returns the first line of r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Long: `Print the bcrypt hash of a password for provisioning staff accounts directly
in the database. The password is read from stdin when not given as an argument.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				p, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", hash)
			return nil
		},
	}
}

func newCreateSuperAdminCommand(opts *RootOptions) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:          "create-superadmin",
		Short:        "Create a platform super admin account",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}
			if password == "" {
				return errors.New("--password or " + PasswordEnv + " is required")
			}

			svc, closeFn, err := opts.openService()
			if err != nil {
				return err
			}
			defer closeFn()

			st, err := svc.CreateSuperAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			printf(cmd, "created super admin %s (%s)\n", st.Email, st.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (default $"+PasswordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
