package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist a session",
		Example: `  # Interactive login (password prompted without echo)
  apexctl login --email admin@example.com

  # Non-interactive
  apexctl login --email admin@example.com --password "$APEX_PASSWORD"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			if email == "" {
				var err error
				email, err = promptLine("Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			session, err := app.API.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := app.State.SaveSession(session); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Printf("Logged in as %s\n", session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if err := app.State.ClearSession(); err != nil {
				return err
			}
			app.Cache.InvalidateAll()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)

			if email == "" {
				var err error
				email, err = promptLine("Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			session, err := app.API.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			if err := app.State.SaveSession(session); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Printf("Registered and logged in as %s\n", session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			user, err := app.API.Me(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(user)
			}
			fmt.Printf("%s <%s>\n", orDash(user.Name), user.Email)
			if user.OrganizationID != "" {
				fmt.Printf("Organization: %s\n", user.OrganizationID)
			}
			for _, org := range user.Organizations {
				marker := " "
				if org.ID == user.OrganizationID {
					marker = "*"
				}
				fmt.Printf("  %s %s  %s\n", marker, org.ID, org.Name)
			}
			return nil
		},
	}
}

func newOrgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Organization commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "switch <org-id>",
		Short: "Switch the active organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			session, err := app.API.SwitchOrg(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.State.SaveSession(session); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			// Every listing is org-scoped, so nothing cached survives.
			app.Cache.InvalidateAll()
			fmt.Printf("Switched to organization %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
