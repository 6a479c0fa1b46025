package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uleam/vehicle-gate/internal/auth"
	"github.com/uleam/vehicle-gate/internal/guard"
	"github.com/uleam/vehicle-gate/internal/shared"
)

func seedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the first-run data set into a profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd.Context(), func(*auth.Service) error {
				fmt.Fprintf(cmd.OutOrStdout(), "profile %s seeded\n", rt.profile)
				return nil
			})
		},
	}
}

func sessionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Print the persisted session of a profile.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd.Context(), func(svc *auth.Service) error {
				ok, err := svc.CheckSession(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no session")
					return nil
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(svc.CurrentSession())
			})
		},
	}
}

func loginCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "login [identifier] [secret]",
		Short:   "Sign a profile in.",
		Example: "gatectl login --profile demo guardia guardia12345",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd.Context(), func(svc *auth.Service) error {
				ok, err := svc.Login(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return shared.ErrInvalidCredentials
				}
				sess := svc.CurrentSession()
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", sess.Username, sess.Role)
				return nil
			})
		},
	}
}

func logoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign a profile out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd.Context(), func(svc *auth.Service) error {
				if err := svc.Logout(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func navigateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "navigate [path]",
		Short:   "Run the navigation guard for a profile and print where it lands.",
		Example: "gatectl navigate --profile demo /gestion-usuarios",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd.Context(), func(svc *auth.Service) error {
				cfg := guard.Config{Logger: rt.deps.Logger}
				if rt.deps.Config != nil {
					cfg.ShowPermission = rt.deps.Config.DenialShowsPermission
				}
				nav, err := guard.New(guard.MustDefaultTable(), cfg).Navigate(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", strings.Join(nav.Trail, " -> "), nav.Route.Name)
				if n := svc.Notification(); n.Visible {
					fmt.Fprintf(out, "[%s] %s\n", n.Severity, n.Message)
				}
				return nil
			})
		},
	}
}
