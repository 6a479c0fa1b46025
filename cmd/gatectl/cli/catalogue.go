package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uleam/vehicle-gate/internal/rbac"
)

func rolesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles and their permissions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, grant := range rbac.NewService().ListRoles() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", grant.Role, strings.Join(grant.Permissions, ","))
			}
			return nil
		},
	}
}

func permissionsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "permissions [role]",
		Short:   "Print the permissions granted to a role.",
		Example: "gatectl permissions GUARDIA",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := rbac.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			for _, p := range rbac.PermissionsFor(role) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func checkCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "check [role] [permission]",
		Short:   "Evaluate a permission against a role.",
		Example: "gatectl check GUARDIA vehiculos-rw",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := rbac.ParseRole(args[0])
			if !ok {
				return fmt.Errorf("unknown role %q", args[0])
			}
			verdict := "denied"
			if rbac.NewService().Check(role, args[1]) {
				verdict = "granted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", role, args[1], verdict)
			return nil
		},
	}
}
