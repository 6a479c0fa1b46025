// Package cli implements the gatectl commands.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/uleam/vehicle-gate/internal/app"
	"github.com/uleam/vehicle-gate/internal/auth"
)

// Deps are the collaborators the commands need. Tests replace them.
type Deps struct {
	Config      *app.Config
	Logger      *slog.Logger
	OpenStorage func(ctx context.Context) (*app.Storage, error)
	Out         io.Writer
}

type runtime struct {
	deps    Deps
	profile string
}

// NewRootCmd builds the gatectl command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	rt := &runtime{deps: deps}
	root := &cobra.Command{
		Use:   "gatectl",
		Short: "Inspect and drive the vehicle registry access gate.",
		Long: `gatectl works directly on profile storage, the way the server does.

Role and permission commands need no storage. Profile commands act on the
browser profile named by --profile, with the backend chosen by STORAGE_BACKEND.`,
		SilenceUsage: true,
	}
	root.SetOut(deps.Out)
	root.PersistentFlags().StringVar(&rt.profile, "profile", "", "browser profile id")

	root.AddCommand(
		rolesCmd(rt),
		permissionsCmd(rt),
		checkCmd(rt),
		seedCmd(rt),
		sessionCmd(rt),
		loginCmd(rt),
		logoutCmd(rt),
		navigateCmd(rt),
		sweepCmd(rt),
	)
	return root
}

var errProfileRequired = errors.New("--profile is required")

// withService opens storage, builds the profile's service and seeds it.
func (rt *runtime) withService(ctx context.Context, fn func(*auth.Service) error) error {
	if rt.profile == "" {
		return errProfileRequired
	}
	st, err := rt.deps.OpenStorage(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := auth.NewService(st.Provider.Profile(rt.profile), app.ServiceOptions(rt.deps.Config, rt.deps.Logger, nil)...)
	defer svc.Close()
	if err := svc.InitializeSeedData(ctx); err != nil {
		return err
	}
	return fn(svc)
}
