package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	adminService "github.com/jwalitptl/clinic-api/internal/service/admin"
	"github.com/jwalitptl/clinic-api/pkg/security"
	appvalidator "github.com/jwalitptl/clinic-api/pkg/validator"
)

// passwordEnv lets operators keep the password out of shell history.
const passwordEnv = "CLINIC_ADMIN_PASSWORD"

type adminCreator interface {
	CreateAdmin(ctx context.Context, req *model.CreateAdminRequest) (*model.User, error)
}

func createAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			base := postgres.NewBaseRepository(db)
			svc := adminService.NewService(
				postgres.NewUserRepository(base),
				postgres.NewAppointmentRepository(base),
				postgres.NewStatsRepository(base),
				security.NewBcryptHasher(bcrypt.DefaultCost),
				appvalidator.New(),
				nil,
			)
			return createAdmin(ctx, svc, email, password, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func createAdmin(ctx context.Context, svc adminCreator, email, password string, out io.Writer) error {
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if password == "" {
		return errors.New("password is required: pass --password or set " + passwordEnv)
	}

	user, err := svc.CreateAdmin(ctx, &model.CreateAdminRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "admin %s created with id %d\n", user.Email, user.ID)
	return nil
}
