package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

func newRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Permission request maintenance",
	}
	cmd.AddCommand(newRequestsPruneCmd())
	return cmd
}

func newRequestsPruneCmd() *cobra.Command {
	var callerID string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete the oldest batch of resolved requests",
		Long:  "Deletes the oldest resolved requests once a full batch has accumulated. The caller must be a supervisor or an admin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			pool := pg.PoolHandle()
			requests := service.NewRequestPermissionService(service.RequestPermissionDependencies{
				RequestRepo:    repository.NewRequestPermissionRepository(pool),
				UserRepo:       repository.NewUserRepository(pool),
				SupervisorRepo: repository.NewSupervisorRepository(pool),
				Logger:         logger,
				BcryptCost:     cfg.Auth.BcryptCost,
			})

			deleted, err := requests.DeleteResolvedRequests(cmd.Context(), callerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d resolved requests\n", deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&callerID, "caller", "", "id of the supervisor or admin running the prune")
	_ = cmd.MarkFlagRequired("caller")
	return cmd
}
