package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

func newHeadcountCmd() *cobra.Command {
	var raw string

	cmd := &cobra.Command{
		Use:   "headcount",
		Short: "Print the auto-assignment headcount per priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := config.ParseHeadcount(raw)
			if err != nil {
				return err
			}
			table, err := service.HeadcountTableFromConfig(parsed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, priority := range domain.TicketPriorities {
				fmt.Fprintf(out, "%-7s %d\n", priority, table[priority])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&raw, "table", config.DefaultHeadcount, "comma separated priority=count pairs")
	return cmd
}
