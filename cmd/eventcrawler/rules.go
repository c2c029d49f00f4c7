package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/event-crawler/internal/rules"
)

func newRulesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate the effective field rules and print them as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("file") {
				cfg.Rules.File = file
			}
			set, err := loadRules(cfg.Rules.File)
			if err != nil {
				return err
			}
			data, err := rules.Marshal(set)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML rule overlay to validate instead of rules.file")
	return cmd
}
