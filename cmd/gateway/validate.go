package main

import (
	"fmt"
	"sort"

	"auth-gateway/config"
	"auth-gateway/middleware/authgate/infra"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the configuration and permission table and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if _, err := infra.NewHTTPBackend(cfg.Backend.URL); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "backend:        %s (timeout %s)\n", cfg.Backend.URL, cfg.Backend.Timeout)
		fmt.Fprintf(out, "listen:         %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "session ttl:    %s (%d-char keys)\n", cfg.Session.TTL, cfg.Session.KeyBytes*2)
		fmt.Fprintf(out, "abuse:          >%d failures in %s blocks for %s\n",
			cfg.Abuse.MaxFailures, cfg.Abuse.Window, cfg.Abuse.BlockDuration)

		if !cfg.RoleAuthorization() {
			fmt.Fprintln(out, "authorization:  disabled (user_role.attribute_name is empty)")
			return nil
		}

		table := infra.NewPermissionTable(cfg.Permissions.Table())
		fmt.Fprintf(out, "authorization:  attribute %q, %d restricted endpoint/method pairs\n",
			cfg.UserRole.AttributeName, table.Len())

		endpoints := make([]string, 0, len(cfg.Permissions))
		for e := range cfg.Permissions {
			endpoints = append(endpoints, e)
		}
		sort.Strings(endpoints)
		for _, e := range endpoints {
			methods := make([]string, 0, len(cfg.Permissions[e]))
			for m := range cfg.Permissions[e] {
				methods = append(methods, m)
			}
			sort.Strings(methods)
			for _, m := range methods {
				if roles, ok := table.AllowedRoles(e, m); ok {
					fmt.Fprintf(out, "  %-7s /%s -> %v\n", m, e, roles)
				}
			}
		}
		return nil
	},
}
