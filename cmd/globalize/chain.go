package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChainCmd(opts *rootOptions) *cobra.Command {
	var fallbacks []string
	cmd := &cobra.Command{
		Use:   "chain <locale>...",
		Short: "Print the fallback chain of each locale",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.env.Config
			declared := make(map[string][]string, len(cfg.Fallbacks)+len(fallbacks))
			for code, chain := range cfg.Fallbacks {
				declared[code] = chain
			}
			for _, entry := range fallbacks {
				code, chain, ok := strings.Cut(entry, "=")
				if !ok || strings.TrimSpace(code) == "" {
					return fmt.Errorf("invalid --fallback %q, expected locale=fallback,fallback", entry)
				}
				declared[code] = strings.Split(chain, ",")
			}
			cfg.Fallbacks = declared
			resolver := cfg.Resolver()
			for _, code := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", code, strings.Join(resolver.Resolve(code), " -> "))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&fallbacks, "fallback", nil, "extra fallback declaration, e.g. de-at=de")
	return cmd
}
