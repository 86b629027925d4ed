package main

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/errors"
)

type matchOutput struct {
	ID      string         `json:"id"`
	Pattern string         `json:"pattern"`
	Params  map[string]any `json:"params"`
}

func matchCmd(c *cli) *cobra.Command {
	var (
		src    source
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Show which route a path resolves to",
		Long: `Canonicalize and decode a request path, then match it against the
route table and print the winning route with its bindings.

Exits with status 1 when no route matches.

Examples:
  fsroute match /blog/hello-world
  fsroute match '/files/a%2Fb'          # rejected: encoded slash
  fsroute match /docs --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			table, err := c.table(cmd.Context(), src)
			if err != nil {
				return err
			}

			result, err := table.MatchRequestPath(path)
			if err != nil {
				return errors.New("R041").
					Wrap(err).
					WithContext(path)
			}
			if !result.Matched() {
				return errors.New("R040").
					WithDetail("No route in the table matches " + strconv.Quote(path) + ".").
					WithSuggestion("Run `fsroute routes` to list the table")
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(matchOutput{
					ID:      result.ID(),
					Pattern: result.Route.Pattern,
					Params:  result.Params.Map(),
				})
			}

			c.success("%s", result.ID())
			c.info("pattern  %s", result.Route.Pattern)
			for _, p := range result.Params {
				if p.Kind.IsCatchAll() {
					c.info("%s  [%s]", p.Name, strings.Join(quoteAll(p.Values), " "))
					continue
				}
				c.info("%s  %s", p.Name, strconv.Quote(p.Value))
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match as JSON")

	return cmd
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}
