package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/manifest"
	"github.com/vango-dev/fsroute/pkg/router"
)

// source selects where declarations come from: a routes directory or a
// previously generated manifest.
type source struct {
	dir      string
	manifest string
}

func (s *source) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.dir, "dir", "d", "", "Routes directory (default from fsroute.json)")
	cmd.Flags().StringVarP(&s.manifest, "manifest", "m", "", "Read routes from a manifest file or s3:// URL instead of scanning")
}

// declarations loads the declarations selected by s.
func (c *cli) declarations(ctx context.Context, s source) ([]router.Declaration, error) {
	if s.manifest != "" {
		store, err := manifest.Open(ctx, s.manifest)
		if err != nil {
			return nil, errors.New("R020").Wrap(err).WithLocation(s.manifest)
		}
		m, err := store.Load(ctx)
		if err != nil {
			return nil, errors.New("R020").Wrap(err).WithLocation(s.manifest)
		}
		decls, err := m.Declarations()
		if err != nil {
			return nil, errors.FromBuild(err)[0].WithLocation(s.manifest)
		}
		c.logger.Debug("manifest loaded", "location", s.manifest, "routes", len(decls))
		return decls, nil
	}

	dir := s.dir
	if dir == "" {
		dir = c.cfg.RoutesPath()
	}
	decls, err := router.NewScanner(dir, c.cfg.ScannerOptions()...).Scan(ctx)
	if err != nil {
		if stderrors.Is(err, router.ErrInvalidSegment) {
			return nil, errors.FromBuild(err)[0]
		}
		return nil, errors.New("R030").Wrap(err).WithLocation(dir)
	}
	c.logger.Debug("routes scanned", "dir", dir, "routes", len(decls))
	return decls, nil
}

// table loads and builds the table selected by s.
func (c *cli) table(ctx context.Context, s source) (*router.Table, error) {
	decls, err := c.declarations(ctx, s)
	if err != nil {
		return nil, err
	}
	return router.Build(decls, c.cfg.BuildOptions()...)
}

func routesCmd(c *cli) *cobra.Command {
	var (
		src    source
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long: `Scan the routes directory, validate every template, and print the
resulting table in match-precedence order.

Every malformed or colliding template is reported, not just the first.

Examples:
  fsroute routes
  fsroute routes --dir=./pages
  fsroute routes --manifest=s3://my-bucket/routes.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := c.table(cmd.Context(), src)
			if err != nil {
				return err
			}

			if asJSON {
				return manifest.Encode(c.out, manifest.FromTable(table))
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPATTERN\tPARAMS\tSOURCE")
			for _, r := range table.SortedRoutes() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Pattern, len(r.ParamNames()), r.Source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(c.out)
			c.success("%d routes", table.Len())
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as a manifest")

	return cmd
}
