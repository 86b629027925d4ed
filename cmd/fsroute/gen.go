package main

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/manifest"
	"github.com/vango-dev/fsroute/pkg/router"
)

func genCmd(c *cli) *cobra.Command {
	var (
		dir   string
		out   string
		check bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write the route manifest",
		Long: `Scan the routes directory, validate it, and write a JSON manifest
that servers can load without access to the source tree.

The output is deterministic - running it multiple times produces identical
output unless the routes change.

The manifest location is a file path or an s3://bucket/key URL. S3 access
uses AWS_REGION and the AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY
environment variables; AWS_ENDPOINT_URL_S3 selects a compatible endpoint.

Examples:
  fsroute gen
  fsroute gen --out=dist/routes.json
  fsroute gen --out=s3://my-bucket/app/routes.json
  fsroute gen --check                   # fail if the manifest is stale`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			decls, err := c.declarations(ctx, source{dir: dir})
			if err != nil {
				return err
			}
			if _, err := router.Build(decls, c.cfg.BuildOptions()...); err != nil {
				return err
			}
			m := manifest.FromDeclarations(decls)

			location := out
			if location == "" {
				location = c.cfg.ManifestLocation()
			}
			store, err := manifest.Open(ctx, location)
			if err != nil {
				return errors.New("R021").Wrap(err).WithLocation(location)
			}

			if check {
				existing, err := store.Load(ctx)
				if err != nil {
					return errors.New("R020").Wrap(err).WithLocation(location)
				}
				if !slices.Equal(existing.Routes, m.Routes) {
					c.errorMsg("%s is out of date", location)
					c.info("Run `fsroute gen` to regenerate it")
					return errSilent
				}
				c.success("%s is up to date", location)
				return nil
			}

			if err := store.Save(ctx, m); err != nil {
				return errors.New("R021").Wrap(err).WithLocation(location)
			}
			c.logger.Debug("manifest written", "location", location)
			c.success("Wrote %d routes to %s", len(m.Routes), location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Routes directory (default from fsroute.json)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Manifest file or s3:// URL (default from fsroute.json)")
	cmd.Flags().BoolVar(&check, "check", false, "Verify the manifest matches the routes instead of writing it")

	return cmd
}
