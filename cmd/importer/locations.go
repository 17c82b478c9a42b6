package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cctv-survey/internal/auth"
	"cctv-survey/internal/config"
	"cctv-survey/internal/services"

	"github.com/spf13/cobra"
)

func newLocationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Location hierarchy import",
	}
	cmd.AddCommand(newLocationsImportCmd(a), newLocationsTemplateCmd())
	return cmd
}

func newLocationsImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create missing divisions, depots, bus stations and bus stands from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services.NewLocationImportService(a.client, a.catalogs(), a.runs, a.logr.Logger)

			f, err := os.Open(args[0])
			if err != nil {
				return withCode(exitFailure, err)
			}
			defer f.Close()

			summary, err := svc.Import(cmd.Context(), f, filepath.Base(args[0]))
			if err != nil {
				return withCode(exitFailure, fmt.Errorf("import aborted: %w", err))
			}
			return report(cmd.OutOrStdout(), summary, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLocationsTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank location workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := services.GenerateLocationTemplate()
			if err != nil {
				return withCode(exitFailure, err)
			}
			return writeOutput(cmd, out, body)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "location_template.xlsx", "Output file")
	return cmd
}

func newCoordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coords VALUE...",
		Short: "Normalize latitude/longitude strings to decimal degrees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, v := range args {
				out := services.NormalizeCoordinate(v)
				if out == nil {
					fmt.Fprintf(w, "%q\t(empty)\n", v)
					continue
				}
				fmt.Fprintf(w, "%q\t%s\n", v, *out)
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		userID int
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 token signed with JWT_SECRET for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return withCode(exitUsage, fmt.Errorf("JWT_SECRET is not set"))
			}
			if userID <= 0 {
				return withCode(exitUsage, fmt.Errorf("invalid --user: %d", userID))
			}
			tok, err := auth.NewVerifier(cfg.JWTSecret).Sign(userID, ttl)
			if err != nil {
				return withCode(exitFailure, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "Backend user id (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
