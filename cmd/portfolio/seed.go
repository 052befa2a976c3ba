package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/portfolio-api/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with initial content",
	Long: `Inserts projects from a JSON file ({"projects": [...]}) when none exist,
en/ru translations from <locales>/<lang>/translation.json when absent, skills
derived from the ru translation when none exist, the default contacts, and the
profile photo from the ru translation. Existing content is left alone.`,
	RunE: runSeed,
}

var seedFlags struct {
	projects string
	locales  string
}

func init() {
	seedCmd.Flags().StringVar(&seedFlags.projects, "projects", "", "path to projects.json")
	seedCmd.Flags().StringVar(&seedFlags.locales, "locales", "", "translations root (defaults to translations.source_dir)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	locales := firstNonEmpty(seedFlags.locales, a.cfg.Translations.SourceDir)

	opts := service.SeedOptions{ProjectsFile: seedFlags.projects}
	if locales != "" {
		opts.Locales = service.NewDirLoader(locales)
	}

	report, err := a.services.Seed.Seed(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "projects: %d\n", report.Projects)
	fmt.Fprintf(out, "translations: %v\n", report.Translations)
	fmt.Fprintf(out, "skills: %d\n", report.Skills)
	fmt.Fprintf(out, "contacts: %d\n", report.Contacts)
	fmt.Fprintf(out, "profile created: %t\n", report.Profile)
	return nil
}
