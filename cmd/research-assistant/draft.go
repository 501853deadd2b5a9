package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/gen"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft paper sections from a project outline",
	Long: `Draft works against a paper project directory holding outline.yaml,
references.yaml, and one Markdown file per section. Use subcommands to
draft a section, check that every inline citation resolves, or emit the
reference list as BibTeX.`,
}

// --- section subcommand ---

var draftSectionCmd = &cobra.Command{
	Use:   "section [number]",
	Short: "Draft one outline section with inline citations",
	Long: `Section drafts the outline entry with the given number ("02" or its
file prefix) using the generation model, citing papers from
references.yaml as [CitationKey]. The draft goes to --output when given,
otherwise into the configured output directory, otherwise to stdout.

A draft citing keys missing from references.yaml is still written; the
unknown keys are reported as a warning.`,
	RunE: runDraftSection,
}

func runDraftSection(cmd *cobra.Command, args []string) error {
	section, _ := cmd.Flags().GetString("section")
	if section == "" && len(args) > 0 {
		section = args[0]
	}
	if section == "" {
		return fmt.Errorf("section required: pass a section number or --section")
	}

	backend, cfg, err := generationBackend(cmd)
	if err != nil {
		return err
	}

	projectDir, _ := cmd.Flags().GetString("project")
	text, err := gen.DraftSection(context.Background(), backend, projectDir, section, cfg)
	if err != nil && text == "" {
		return err
	}
	if err != nil {
		// Unknown citation keys: keep the draft, surface the problem.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" && cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		outPath = filepath.Join(cfg.OutputDir, section+"-draft.md")
	}
	if outPath == "" {
		fmt.Println(text)
		return nil
	}

	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing draft: %w", err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

// --- validate subcommand ---

var draftValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every citation in the project resolves",
	Long: `Validate scans every section file in the project for inline [Key]
citations and reports the ones missing from references.yaml.`,
	RunE: runDraftValidate,
}

func runDraftValidate(cmd *cobra.Command, args []string) error {
	projectDir, _ := cmd.Flags().GetString("project")

	missing, err := gen.ValidateCitations(projectDir)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Println("All citations resolve.")
		return nil
	}

	for _, key := range missing {
		fmt.Printf("unknown citation: [%s]\n", key)
	}
	return fmt.Errorf("%d unknown citation(s)", len(missing))
}

// --- bibtex subcommand ---

var draftBibtexCmd = &cobra.Command{
	Use:   "bibtex",
	Short: "Emit the project reference list as BibTeX",
	RunE:  runDraftBibtex,
}

func runDraftBibtex(cmd *cobra.Command, args []string) error {
	projectDir, _ := cmd.Flags().GetString("project")

	refs, err := gen.LoadReferences(projectDir)
	if err != nil {
		return err
	}
	bib := gen.GenerateBibTeX(refs)

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		fmt.Print(bib)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(bib), 0o644); err != nil {
		return fmt.Errorf("writing BibTeX: %w", err)
	}
	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	draftCmd.PersistentFlags().String("project", "paper", "paper project directory (contains outline.yaml, references.yaml)")

	// Section flags.
	draftSectionCmd.Flags().String("section", "", "outline section number to draft")
	draftSectionCmd.Flags().String("output", "", "write the draft to this path instead of the output directory")
	draftSectionCmd.Flags().String("model", "", "AI model identifier (default gpt-4o-mini)")
	draftSectionCmd.Flags().String("openai-api-key", "", "OpenAI API key (default: .secrets/openai-api-key)")

	// Bibtex flags.
	draftBibtexCmd.Flags().String("output", "", "write BibTeX to this path instead of stdout")

	// Wire subcommands.
	draftCmd.AddCommand(draftSectionCmd)
	draftCmd.AddCommand(draftValidateCmd)
	draftCmd.AddCommand(draftBibtexCmd)

	rootCmd.AddCommand(draftCmd)
}
