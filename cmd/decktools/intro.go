// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/decktools/internal/intro"
)

var introCmd = &cobra.Command{
	Use:   "intro",
	Short: "Generate the introductory deck on student social cognition",
	Long: `Intro writes the 11-slide introductory deck on how students perceive
teachers who use AI: a title slide, bullet slides with speaker notes, the
role-ecology diagram, and references.

The slide text is built in. Pass --content with a YAML file to replace any
part of it; keys missing from the file keep their built-in text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		content, err := intro.LoadContent(cfg.Intro.ContentFile)
		if err != nil {
			return err
		}
		return intro.Generate(cmd.Context(), content, cfg.Intro.Output, cmd.OutOrStdout())
	},
}

func init() {
	introCmd.Flags().StringP("output", "o", intro.DefaultOutput, "output .pptx path")
	introCmd.Flags().String("content", "", "YAML file overriding the built-in slide text")

	_ = viper.BindPFlag("intro.output", introCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("intro.content_file", introCmd.Flags().Lookup("content"))

	rootCmd.AddCommand(introCmd)
}
