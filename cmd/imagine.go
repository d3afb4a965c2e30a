package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/newsdesk/internal/archive"
	"github.com/matheuskafuri/newsdesk/internal/browser"
	"github.com/matheuskafuri/newsdesk/internal/config"
	"github.com/matheuskafuri/newsdesk/internal/imagegen"
	"github.com/matheuskafuri/newsdesk/internal/tui"
)

var (
	flagRatio       string
	flagImageOutput string
	flagImageOpen   bool
)

var imagineCmd = &cobra.Command{
	Use:   "imagine [prompt]",
	Short: "Generate an image from a text prompt",
	Long: `Generate one image with the configured FLUX model and save it as PNG.

Ratios: 16:9 (1024x576), 4:3 (1024x768), 1:1 (1024x1024). Unknown ratios
fall back to 4:3.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, err := argOrAsk(args, "Enter your image prompt:", "a lighthouse at dusk", "newsdesk imagine <prompt>")
		if err != nil {
			return err
		}
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		if err := e.creds.Require(config.NeedGeneration); err != nil {
			return err
		}

		ratio, err := chooseRatio(cmd)
		if err != nil {
			return err
		}

		client, err := imagegen.New(e.cfg.Image, e.creds.GenerationKey)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		tui.Step(w, "Generating %s image...", ratio)
		img, err := client.Generate(cmd.Context(), imagegen.Request{Prompt: prompt, Ratio: ratio})
		if err != nil {
			return err
		}
		if err := imagegen.Save(flagImageOutput, img); err != nil {
			return err
		}
		tui.Success(w, "Image saved as %s", flagImageOutput)

		if db := e.openArchive(cmd); db != nil {
			defer db.Close()
			if _, err := db.RecordRun(archive.Run{Kind: archive.KindImage, Topic: prompt, Output: flagImageOutput}, nil); err != nil {
				e.log.Warn("archiving run", "err", err)
			}
		}

		if flagImageOpen {
			if err := browser.Open(flagImageOutput); err != nil {
				tui.Warn(cmd.ErrOrStderr(), "could not open %s: %v", flagImageOutput, err)
			}
		}
		return nil
	},
}

func init() {
	imagineCmd.Flags().StringVar(&flagRatio, "ratio", "", "aspect ratio: 16:9, 4:3 or 1:1")
	imagineCmd.Flags().StringVarP(&flagImageOutput, "output", "o", "generated_image.png", "output path")
	imagineCmd.Flags().BoolVar(&flagImageOpen, "open", false, "open the image when done")
}

// chooseRatio uses --ratio when given, a picker on a terminal, and 4:3
// otherwise.
func chooseRatio(cmd *cobra.Command) (imagegen.Ratio, error) {
	if flagRatio != "" {
		r, ok := imagegen.ParseRatio(flagRatio)
		if !ok {
			tui.Warn(cmd.ErrOrStderr(), "unknown ratio %q, using %s", flagRatio, r.Name)
		}
		return r, nil
	}
	if !tui.Interactive(os.Stdin) {
		return imagegen.Standard, nil
	}
	labels := make([]string, len(imagegen.Ratios))
	def := 0
	for i, r := range imagegen.Ratios {
		labels[i] = r.String()
		if r == imagegen.Standard {
			def = i
		}
	}
	i, err := tui.Pick("Choose an aspect ratio:", labels, def)
	if err != nil {
		return imagegen.Ratio{}, fmt.Errorf("choosing ratio: %w", err)
	}
	return imagegen.Ratios[i], nil
}
