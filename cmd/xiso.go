// Package cmd provides command-line interface for XISO image processing.
// This file contains the split, list and dump commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/hansbonini/xisotools/pkg"
	"github.com/hansbonini/xisotools/pkg/common"
	"github.com/hansbonini/xisotools/pkg/xbox"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// splitCmd prepares a single image or every image of a directory.
var splitCmd = &cobra.Command{
	Use:   "split [image_or_directory]",
	Short: "Split oversized XISO images and write their attach XBE",
	Long: `Prepare XISO images for storage with a file size ceiling.

For every image a directory named after it is created next to it, holding:
  - default.xbe   the attach XBE carrying the title of the image's default.xbe
  - game.iso      the image itself, when it fits under the ceiling
  - game.1.iso    first half of the image, when it does not
  - game.2.iso    second half of the image
  - _big/         the original of a split image

When the argument is a directory every .iso file inside it is processed.
A failing image is reported and the batch goes on with the next one.

Example:
  xisotools split --attach attach.xbe ./games/
  xisotools split -v --max-size 4294967296 Halo.iso
  xisotools split --config xisotools.yaml --report report.yaml ./games/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		setVerbose(cmd)

		fs := afero.NewOsFs()
		options, err := splitOptions(cmd, fs)
		if err != nil {
			return err
		}

		processor := pkg.NewXISOProcessor(fs, options,
			pkg.NewFileStubProvider(fs, options.AttachXBE),
			xbox.NewCertificateInjector(fs))

		info, err := fs.Stat(input)
		if err != nil {
			return fmt.Errorf("failed to access %s: %w", input, err)
		}

		var results []pkg.ItemResult
		if info.IsDir() {
			fmt.Printf("Processing image directory: %s\n", input)
			results, err = processor.SplitDir(input)
			if err != nil {
				return fmt.Errorf("failed to process image directory: %w", err)
			}
		} else {
			fmt.Printf("Processing image file: %s\n", input)
			result, err := processor.SplitFile(input)
			if err != nil {
				return fmt.Errorf("failed to process image file: %w", err)
			}
			results = append(results, *result)
		}

		reportPath, _ := cmd.Flags().GetString("report")
		if reportPath != "" {
			if err := writeReport(fs, reportPath, results); err != nil {
				return err
			}
			fmt.Printf("Report written to: %s\n", reportPath)
		}

		report := pkg.NewBatchReport(results)
		fmt.Printf("Processed %d image(s): %d succeeded, %d failed\n", report.Total, report.Succeeded, report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d image(s) failed", report.Failed)
		}
		return nil
	},
}

// listCmd prints the directory tree of an image.
var listCmd = &cobra.Command{
	Use:   "list [image]",
	Short: "List the XDVDFS directory tree of an image",
	Long: `List every file and directory of an XISO image with its
start sector, size in bytes and path.

Example:
  xisotools list Halo.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setVerbose(cmd)

		processor := pkg.NewXISOProcessor(afero.NewOsFs(), pkg.DefaultOptions(), nil, nil)
		count, err := processor.List(args[0], os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to list image: %w", err)
		}

		fmt.Printf("%d entries\n", count)
		return nil
	},
}

// dumpCmd extracts all files of an image.
var dumpCmd = &cobra.Command{
	Use:   "dump [image] [output_directory]",
	Short: "Extract files from an XISO image",
	Long: `Extract every file of an XISO image, keeping its directory structure.

Example:
  xisotools dump Halo.iso ./output/
  xisotools dump -v Halo.iso ./output/`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]
		outputDir := args[1]
		setVerbose(cmd)

		processor := pkg.NewXISOProcessor(afero.NewOsFs(), pkg.DefaultOptions(), nil, nil)

		fmt.Printf("Processing image file: %s\n", imagePath)
		fmt.Printf("Output directory: %s\n", outputDir)

		count, err := processor.Dump(imagePath, outputDir)
		if err != nil {
			return fmt.Errorf("failed to extract image: %w", err)
		}

		fmt.Printf("%d file(s) extracted to: %s\n", count, outputDir)
		return nil
	},
}

func setVerbose(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	common.SetVerboseMode(verbose)
}

// splitOptions loads the configuration file, if any, and applies the flags
// that were set explicitly on top of it
func splitOptions(cmd *cobra.Command, fs afero.Fs) (pkg.Options, error) {
	options := pkg.DefaultOptions()

	flags := cmd.Flags()
	if configPath, _ := flags.GetString("config"); configPath != "" {
		loaded, err := pkg.LoadOptions(fs, configPath)
		if err != nil {
			return options, err
		}
		options = loaded
	}

	if flags.Changed("attach") {
		options.AttachXBE, _ = flags.GetString("attach")
	}
	if flags.Changed("target") {
		options.TargetName, _ = flags.GetString("target")
	}
	if flags.Changed("max-size") {
		options.MaxSize, _ = flags.GetInt64("max-size")
	}
	if flags.Changed("no-split") {
		options.NoSplit, _ = flags.GetBool("no-split")
	}
	if flags.Changed("jobs") {
		options.Jobs, _ = flags.GetInt("jobs")
	}

	if err := options.Validate(); err != nil {
		return options, err
	}
	if options.AttachXBE == "" {
		return options, fmt.Errorf("no attach XBE given, use --attach or attach_xbe in the configuration file")
	}
	return options, nil
}

func writeReport(fs afero.Fs, path string, results []pkg.ItemResult) error {
	file, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", common.ErrFailedToWriteReport, path, err)
	}
	defer file.Close()

	return pkg.ExportReport(results, file)
}

// init initializes the XISO commands with their flags.
func init() {
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dumpCmd)

	defaults := pkg.DefaultOptions()
	splitCmd.Flags().String("config", "", "YAML configuration file")
	splitCmd.Flags().String("attach", defaults.AttachXBE, "Attach XBE written next to each image")
	splitCmd.Flags().String("target", defaults.TargetName, "Name of the XBE whose title is injected")
	splitCmd.Flags().Int64("max-size", defaults.MaxSize, "Largest image size in bytes kept as a single file")
	splitCmd.Flags().Bool("no-split", defaults.NoSplit, "Never split, only move images")
	splitCmd.Flags().IntP("jobs", "j", defaults.Jobs, "Number of images processed in parallel")
	splitCmd.Flags().String("report", "", "Write a YAML report of the batch to this file")
}
