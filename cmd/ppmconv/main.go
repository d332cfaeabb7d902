// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ppmconv CLI.
//
// Run with no arguments, ppmconv walks the current directory, converts every
// file whose name matches *.ppm* into a sibling PNG named by cutting four
// characters off the path and appending -generated.png, and prints one
// "src -->" / "\tout" pair per file on stdout.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppmconv/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// configErr holds a config file that exists but could not be read.
var configErr error

// rootCmd converts the tree rooted at the working directory.
var rootCmd = &cobra.Command{
	Use:   "ppmconv",
	Short: "Recursively convert PPM images to PNG",
	Long: `ppmconv finds every file below the current directory whose name matches
*.ppm* (image.ppm, image.ppm.bak, ...), decodes it, and writes a PNG next to it
named by cutting the last four characters off the source path and appending
"-generated.png". An existing output is deleted before it is rewritten.

Each file prints two lines on stdout: "<src> -->" when it starts and
"\t<output>" when it is written. The first failure stops the run.

Settings can also come from ppmconv.yaml or PPMCONV_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

// flagKeys maps command-line flags to their config keys.
var flagKeys = map[string]string{
	"root":                "conversion.root",
	"pattern":             "conversion.pattern",
	"trim":                "conversion.trim_len",
	"marker":              "conversion.marker",
	"format":              "conversion.target_format",
	"max-pixels":          "conversion.max_decoded_pixels",
	"workers":             "conversion.workers",
	"backend":             "conversion.backend",
	"magick-image":        "conversion.magick_image",
	"max-width":           "conversion.max_width",
	"max-height":          "conversion.max_height",
	"png-compression":     "conversion.png_compression",
	"jpeg-quality":        "conversion.jpeg_quality",
	"history":             "history.enabled",
	"history-dir":         "history.dir",
	"history-max-results": "history.max_results",
	"log-level":           "log_level",
}

func init() {
	cobra.OnInitialize(initConfig)

	d := types.Default()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ppmconv.yaml or ~/.config/ppmconv/ppmconv.yaml)")
	pf.String("log-level", d.LogLevel, "stderr log level: debug, info, warn, error")
	pf.String("history-dir", d.History.Dir, "directory holding history.db")
	pf.Int("history-max-results", d.History.MaxResults, "default row limit when listing history")

	f := rootCmd.Flags()
	f.String("root", d.Conversion.Root, "directory to scan recursively")
	f.String("pattern", d.Conversion.Pattern, "glob matched against each file name")
	f.Int("trim", d.Conversion.TrimLen, "characters cut from the end of the source path")
	f.String("marker", d.Conversion.Marker, "text appended to the trimmed path")
	f.String("format", d.Conversion.TargetFormat, "output format: png, jpeg, gif, bmp, tiff, ppm")
	f.Int64("max-pixels", d.Conversion.MaxDecodedPixels, "reject sources larger than this many pixels (0 = unlimited)")
	f.Int("workers", d.Conversion.Workers, "files converted concurrently")
	f.String("backend", string(d.Conversion.Backend), "codec backend: native or imagemagick")
	f.String("magick-image", d.Conversion.MagickImage, "container image for the imagemagick backend")
	f.Int("max-width", d.Conversion.MaxWidth, "downscale wider images (0 = keep)")
	f.Int("max-height", d.Conversion.MaxHeight, "downscale taller images (0 = keep)")
	f.String("png-compression", d.Conversion.PNGCompression, "png compression: default, none, speed, best")
	f.Int("jpeg-quality", d.Conversion.JPEGQuality, "jpeg quality (1-100)")
	f.Bool("history", d.History.Enabled, "record conversions in the history database")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ppmconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ppmconv"))
		}
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
		}
	}
}

// configureViper enables PPMCONV_* environment overrides (for example
// PPMCONV_CONVERSION_WORKERS) and registers the defaults.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("PPMCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, types.Default())
}

// setDefaults registers every config key so AutomaticEnv and Unmarshal
// see keys that have no flag or file value.
func setDefaults(v *viper.Viper, d types.Config) {
	c := d.Conversion
	v.SetDefault("conversion.root", c.Root)
	v.SetDefault("conversion.pattern", c.Pattern)
	v.SetDefault("conversion.trim_len", c.TrimLen)
	v.SetDefault("conversion.marker", c.Marker)
	v.SetDefault("conversion.target_format", c.TargetFormat)
	v.SetDefault("conversion.max_decoded_pixels", c.MaxDecodedPixels)
	v.SetDefault("conversion.workers", c.Workers)
	v.SetDefault("conversion.backend", string(c.Backend))
	v.SetDefault("conversion.magick_image", c.MagickImage)
	v.SetDefault("conversion.max_width", c.MaxWidth)
	v.SetDefault("conversion.max_height", c.MaxHeight)
	v.SetDefault("conversion.png_compression", c.PNGCompression)
	v.SetDefault("conversion.jpeg_quality", c.JPEGQuality)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.dir", d.History.Dir)
	v.SetDefault("history.max_results", d.History.MaxResults)
	v.SetDefault("log_level", d.LogLevel)
}

// bindFlags binds every flag the command defines to its config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// loadConfig merges defaults, config file, environment, and the flags of
// cmd into a validated Config.
func loadConfig(v *viper.Viper, cmd *cobra.Command) (types.Config, error) {
	if configErr != nil {
		return types.Config{}, configErr
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return types.Config{}, err
	}

	cfg := types.Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// newLogger returns a stderr text logger at the named level.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("config: log_level %q: use debug, info, warn, or error", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
