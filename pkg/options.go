package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hansbonini/xisotools/pkg/common"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// OutputNames holds the file names created inside each output directory
type OutputNames struct {
	Image       string `yaml:"image"`        // whole image when no split is needed
	FirstPart   string `yaml:"first_part"`   // first fragment
	SecondPart  string `yaml:"second_part"`  // second fragment
	Holding     string `yaml:"holding"`      // subdirectory keeping the original of a split image
	XBE         string `yaml:"xbe"`          // attach XBE
	OriginalXBE string `yaml:"original_xbe"` // temporary copy of the extracted XBE
}

// Options configures the XISO processor
type Options struct {
	TargetName string      `yaml:"target_name"`
	AttachXBE  string      `yaml:"attach_xbe"`
	MaxSize    int64       `yaml:"max_size"`
	NoSplit    bool        `yaml:"no_split"`
	Jobs       int         `yaml:"jobs"`
	Names      OutputNames `yaml:"names"`
}

// DefaultOptions returns the options used when no configuration file is given
func DefaultOptions() Options {
	return Options{
		TargetName: "default.xbe",
		MaxSize:    MaxImageSize,
		Jobs:       1,
		Names: OutputNames{
			Image:       "game.iso",
			FirstPart:   "game.1.iso",
			SecondPart:  "game.2.iso",
			Holding:     "_big",
			XBE:         "default.xbe",
			OriginalXBE: "default.orig.xbe",
		},
	}
}

// LoadOptions reads a YAML configuration file on top of DefaultOptions
func LoadOptions(fs afero.Fs, path string) (Options, error) {
	options := DefaultOptions()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return options, fmt.Errorf("%s %s: %w", common.ErrFailedToLoadConfig, path, err)
	}
	if err := yaml.Unmarshal(data, &options); err != nil {
		return options, fmt.Errorf("%s %s: %w", common.ErrFailedToLoadConfig, path, err)
	}
	if err := options.Validate(); err != nil {
		return options, fmt.Errorf("%s %s: %w", common.ErrFailedToLoadConfig, path, err)
	}
	return options, nil
}

// Validate rejects options that would produce an unusable output layout
func (o Options) Validate() error {
	if o.TargetName == "" {
		return errors.New("target_name must not be empty")
	}
	if o.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive, got %d", o.MaxSize)
	}
	if o.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", o.Jobs)
	}

	names := map[string]string{
		"image":        o.Names.Image,
		"first_part":   o.Names.FirstPart,
		"second_part":  o.Names.SecondPart,
		"holding":      o.Names.Holding,
		"xbe":          o.Names.XBE,
		"original_xbe": o.Names.OriginalXBE,
	}
	for key, name := range names {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("names.%s must be a plain file name, got %q", key, name)
		}
	}
	if o.Names.XBE == o.Names.OriginalXBE {
		return fmt.Errorf("names.xbe and names.original_xbe must differ, both are %q", o.Names.XBE)
	}
	if o.Names.FirstPart == o.Names.SecondPart {
		return fmt.Errorf("names.first_part and names.second_part must differ, both are %q", o.Names.FirstPart)
	}
	return nil
}

// FileStubProvider loads the attach XBE from a file
type FileStubProvider struct {
	fs   afero.Fs
	path string
}

// NewFileStubProvider creates a provider reading path from fs
func NewFileStubProvider(fs afero.Fs, path string) *FileStubProvider {
	return &FileStubProvider{fs: fs, path: path}
}

// DefaultXBE returns the attach XBE contents
func (p *FileStubProvider) DefaultXBE() ([]byte, error) {
	if p.path == "" {
		return nil, errors.New("no attach XBE configured")
	}
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", common.ErrFailedToLoadAttachXBE, p.path, err)
	}
	return data, nil
}
