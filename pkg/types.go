package pkg

//  mockgen -source=types.go -destination=types_mock.go -package pkg

// Layout describes what happened to a processed image
type Layout string

const (
	LayoutRenamed Layout = "renamed" // moved whole into the output directory
	LayoutSplit   Layout = "split"   // copied into two fragments, original kept aside
	LayoutFailed  Layout = "failed"
)

// StubProvider supplies the attach XBE written into every output directory
type StubProvider interface {
	DefaultXBE() ([]byte, error)
}

// Injector rewrites targetPath in place using fields read from sourcePath
type Injector interface {
	Inject(sourcePath, targetPath string) error
}

// ItemResult summarizes the processing of a single image
type ItemResult struct {
	Image       string   `yaml:"image"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
	Layout      Layout   `yaml:"layout"`
	Size        int64    `yaml:"size"`
	SplitSector int64    `yaml:"split_sector,omitempty"`
	Parts       []string `yaml:"parts,omitempty"`
	XBEFound    bool     `yaml:"xbe_found"`
	TitleID     string   `yaml:"title_id,omitempty"`
	TitleName   string   `yaml:"title_name,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}
