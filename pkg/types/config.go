// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FeesConfig holds settings for the fee extraction command.
type FeesConfig struct {
	// FontName is the Normal style font of the generated document.
	FontName string `json:"font_name" yaml:"font_name" mapstructure:"font_name"`

	// FontSize is the Normal style font size in points (default 11).
	FontSize float64 `json:"font_size" yaml:"font_size" mapstructure:"font_size"`

	// Title is the level-0 heading at the top of the document.
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// Note is the explanatory paragraph below the title.
	Note string `json:"note" yaml:"note" mapstructure:"note"`

	// ExtraUSKeywords and ExtraUKKeywords extend the built-in country lookups.
	ExtraUSKeywords []string `json:"extra_us_keywords,omitempty" yaml:"extra_us_keywords,omitempty" mapstructure:"extra_us_keywords"`
	ExtraUKKeywords []string `json:"extra_uk_keywords,omitempty" yaml:"extra_uk_keywords,omitempty" mapstructure:"extra_uk_keywords"`

	// WorkDir receives decks upgraded from legacy formats (default ".decktools/work").
	WorkDir string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`

	// Jobs bounds the number of decks processed concurrently in batch mode.
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`
}

// IntroConfig holds settings for the intro deck command.
type IntroConfig struct {
	// Output is the path of the generated deck.
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// ContentFile is an optional YAML file overriding the built-in slide text.
	ContentFile string `json:"content_file,omitempty" yaml:"content_file,omitempty" mapstructure:"content_file"`
}

// CatalogConfig holds settings for the program catalog.
type CatalogConfig struct {
	// Dir holds catalog.db and the export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all command configurations.
type Config struct {
	Fees    FeesConfig    `json:"fees" yaml:"fees" mapstructure:"fees"`
	Intro   IntroConfig   `json:"intro" yaml:"intro" mapstructure:"intro"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}
