// Package config loads saved search profiles. A profile holds the same
// settings as the command line flags and may be written in TOML or YAML.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/fetchlog-go/internal/normalizer"
	"github.com/f4ah6o/fetchlog-go/internal/search"
)

// ProfileEnv names the environment variable consulted when no profile flag
// is given.
const ProfileEnv = "FETCHLOG_PROFILE"

// DefaultOutputDir is the folder created under the user's Documents folder
// when no output path is configured.
const DefaultOutputDir = "FetchLog_Results"

// Profile represents the structure of a profile file. Booleans are pointers
// so an absent key keeps its default.
type Profile struct {
	Roots         []string `toml:"roots" yaml:"roots"`
	Recursive     *bool    `toml:"recursive" yaml:"recursive"`
	Archives      *bool    `toml:"archives" yaml:"archives"`
	CaseSensitive *bool    `toml:"case_sensitive" yaml:"case_sensitive"`
	Extensions    []string `toml:"extensions" yaml:"extensions"`
	Include       []string `toml:"include" yaml:"include"`
	Exclude       []string `toml:"exclude" yaml:"exclude"`
	Content       string   `toml:"content" yaml:"content"`
	Encoding      string   `toml:"encoding" yaml:"encoding"`
	HTMLText      bool     `toml:"html_text" yaml:"html_text"`
	Output        string   `toml:"output" yaml:"output"`
}

// Load reads the profile at path. The format follows the file extension:
// .yaml and .yml are YAML, anything else is TOML.
func Load(path string) (*Profile, error) {
	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		md, err := toml.DecodeFile(path, &p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
		}
	}
	return &p, nil
}

// Resolve returns the profile path to use: flagValue when set, otherwise
// the value of ProfileEnv. An empty result means no profile.
func Resolve(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(ProfileEnv)
}

// DefaultOutputPath returns Documents/FetchLog_Results under the user's home
// directory, or FetchLog_Results in the working directory when the home
// directory cannot be resolved.
func DefaultOutputPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		usr, uerr := user.Current()
		if uerr != nil || usr.HomeDir == "" {
			return DefaultOutputDir
		}
		home = usr.HomeDir
	}
	return filepath.Join(home, "Documents", DefaultOutputDir)
}

// Request converts the profile into a search request. List values may use
// comma or semicolon separators. Unset booleans default to recursive search
// inside archives with case-insensitive content matching.
func (p *Profile) Request() search.Request {
	return search.Request{
		Roots:            normalizer.Patterns(p.Roots),
		Recursive:        boolOr(p.Recursive, true),
		SearchInArchives: boolOr(p.Archives, true),
		CaseSensitive:    boolOr(p.CaseSensitive, false),
		Extensions:       normalizer.Extensions(normalizer.SplitAll(p.Extensions)),
		IncludePatterns:  normalizer.SplitAll(p.Include),
		ExcludePatterns:  normalizer.SplitAll(p.Exclude),
		ContentFilter:    p.Content,
		OutputPath:       p.Output,
		Encoding:         p.Encoding,
		HTMLText:         p.HTMLText,
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
