// Package hclconfig loads talui app definitions written in HCL.
//
// A definition file holds one or more app blocks. Blocks of the same app
// spread over several files are merged in file order:
//
//	app "shop" {
//	  model {
//	    attribute "locale" {
//	      type    = "string"
//	      default = "en"
//	    }
//	  }
//	  page "cart" {
//	    window "summary" {
//	      view "show" {
//	        template = "cart.summary"
//	        default  = true
//	      }
//	    }
//	  }
//	}
//
// The result is a config.Definition tree ready for config.Compiler.
package hclconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/pthm/talui/lib/config"
)

// ErrNoApp is returned when the loaded files declare no app.
var ErrNoApp = errors.New("hclconfig: no app block found")

// Loader reads HCL files into definitions.
type Loader struct {
	parser *hclparse.Parser
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{
		parser: hclparse.NewParser(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads every .hcl file under paths with a new Loader.
func Load(paths ...string) (*config.Definition, error) {
	return NewLoader().Load(paths...)
}

// Load reads every .hcl file under paths, which may be files or directories,
// and returns the definition of the single app they declare.
func (ld *Loader) Load(paths ...string) (*config.Definition, error) {
	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	ld.logger.Debug("definition files found", "count", len(files))

	var apps []*appBlock
	for _, name := range files {
		f, diags := ld.parser.ParseHCLFile(name)
		if diags.HasErrors() {
			return nil, fmt.Errorf("hclconfig: parse %s: %w", name, diags)
		}
		blocks, err := decode(name, f)
		if err != nil {
			return nil, err
		}
		apps = append(apps, blocks...)
	}
	return assemble(apps)
}

// Parse reads a single definition from src. filename is used in positions.
func (ld *Loader) Parse(filename string, src []byte) (*config.Definition, error) {
	f, diags := ld.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclconfig: parse %s: %w", filename, diags)
	}
	apps, err := decode(filename, f)
	if err != nil {
		return nil, err
	}
	return assemble(apps)
}

func decode(name string, f *hcl.File) ([]*appBlock, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("hclconfig: decode %s: %w", name, diags)
	}
	return root.Apps, nil
}

// assemble merges app blocks of the same name and translates the result.
func assemble(apps []*appBlock) (*config.Definition, error) {
	if len(apps) == 0 {
		return nil, ErrNoApp
	}
	var def *config.Definition
	for _, a := range apps {
		translated, err := translateApp(a)
		if err != nil {
			return nil, err
		}
		if def == nil {
			def = translated
			continue
		}
		if translated.Name != def.Name {
			return nil, fmt.Errorf("hclconfig: %s: second app %q, already loading %q", a.DeclRange, a.Name, def.Name)
		}
		def.Children = append(def.Children, translated.Children...)
	}
	return def, nil
}

// findFiles walks paths and returns every .hcl file once. Missing paths are
// skipped.
func findFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("hclconfig: %w", err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("hclconfig: %w", err)
		}
	}
	return files, nil
}
