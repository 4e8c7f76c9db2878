package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/encoding"
	"github.com/pthm/talui/lib/generator"
	"github.com/pthm/talui/lib/model"
	"github.com/pthm/talui/lib/store"
)

func runCheck(out, logW io.Writer, args []string) error {
	e, err := newEnv("check", out, logW, args, nil)
	if err != nil {
		return err
	}
	app, err := e.loadApp()
	if err != nil {
		return err
	}

	windows := 0
	for _, p := range app.Pages() {
		windows += len(p.Windows())
	}
	e.logger.Info("app checked", "app", app.Name(), "pages", len(app.Pages()), "windows", windows)
	fmt.Fprintf(out, "app %s: %d pages, %d windows ok\n", app.Name(), len(app.Pages()), windows)
	return nil
}

func runDoc(out, logW io.Writer, args []string) error {
	e, err := newEnv("doc", out, logW, args, nil)
	if err != nil {
		return err
	}
	app, err := e.loadApp()
	if err != nil {
		return err
	}
	writeOutline(out, app)
	return nil
}

func runGenerate(out, logW io.Writer, args []string) error {
	var output, pkg string
	var dryRun bool
	e, err := newEnv("generate", out, logW, args, func(fs *flag.FlagSet) {
		fs.StringVar(&output, "o", "", "output file")
		fs.StringVar(&pkg, "pkg", "binds", "package name")
		fs.BoolVar(&dryRun, "dry-run", false, "show what would be generated")
	})
	if err != nil {
		return err
	}
	app, err := e.loadApp()
	if err != nil {
		return err
	}

	gen := generator.New(generator.Options{Package: pkg, DryRun: dryRun, Out: out})
	if output != "" {
		return gen.WriteFile(app, output)
	}
	src, err := gen.Generate(app)
	if err != nil {
		return err
	}
	_, err = out.Write(src)
	return err
}

func runLayers(out, logW io.Writer, args []string) error {
	e, err := newEnv("layers", out, logW, args, nil)
	if err != nil {
		return err
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.Layers()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func runForget(out, logW io.Writer, args []string) error {
	e, err := newEnv("forget", out, logW, args, nil)
	if err != nil {
		return err
	}
	if e.flags.NArg() != 1 {
		fmt.Fprintln(out, "usage: talui forget <layer>")
		return errUsage
	}
	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer s.Close()

	layer := e.flags.Arg(0)
	if err := s.DeleteLayer(layer); err != nil {
		return err
	}
	e.logger.Info("layer deleted", "layer", layer, "store", e.settings.StorePath)
	return nil
}

// openStore opens the existing store named by the settings. A missing file is
// an error rather than a new, empty store.
func openStore(e *env) (*store.Bolt, error) {
	if _, err := os.Stat(e.settings.StorePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no store at %s", e.settings.StorePath)
	}
	return store.OpenBolt(e.settings.StorePath, store.WithLogger(e.logger))
}

func runDecode(out, logW io.Writer, args []string) error {
	var sensitive bool
	e, err := newEnv("decode", out, logW, args, func(fs *flag.FlagSet) {
		fs.BoolVar(&sensitive, "sensitive", false, "token is encrypted")
	})
	if err != nil {
		return err
	}
	if e.flags.NArg() != 1 {
		fmt.Fprintln(out, "usage: talui decode [-sensitive] <token>")
		return errUsage
	}
	if e.settings.SigningKey == "" {
		return fmt.Errorf("decode: signing_key is not set")
	}

	enc, err := encoding.NewEncoder([]byte(e.settings.SigningKey))
	if err != nil {
		return err
	}
	values, err := enc.Decode(e.flags.Arg(0), sensitive)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	var buf bytes.Buffer
	y := yaml.NewEncoder(&buf)
	y.SetIndent(2)
	if err := y.Encode(values); err != nil {
		return err
	}
	if err := y.Close(); err != nil {
		return err
	}
	_, err = out.Write(buf.Bytes())
	return err
}

// placeholders returns compiler options binding every handler and resolver
// named in def to a stand-in.
func placeholders(def *config.Definition) []config.Option {
	var opts []config.Option
	seen := make(map[string]bool)
	var walk func(d *config.Definition)
	walk = func(d *config.Definition) {
		switch d.Tag {
		case config.TagController:
			name := stringOr(d.Attrs["handler"], d.Name)
			if !seen["c:"+name] {
				seen["c:"+name] = true
				opts = append(opts, config.WithController(name, placeholder(name)))
			}
		case config.TagAttribute:
			if strings.EqualFold(stringOr(d.Attrs["kind"], ""), "resolved") {
				name := stringOr(d.Attrs["resolver"], d.Name)
				if !seen["r:"+name] {
					seen["r:"+name] = true
					opts = append(opts, config.WithResolver(name, func(model.Model) any { return nil }))
				}
			}
		}
		for _, child := range d.Children {
			walk(child)
		}
	}
	walk(def)
	return opts
}

func placeholder(name string) config.ControllerFunc {
	return func(context.Context, model.Model) (string, error) {
		return "", fmt.Errorf("handler %q is not bound", name)
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
