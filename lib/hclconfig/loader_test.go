package hclconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/model"
)

const shopApp = `
app "shop" {
  model {
    attribute "locale" {
      type    = "string"
      default = "en"
    }
  }
  controller "logout" {
    handler = "done"
  }
}
`

const cartPage = `
app "shop" {
  page "cart" {
    model {
      attribute "items" {
        type      = "int"
        default   = 0
        eventable = true
        lifecycle = "persist"
      }
    }
    window "summary" {
      model {
        attribute "count" {
          type      = "int"
          aliases   = ["items"]
          aliasable = true
        }
      }
      view "show" {
        template = "cart.summary"
        default  = true
      }
      view "empty" {
        styles = ["compact"]
      }
      controller "checkout" {
        handler = "done"
      }
      event "countChanged" {
        attribute    = "count"
        action       = "checkout"
        pass_through = true
      }
    }
  }
}
`

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.hcl", shopApp)
	writeFile(t, dir, "pages/cart.hcl", cartPage)
	writeFile(t, dir, "notes.txt", "not a definition")

	def, err := Load(dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, config.TagApp, def.Tag)
	assert.Equal(t, "shop", def.Name)

	var tags []config.Tag
	for _, child := range def.Children {
		tags = append(tags, child.Tag)
	}
	assert.Equal(t, []config.Tag{config.TagModel, config.TagController, config.TagPage}, tags)

	done := config.ControllerFunc(func(context.Context, model.Model) (string, error) { return "done", nil })
	app, err := config.NewCompiler(config.WithController("done", done)).Compile(def)
	require.NoError(t, err)

	win, err := app.Window("cart", "summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"cart.count"}, win.EventKeys())
	assert.True(t, win.Events()["cart.count"].PassThrough())
	assert.Equal(t, []string{"compact"}, win.View("empty").Styles)
	assert.Equal(t, "cart.summary", win.View("missing").Template)

	items, ok := win.Page().Model().Lookup("items")
	require.True(t, ok)
	assert.Equal(t, 0, items.DefaultValue(nil))
	assert.Equal(t, model.LifecyclePersist, items.Lifecycle())

	locale, ok := app.Model().Lookup("locale")
	require.True(t, ok)
	assert.Equal(t, "en", locale.DefaultValue(nil))
}

func TestLoadErrors(t *testing.T) {
	t.Run("no files", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.ErrorIs(t, err, ErrNoApp)
	})

	t.Run("syntax", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "bad.hcl", `app "shop" {`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.hcl")
	})

	t.Run("unknown argument", func(t *testing.T) {
		_, err := NewLoader().Parse("x.hcl", []byte(`app "shop" { colour = "red" }`))
		require.Error(t, err)
	})

	t.Run("two apps", func(t *testing.T) {
		_, err := NewLoader().Parse("x.hcl", []byte(`
app "shop" {}
app "admin" {}
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"admin"`)
	})
}

func TestParseAttributeValues(t *testing.T) {
	def, err := NewLoader().Parse("values.hcl", []byte(`
app "a" {
  model {
    name = "root"
    attribute "ratio" {
      type    = "float"
      default = 1.5
    }
    attribute "tags" {
      kind  = "config"
      value = ["x", "y"]
    }
  }
}
`))
	require.NoError(t, err)
	require.Len(t, def.Children, 1)

	m := def.Children[0]
	assert.Equal(t, "root", m.Name)
	require.Len(t, m.Children, 2)
	assert.Equal(t, map[string]any{"type": "float", "default": 1.5}, m.Children[0].Attrs)
	assert.Equal(t, map[string]any{"kind": "config", "value": []any{"x", "y"}}, m.Children[1].Attrs)
	assert.Contains(t, m.Children[0].Pos, "values.hcl")
}

func TestToNative(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want any
	}{
		{"nil", cty.NilVal, nil},
		{"null", cty.NullVal(cty.String), nil},
		{"unknown", cty.UnknownVal(cty.Number), nil},
		{"string", cty.StringVal("x"), "x"},
		{"bool", cty.True, true},
		{"whole number", cty.NumberIntVal(42), int64(42)},
		{"fraction", cty.NumberFloatVal(0.25), 0.25},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), []any{"a", int64(1)}},
		{"object", cty.ObjectVal(map[string]cty.Value{"k": cty.False}), map[string]any{"k": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
