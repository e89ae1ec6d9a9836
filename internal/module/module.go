// Package module composes the application out of explicit module definitions.
//
// A [Definition] lists the modules it imports, the controllers and providers it
// owns and an optional middleware configuration step. [Build] walks the tree and
// turns it into fx options, so nothing is discovered by scanning.
package module

import (
	"go.uber.org/fx"

	"github.com/jdholdren/cattery/internal/serverutil"
)

// Controller mounts its routes on the application's router.
type Controller interface {
	Register(r serverutil.ErrRouter)
}

// Definition describes one module of the application.
type Definition struct {
	Name    string
	Imports []Definition

	// Constructors whose result implements [Controller].
	Controllers []any
	// Constructors handed to [fx.Provide] as-is.
	Providers []any

	// Binds middleware to routes, runs once while building.
	Configure func(c *Consumer)
}

// Build registers the definition and everything it imports.
//
// Imports are registered before the module importing them, in declaration
// order. A module imported more than once is registered the first time only.
func Build(root Definition) fx.Option {
	var (
		consumer = &Consumer{}
		seen     = map[string]bool{}
	)

	opt := build(root, consumer, seen)

	return fx.Options(opt, fx.Supply(consumer.Pipeline()))
}

func build(def Definition, c *Consumer, seen map[string]bool) fx.Option {
	if seen[def.Name] {
		return fx.Options()
	}
	seen[def.Name] = true

	opts := make([]fx.Option, 0, len(def.Imports)+len(def.Controllers)+1)
	for _, imp := range def.Imports {
		opts = append(opts, build(imp, c, seen))
	}
	if len(def.Providers) > 0 {
		opts = append(opts, fx.Provide(def.Providers...))
	}
	for _, ctrl := range def.Controllers {
		opts = append(opts, fx.Provide(AsController(ctrl)))
	}
	if def.Configure != nil {
		def.Configure(c)
	}

	return fx.Module(def.Name, opts...)
}

// AsController annotates a constructor so its result joins the controllers group.
func AsController(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Controller)),
		fx.ResultTags(`group:"controllers"`),
	)
}

// Names lists the modules [Build] would activate, in registration order.
func Names(root Definition) []string {
	var (
		names []string
		seen  = map[string]bool{}
		walk  func(Definition)
	)
	walk = func(def Definition) {
		if seen[def.Name] {
			return
		}
		seen[def.Name] = true

		for _, imp := range def.Imports {
			walk(imp)
		}
		names = append(names, def.Name)
	}
	walk(root)

	return names
}
