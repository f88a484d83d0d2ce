package tracerfx

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type Module interface {
	Install(app *App)
}

// App runs systems stage by stage once per frame, injecting resources into
// their pointer arguments by type.
type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	frame     uint64
}

func newApp() *App {
	app := &App{
		stages:    defaultStages(),
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, s := range app.stages {
		app.systems[s.Name] = nil
	}
	return app
}

// Step runs one frame.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frame++
}

// Run steps until stop returns true. stop is checked before every frame.
func (app *App) Run(stop func() bool) {
	for !stop() {
		app.Step()
	}
}

func (app *App) Frame() uint64 { return app.frame }

// Resource looks up the *T resource installed on app.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) AddResources(resources ...any) *App {
	return app.addResources(resources...)
}

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		var resource any
		var ok bool
		if argType.Kind() == reflect.Pointer {
			resource, ok = app.resources[argType.Elem()]
		}
		if !ok {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				systemType,
				argType,
			)
			panic(msg)
		}
		args[i] = reflect.ValueOf(resource)
	}
	systemValue.Call(args)
}
