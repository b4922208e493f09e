// Package dependency wires the ctxarchive services using go.uber.org/dig.
package dependency

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/dig"

	"github.com/ctxarchive/ctxarchive/internal/app"
	"github.com/ctxarchive/ctxarchive/internal/archive"
	"github.com/ctxarchive/ctxarchive/internal/config"
	"github.com/ctxarchive/ctxarchive/internal/memory"
	"github.com/ctxarchive/ctxarchive/internal/session"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	service *app.Service
	runID   RunID
}

func (c *Container) Service() *app.Service { return c.service }
func (c *Container) RunID() string         { return string(c.runID) }

// RunID is a named string type so dig can distinguish the per-invocation
// identifier from plain strings.
type RunID string

// Output is the writer flows report to.
type Output struct{ io.Writer }

// New builds and wires all services from cfg. Flow output goes to out.
func New(cfg config.Config, out io.Writer) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() Output { return Output{out} }); err != nil {
		return nil, err
	}
	if err := d.Provide(newRunID); err != nil {
		return nil, err
	}
	if err := d.Provide(newLocator); err != nil {
		return nil, err
	}
	if err := d.Provide(archive.NewStore); err != nil {
		return nil, err
	}
	if err := d.Provide(newRunner); err != nil {
		return nil, err
	}
	if err := d.Provide(newBridge); err != nil {
		return nil, err
	}
	if err := d.Provide(func(
		cfg config.Config,
		locator *session.Locator,
		store *archive.Store,
		bridge *memory.Bridge,
		o Output,
		id RunID,
	) *app.Service {
		return app.NewService(cfg, locator, store, bridge, o.Writer, app.WithRunID(string(id)))
	}); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(svc *app.Service, id RunID) {
		result = &Container{service: svc, runID: id}
	})
	return result, err
}

func newRunID() RunID {
	return RunID(uuid.NewString())
}

func newLocator(cfg config.Config) *session.Locator {
	return session.NewLocator(cfg.ProjectsDir)
}

func newRunner() memory.Runner {
	return memory.ExecRunner{}
}

func newBridge(cfg config.Config, runner memory.Runner) *memory.Bridge {
	return memory.NewBridge(cfg.Memory, runner)
}
