package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gistpen/internal/entity"
	"github.com/dmitrijs2005/gistpen/internal/logging"
	"github.com/dmitrijs2005/gistpen/internal/manager"
	"github.com/fatih/color"
)

// EntityManager is the part of *manager.Manager the REPL drives.
type EntityManager interface {
	Find(ctx context.Context, k entity.Kind, id int64, p manager.Params) (entity.Entity, error)
	FindBy(ctx context.Context, k entity.Kind, p manager.Params) (*entity.Collection[entity.Entity], error)
	Create(ctx context.Context, k entity.Kind, data map[string]any) (entity.Entity, error)
	Persist(ctx context.Context, e entity.Entity) (entity.Entity, error)
	Delete(ctx context.Context, e entity.Entity, force bool) (entity.Entity, error)
}

type App struct {
	manager EntityManager
	log     logging.Logger
	out     io.Writer
	errOut  io.Writer
}

func NewApp(m EntityManager, logger logging.Logger, out, errOut io.Writer) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{manager: m, log: logger, out: out, errOut: errOut}
}

// Run starts the REPL on in and returns when in is exhausted or the user quits.
func (a *App) Run(ctx context.Context, in io.Reader) {
	printlnFn("gistpen admin shell (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(in))
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return a.fail(err)
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// fail reports err in red and returns it.
func (a *App) fail(err error) error {
	_, _ = color.New(color.FgRed).Fprintln(a.errOut, "error:", err)
	return err
}

func (a *App) warn(msg string, args ...any) {
	_, _ = color.New(color.FgYellow).Fprintf(a.errOut, msg+"\n", args...)
}
