package catalog

import (
	"bytes"
	"fmt"
	"os"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// Console captures what code under test prints.
type Console struct {
	Out   *bytes.Buffer
	Err   *bytes.Buffer
	Width int
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintf(c.Err, format, args...)
}

// VirtualConsole provides a *Console.
//
// Options:
//   - width: line width code under test should wrap at (default 88)
//   - save_to: file the captured stdout is written to at teardown
var VirtualConsole = fixtures.DefineScoped(ConsoleName, newConsole,
	fixtures.WithDescription("captured stdout and stderr"),
)

func newConsole(opts fixtures.Options, _ *fixtures.Fixtures) (*Console, func() error, error) {
	c := &Console{
		Out:   &bytes.Buffer{},
		Err:   &bytes.Buffer{},
		Width: opts.Int("width", 88),
	}

	saveTo := opts.String("save_to", "")
	if saveTo == "" {
		return c, nil, nil
	}

	return c, func() error {
		if err := os.WriteFile(saveTo, c.Out.Bytes(), 0o644); err != nil {
			return fmt.Errorf("saving console output: %w", err)
		}
		return nil
	}, nil
}
