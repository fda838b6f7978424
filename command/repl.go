package command

import (
	"io"

	"github.com/chzyer/readline"

	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
)

// lineReader is the readline surface the loop consumes.
type lineReader interface {
	Readline() (string, error)
}

// Interact runs the interactive command loop until EOF or quit.
func (c *Commands) Interact() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "autodis> ",
		InterruptPrompt: "\n",
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	return c.interact(rl)
}

// interact loops until EOF, quit, or a terminal failure. Command
// errors are reported and the loop keeps going; quit's ExitStatus and
// readline failures propagate.
func (c *Commands) interact(rl lineReader) error {
	log := logflags.CommandLogger()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := c.Call(line); err != nil {
			if e, ok := err.(models.ExitStatus); ok {
				return e
			}
			log.Error(err)
		}
	}
}
