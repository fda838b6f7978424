// Package command maps verb tokens to handlers operating on the
// currently loaded session. The verb table is fixed at construction
// and never mutated at runtime.
package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/binspect/autodis/logflags"
	"github.com/binspect/autodis/models"
	"github.com/binspect/autodis/session"
)

// Env is the ambient state handlers operate on. Out carries
// structured output only; usage messages and diagnostics go to Err.
type Env struct {
	Config  *models.Config
	Session *session.Session
	Out     io.Writer
	Err     io.Writer
}

type cmdfunc func(e *Env, args []string) error

type command struct {
	aliases []string
	helpMsg string
	cmdFn   cmdfunc
}

func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

type Commands struct {
	cmds []command
	env  *Env
}

// New returns the fixed command table bound to env.
func New(env *Env) *Commands {
	c := &Commands{env: env}
	c.cmds = []command{
		{aliases: []string{"help", "?"}, cmdFn: c.help, helpMsg: "Print the available commands."},
		{aliases: []string{"load"}, cmdFn: load, helpMsg: "load <path>. Load a binary ('-' reads stdin)."},
		{aliases: []string{"sections"}, cmdFn: sections, helpMsg: "List the sections of the loaded image."},
		{aliases: []string{"symbols", "sym"}, cmdFn: symbols, helpMsg: "symbols <section name or address>. List function symbols in a section."},
		{aliases: []string{"disassemble", "dis"}, cmdFn: disassemble, helpMsg: "disassemble <address or function name> [num of instructions]."},
		{aliases: []string{"decompile", "dec"}, cmdFn: decompile, helpMsg: "decompile <address or function name>."},
		{aliases: []string{"dump"}, cmdFn: dump, helpMsg: "dump <address> [numlines=10]. Hex dump of the containing section."},
		{aliases: []string{"save"}, cmdFn: save, helpMsg: "save <filename.ll>. Write the decompiled module to a file."},
		{aliases: []string{"quit", "q"}, cmdFn: quit, helpMsg: "Exit."},
	}
	return c
}

// Call tokenizes one input line and dispatches on the first token.
// Handlers receive the full token list, verb included.
func (c *Commands) Call(line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	for _, cmd := range c.cmds {
		if cmd.match(tokens[0]) {
			return cmd.cmdFn(c.env, tokens)
		}
	}
	return errors.Errorf("command not available: '%s'", tokens[0])
}

func (c *Commands) help(e *Env, args []string) error {
	var verbs []string
	for _, cmd := range c.cmds {
		verbs = append(verbs, cmd.aliases...)
	}
	fmt.Fprintln(e.Out, strings.Join(verbs, ","))
	return nil
}

// usage reports an argument-arity mismatch without failing the
// process or the command loop.
func usage(e *Env, msg string) error {
	fmt.Fprintln(e.Err, msg)
	return nil
}

func requireSession(e *Env) bool {
	if e.Session == nil {
		logflags.CommandLogger().Error("no binary loaded")
		return false
	}
	return true
}
