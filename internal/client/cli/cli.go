// Package cli реализует интерактивную оболочку Thought Book:
// таблицу именованных команд поверх iocli.IO.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/iudanet/thoughtbook/internal/client/auth"
	"github.com/iudanet/thoughtbook/internal/client/feedback"
	"github.com/iudanet/thoughtbook/internal/client/freemium"
	"github.com/iudanet/thoughtbook/internal/client/iocli"
	"github.com/iudanet/thoughtbook/internal/client/license"
	"github.com/iudanet/thoughtbook/internal/client/notes"
	"github.com/iudanet/thoughtbook/internal/client/settings"
	"github.com/iudanet/thoughtbook/internal/client/update"
	"github.com/iudanet/thoughtbook/internal/client/worker"
	"github.com/iudanet/thoughtbook/internal/validation"
)

// Prompt приглашение оболочки
const Prompt = "thoughtbook> "

// errExit команда запросила завершение оболочки
var errExit = errors.New("exit requested")

// Deps сервисы, с которыми работают команды
type Deps struct {
	Notes     *notes.Service
	Autosave  *notes.Autosaver
	Auth      *auth.Store
	Gate      *auth.Gate
	Settings  *settings.Service
	License   *license.Manager
	Purchaser *license.Purchaser
	Emails    *license.EmailStore
	Freemium  *freemium.Counter
	Feedback  *feedback.Service
	Updates   *update.Checker
	Pool      *worker.Pool
	Logger    *slog.Logger
	DeviceID  string
}

type command struct {
	run   func(ctx context.Context, args []string) error
	name  string
	usage string
	help  string
}

// Cli диспетчер команд
type Cli struct {
	io       iocli.IO
	commands map[string]*command
	deps     Deps
	order    []string
	drafts   int
}

// New создает оболочку и регистрирует команды
func New(io iocli.IO, deps Deps) *Cli {
	c := &Cli{
		io:       io,
		deps:     deps,
		commands: make(map[string]*command),
	}
	c.registerCommands()
	return c
}

func (c *Cli) register(name, usage, help string, run func(ctx context.Context, args []string) error) {
	c.commands[name] = &command{name: name, usage: usage, help: help, run: run}
	c.order = append(c.order, name)
}

func (c *Cli) registerCommands() {
	c.register("list", "list", "List notes, most recently edited first", c.runList)
	c.register("new", "new", "Write a new note", c.runNew)
	c.register("show", "show <id>", "Show a note", c.runShow)
	c.register("edit", "edit <id>", "Edit a note", c.runEdit)
	c.register("delete", "delete <id>", "Delete a note", c.runDelete)
	c.register("clear", "clear", "Delete all notes", c.runClear)
	c.register("search", "search <text>", "Find notes containing text", c.runSearch)
	c.register("import", "import <file>", "Import notes from a JSON export", c.runImport)
	c.register("export", "export <file>", "Export notes to JSON (plain text)", c.runExport)
	c.register("upgrade", "upgrade", "Buy the premium version", c.runUpgrade)
	c.register("activate", "activate", "Activate a license you already have", c.runActivate)
	c.register("email", "email [address]", "Show or change your email", c.runEmail)
	c.register("feedback", "feedback", "Send feedback to the developers", c.runFeedback)
	c.register("password", "password", "Change the startup password", c.runPassword)
	c.register("settings", "settings [password on|off]", "Show or change settings", c.runSettings)
	c.register("update", "update", "Check for a new version", c.runUpdate)
	c.register("help", "help", "Show this help", c.runHelp)
	c.register("exit", "exit", "Quit", func(ctx context.Context, args []string) error { return errExit })
}

// Execute выполняет одну строку команды. exit=true означает,
// что оболочку нужно закрыть.
func (c *Cli) Execute(ctx context.Context, line string) (exit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	name := strings.ToLower(fields[0])
	cmd, ok := c.commands[name]
	if !ok {
		c.io.Printf("Unknown command: %s\n\n", fields[0])
		return false, c.runHelp(ctx, nil)
	}

	c.deps.Logger.Debug("command", "name", name)
	err = cmd.run(ctx, fields[1:])
	if errors.Is(err, errExit) {
		return true, nil
	}
	return false, err
}

// Shell читает команды до "exit", конца ввода или отмены ctx.
// Перед выходом сохраняет несохраненные черновики.
func (c *Cli) Shell(ctx context.Context) error {
	defer func() {
		if err := c.deps.Autosave.Flush(context.Background()); err != nil {
			c.deps.Logger.Error("failed to flush drafts", "error", err)
		}
	}()

	c.io.Println("Type 'help' for the list of commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.io.ReadInput(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}

		exit, err := c.Execute(ctx, line)
		if err != nil {
			c.io.Printf("Error: %v\n", err)
		}
		if exit {
			return nil
		}
	}
}

func (c *Cli) runHelp(ctx context.Context, args []string) error {
	c.io.Println("Commands:")
	for _, name := range c.order {
		cmd := c.commands[name]
		c.io.Printf("  %-28s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

// confirm спрашивает yes/no
func (c *Cli) confirm(prompt string) (bool, error) {
	answer, err := c.io.ReadInput(prompt + " (yes/no): ")
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

// readSecret читает пароль; "exit" завершает приложение
func (c *Cli) readSecret(prompt string) (string, error) {
	s, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if validation.IsExit(s) {
		return "", errExit
	}
	return s, nil
}
