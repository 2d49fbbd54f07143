package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iudanet/thoughtbook/internal/client/freemium"
	"github.com/iudanet/thoughtbook/internal/client/notes"
	"github.com/iudanet/thoughtbook/internal/client/storage"
	"github.com/iudanet/thoughtbook/internal/config"
)

// BodyTerminator строка, завершающая ввод текста заметки
const BodyTerminator = "."

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing note id. Usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", args[0])
	}
	return id, nil
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	all, err := c.deps.Notes.List(ctx)
	if err != nil {
		return err
	}
	return c.render(notesListTmpl, all)
}

func (c *Cli) runShow(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}

	note, err := c.deps.Notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			return fmt.Errorf("note %d not found", id)
		}
		return err
	}
	return c.render(noteTmpl, note)
}

// checkLimit возвращает false, если создание заметки запрещено
func (c *Cli) checkLimit(ctx context.Context) (bool, error) {
	count, err := c.deps.Notes.Count(ctx)
	if err != nil {
		return false, err
	}

	decision, err := c.deps.Freemium.Evaluate(ctx, count, c.deps.License.IsPremium())
	if err != nil {
		c.deps.Logger.Error("freemium evaluation failed", "error", err)
	}

	switch decision {
	case freemium.Prompt:
		m, _ := c.deps.Freemium.Metrics(ctx)
		if err := c.render(upsellTmpl, map[string]any{"Limit": m.NoteCountLimit, "App": config.AppName}); err != nil {
			return false, err
		}
		return false, nil
	case freemium.Block:
		c.io.Println("Note limit reached.")
		return false, nil
	default:
		return true, nil
	}
}

func (c *Cli) runNew(ctx context.Context, args []string) error {
	ok, err := c.checkLimit(ctx)
	if err != nil || !ok {
		return err
	}

	c.drafts++
	key := fmt.Sprintf("new-%d", c.drafts)
	defer c.deps.Autosave.Forget(key)

	title, err := c.io.ReadInput("Title: ")
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}

	id, err := c.editBody(ctx, key, notes.Draft{Title: title}, strings.TrimSpace(title) != "")
	if err != nil {
		return err
	}
	if id == 0 {
		c.io.Println("Empty note discarded.")
		return nil
	}

	c.io.Printf("Note %d saved.\n", id)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}

	note, err := c.deps.Notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			return fmt.Errorf("note %d not found", id)
		}
		return err
	}

	key := fmt.Sprintf("note-%d", id)
	defer c.deps.Autosave.Forget(key)

	if err := c.render(noteTmpl, note); err != nil {
		return err
	}

	title, err := c.io.ReadInput(fmt.Sprintf("Title [%s]: ", note.Title))
	if err != nil {
		return fmt.Errorf("failed to read title: %w", err)
	}
	changed := strings.TrimSpace(title) != ""
	if !changed {
		title = note.Title
	}

	if _, err := c.editBody(ctx, key, notes.Draft{ID: id, Title: title, Body: note.Body}, changed); err != nil {
		return err
	}

	c.io.Printf("Note %d saved.\n", id)
	return nil
}

// editBody читает строки текста до BodyTerminator. Каждая строка
// передается в автосохранение, в конце черновик сохраняется сразу.
// Для edit пустая первая строка оставляет старый текст, иначе текст заменяется.
func (c *Cli) editBody(ctx context.Context, key string, d notes.Draft, dirty bool) (int64, error) {
	if d.ID != 0 {
		c.io.Printf("Enter new text, finish with a line containing only %q (just %q keeps the text):\n", BodyTerminator, BodyTerminator)
	} else {
		c.io.Printf("Enter text, finish with a line containing only %q:\n", BodyTerminator)
	}

	if dirty {
		c.deps.Autosave.Edit(key, d)
	}

	var lines []string
	for {
		line, err := c.io.ReadInput("")
		if err != nil || line == BodyTerminator {
			break
		}
		lines = append(lines, line)
		d.Body = strings.Join(lines, "\n")
		c.deps.Autosave.Edit(key, d)
	}

	if err := c.deps.Autosave.Flush(ctx); err != nil {
		return 0, fmt.Errorf("failed to save note: %w", err)
	}
	return c.deps.Autosave.ID(key), nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}

	note, err := c.deps.Notes.Get(ctx, id)
	if errors.Is(err, storage.ErrNoteNotFound) {
		c.io.Printf("Note %d does not exist.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	ok, err := c.confirm(fmt.Sprintf("Delete %q?", note.Title))
	if err != nil {
		return err
	}
	if !ok {
		c.io.Println("Deletion cancelled.")
		return nil
	}

	c.deps.Autosave.Forget(fmt.Sprintf("note-%d", id))
	if err := c.deps.Notes.Delete(ctx, id); err != nil {
		return err
	}
	c.io.Println("Note deleted.")
	return nil
}

func (c *Cli) runClear(ctx context.Context, args []string) error {
	ok, err := c.confirm("Delete ALL notes? This cannot be undone.")
	if err != nil {
		return err
	}
	if !ok {
		c.io.Println("Cancelled.")
		return nil
	}

	if err := c.deps.Notes.ClearAll(ctx); err != nil {
		return err
	}
	c.io.Println("All notes deleted.")
	return nil
}

func (c *Cli) runSearch(ctx context.Context, args []string) error {
	found, err := c.deps.Notes.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return c.render(notesListTmpl, found)
}

func (c *Cli) runImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing file. Usage: import <file>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() {
		_ = f.Close()
	}()

	added, err := c.deps.Notes.ImportJSON(ctx, f)
	if err != nil {
		return err
	}
	c.io.Printf("Imported %d note(s).\n", added)
	return nil
}

func (c *Cli) runExport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing file. Usage: export <file>")
	}

	f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}

	if err := c.deps.Notes.ExportJSON(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}

	c.io.Printf("Notes exported to %s (not encrypted).\n", args[0])
	return nil
}
