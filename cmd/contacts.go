package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/tunename/internal/contacts"
	"github.com/desertthunder/tunename/internal/formatter"
	"github.com/desertthunder/tunename/internal/repositories"
	"github.com/desertthunder/tunename/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) contactRepository() (*repositories.ContactRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewContactRepository(db), nil
}

// ContactsImport reads a CSV file and upserts every row.
func (r *Runner) ContactsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	imported, err := contacts.ImportCSV(in)
	if err != nil {
		return fmt.Errorf("failed to read contacts: %w", err)
	}

	repo, err := r.contactRepository()
	if err != nil {
		return err
	}

	created, updated, err := repo.Import(imported)
	if err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}

	r.logger.Info("contacts imported", "file", path, "created", created, "updated", updated)
	r.writePlain("✓ Imported %d contacts (%d new, %d updated)\n", len(imported), created, updated)
	return nil
}

// ContactsList prints stored contacts, or only the saved selection with --filtered.
func (r *Runner) ContactsList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.contactRepository()
	if err != nil {
		return err
	}

	list, err := repo.Contacts(cmd.Bool("filtered"))
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}
	if len(list) == 0 {
		r.writePlain("No contacts. Import some with 'tunename contacts import --file contacts.csv'.\n")
		return nil
	}
	return formatter.WriteContacts(r.output, list)
}

// ContactsFilter replaces the saved selection with --id values, or clears it.
func (r *Runner) ContactsFilter(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringSlice("id")
	reset := cmd.Bool("clear")

	if reset && len(ids) > 0 {
		return fmt.Errorf("%w: cannot combine --clear with --id", shared.ErrInvalidArgument)
	}
	if !reset && len(ids) == 0 {
		return fmt.Errorf("%w: pass --id at least once, or --clear", shared.ErrMissingArgument)
	}

	repo, err := r.contactRepository()
	if err != nil {
		return err
	}

	if reset {
		if err := repo.ClearFiltered(); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
		r.writePlain("✓ Contact selection cleared\n")
		return nil
	}

	if err := repo.SetFiltered(ids); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	r.writePlain("✓ Selected %d contacts for filtered builds\n", len(ids))
	return nil
}

// ContactsExport writes every stored contact as CSV.
func (r *Runner) ContactsExport(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.contactRepository()
	if err != nil {
		return err
	}

	list, err := repo.Contacts(false)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	path := cmd.String("output")
	if path == "" {
		return contacts.ExportCSV(r.output, list)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := contacts.ExportCSV(f, list); err != nil {
		return err
	}
	r.logger.Info("contacts exported", "path", path, "count", len(list))
	return nil
}
