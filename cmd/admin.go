package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// adminSession resolves the acting role and the curator for an admin command.
func (r *Runner) adminSession(cmd *cli.Command) (models.Role, *catalog.Curator, error) {
	role, err := r.role(cmd)
	if err != nil {
		return role, nil, err
	}
	curator, err := r.curation()
	if err != nil {
		return role, nil, err
	}
	return role, curator, nil
}

// AdminEntryAdd creates a song or hymn.
func (r *Runner) AdminEntryAdd(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	kind, err := models.ParseEntryKind(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}

	item := models.NewPersistedItem(0, kind, cmd.String("title"))
	if err := r.applyItemFlags(cmd, curator, item); err != nil {
		return err
	}

	lyrics, err := readText(cmd.String("lyrics"), cmd.String("lyrics-file"))
	if err != nil {
		return err
	}
	if kind == models.KindHymn && lyrics != "" {
		return fmt.Errorf("%w: hymns take --english and --localized, not --lyrics", shared.ErrInvalidArgument)
	}

	if err := curator.CreateItem(role, item, lyrics); err != nil {
		return err
	}

	r.writePlain("✓ Created %s %s (%s)\n", item.Kind, item.Title, item.ID())
	return nil
}

// AdminEntryUpdate changes the fields given as flags and leaves the rest untouched.
func (r *Runner) AdminEntryUpdate(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	item, err := curator.Item(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if cmd.IsSet("title") {
		item.Title = cmd.String("title")
	}
	if err := r.applyItemFlags(cmd, curator, item); err != nil {
		return err
	}

	if err := curator.UpdateItem(role, item); err != nil {
		return err
	}

	r.writePlain("✓ Updated %s (%s)\n", item.Title, item.ID())
	return nil
}

// AdminEntryDelete removes an entry and its versions.
func (r *Runner) AdminEntryDelete(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if err := curator.DeleteItem(role, id); err != nil {
		return err
	}

	r.writePlain("✓ Deleted %s\n", id)
	return nil
}

// AdminEntryDeactivate hides an entry from every listing, or restores it with --restore.
func (r *Runner) AdminEntryDeactivate(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	restore := cmd.Bool("restore")
	if err := curator.SetItemActive(role, id, restore); err != nil {
		return err
	}

	if restore {
		r.writePlain("✓ Restored %s\n", id)
	} else {
		r.writePlain("✓ Deactivated %s\n", id)
	}
	return nil
}

// AdminVersionAdd stores a new lyric version for a song.
func (r *Runner) AdminVersionAdd(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	lyrics, err := readText(cmd.String("lyrics"), cmd.String("lyrics-file"))
	if err != nil {
		return err
	}
	if lyrics == "" {
		return fmt.Errorf("%w: --lyrics or --lyrics-file is required", shared.ErrMissingArgument)
	}

	version := models.NewItemVersion(0, cmd.StringArg("item-id"), lyrics, cmd.Bool("primary"))
	version.Title = cmd.String("title")
	version.LanguageCode = cmd.String("language")
	version.Notes = cmd.String("notes")

	if err := curator.AddVersion(role, version); err != nil {
		return err
	}

	r.writePlain("✓ Added version %s to %s\n", version.ID(), version.ItemID)
	return nil
}

// AdminVersionPrimary makes a version the one shown for its song.
func (r *Runner) AdminVersionPrimary(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	itemID, versionID := cmd.StringArg("item-id"), cmd.StringArg("version-id")
	if err := curator.SetPrimaryVersion(role, itemID, versionID); err != nil {
		return err
	}

	r.writePlain("✓ %s is now the primary version of %s\n", versionID, itemID)
	return nil
}

// AdminCategoryAdd creates a category.
func (r *Runner) AdminCategoryAdd(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	category, err := curator.CreateCategory(role, cmd.StringArg("name"), cmd.String("description"))
	if err != nil {
		return err
	}

	r.writePlain("✓ Created category %s (%s)\n", category.Name, category.ID())
	return nil
}

// AdminCategoryDelete removes a category. Its entries fall back to the default category.
func (r *Runner) AdminCategoryDelete(ctx context.Context, cmd *cli.Command) error {
	role, curator, err := r.adminSession(cmd)
	if err != nil {
		return err
	}

	ref := cmd.StringArg("category")
	if err := curator.DeleteCategory(role, ref); err != nil {
		return err
	}

	r.writePlain("✓ Deleted category %s\n", ref)
	return nil
}

// applyItemFlags copies the optional item flags that were set onto item.
func (r *Runner) applyItemFlags(cmd *cli.Command, curator *catalog.Curator, item *models.PersistedItem) error {
	if cmd.IsSet("author") {
		item.Author = cmd.String("author")
	}
	if cmd.IsSet("composer") {
		item.Composer = cmd.String("composer")
	}
	if cmd.IsSet("category") {
		ref := strings.TrimSpace(cmd.String("category"))
		item.CategoryID = ""
		if ref != "" {
			category, err := curator.FindCategory(ref)
			if err != nil {
				return err
			}
			item.CategoryID = category.ID()
		}
	}
	if cmd.IsSet("number") {
		n := int(cmd.Int("number"))
		if item.Kind == models.KindHymn {
			item.HymnNumber = &n
		} else {
			item.Number = &n
		}
	}
	if cmd.IsSet("year") {
		year := int(cmd.Int("year"))
		item.YearWritten = &year
	}
	if cmd.IsSet("tags") {
		item.Tags = cmd.StringSlice("tags")
	}
	if cmd.IsSet("english") || cmd.IsSet("localized") {
		if item.Kind != models.KindHymn {
			return fmt.Errorf("%w: --english and --localized apply to hymns", shared.ErrInvalidArgument)
		}
	}
	if cmd.IsSet("english") {
		english := cmd.String("english")
		item.EnglishLyrics = &english
	}
	if cmd.IsSet("localized") {
		localized := cmd.String("localized")
		item.LocalizedLyrics = &localized
	}
	for flag, field := range map[string]*string{
		"sheet-music-url": &item.SheetMusicURL,
		"audio-url":       &item.AudioURL,
		"video-url":       &item.VideoURL,
		"key":             &item.KeySignature,
		"time-signature":  &item.TimeSignature,
		"tempo":           &item.Tempo,
	} {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}
	return nil
}

// readText returns inline text, or the contents of path when inline is empty.
func readText(inline, path string) (string, error) {
	if inline != "" && path != "" {
		return "", fmt.Errorf("%w: cannot specify both inline lyrics and a lyrics file", shared.ErrInvalidArgument)
	}
	if path == "" {
		return inline, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics file: %w", err)
	}
	return string(data), nil
}
