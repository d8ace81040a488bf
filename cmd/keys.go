package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/music"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

func parseKeyArg(cmd *cli.Command, name string) (music.Key, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return music.C, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	k, err := music.ParseKey(raw)
	if err != nil {
		return music.C, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}
	return k, nil
}

// KeyList prints the twelve keys with their semitone index.
func (r *Runner) KeyList(ctx context.Context, cmd *cli.Command) error {
	names := make([]string, 0, 12)
	for _, k := range music.Keys() {
		names = append(names, fmt.Sprintf("%d:%s", music.SemitoneIndex(k), k))
	}
	return r.writePlain("%s\n", strings.Join(names, " "))
}

// KeyTranspose prints the key n semitones from the given one.
func (r *Runner) KeyTranspose(ctx context.Context, cmd *cli.Command) error {
	k, err := parseKeyArg(cmd, "key")
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", music.Transpose(k, int(cmd.Int("by"))))
}

// KeyDistance prints the upward semitone distance between two keys.
func (r *Runner) KeyDistance(ctx context.Context, cmd *cli.Command) error {
	from, err := parseKeyArg(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseKeyArg(cmd, "to")
	if err != nil {
		return err
	}
	return r.writePlain("%d\n", music.Distance(from, to))
}
