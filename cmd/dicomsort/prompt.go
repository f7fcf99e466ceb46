package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"dicomsort/internal/placement"
)

const promptDirLimit = 10

func newDeletionPrompt(in io.Reader, out io.Writer) placement.Confirmer {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, plan placement.DeletionPlan) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "%d sorted source files can be deleted from %d directories:\n", plan.Files, len(plan.Dirs))
		for i, dir := range plan.Dirs {
			if i == promptDirLimit {
				fmt.Fprintf(out, "  ... and %d more\n", len(plan.Dirs)-promptDirLimit)
				break
			}
			fmt.Fprintf(out, "  %s\n", dir)
		}
		fmt.Fprint(out, "Delete them? [y/N]: ")

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
