package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/comicmeta/cmi/pkg/anilist"
)

// cliChooser implements resolver.Chooser by blocking on terminal input.
// On a non-interactive stdin every choice is declined, so unattended runs
// only ever use cache hits and exact matches.
type cliChooser struct {
	client      *anilist.Client
	log         *logrus.Entry
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newCLIChooser(client *anilist.Client, log *logrus.Entry) *cliChooser {
	return &cliChooser{
		client:      client,
		log:         log,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: isatty.IsTerminal(os.Stdin.Fd()),
	}
}

func (c *cliChooser) Choose(ctx context.Context, candidates []anilist.Media, normalized string) (*anilist.Media, error) {
	if !c.interactive {
		c.log.Warnf("Stdin is not a terminal, declining selection for %q", normalized)
		return nil, nil
	}

	for {
		if len(candidates) == 0 {
			fmt.Fprintf(c.out, "No results for %q.\n", normalized)
		} else {
			fmt.Fprintln(c.out, renderCandidateTable(candidates))
		}

		fmt.Fprintf(c.out, "Match for %q - enter a number, paste an anilist.co/manga URL, or leave empty to skip: ", normalized)

		line, err := c.in.ReadString('\n')
		if err != nil {
			// EOF means nobody is answering; treat as declined
			return nil, nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}

		if n, err := strconv.Atoi(line); err == nil {
			if n >= 1 && n <= len(candidates) {
				return &candidates[n-1], nil
			}
			fmt.Fprintf(c.out, "No candidate %d.\n", n)
			continue
		}

		id, err := anilist.ParseMediaURL(line)
		if err != nil {
			fmt.Fprintf(c.out, "Unrecognized input: %v\n", err)
			continue
		}

		media, err := c.client.FetchByID(ctx, id)
		if err != nil {
			c.log.WithError(err).Errorf("Failed fetching manga %d", id)
			fmt.Fprintf(c.out, "Failed to fetch data: %v\n", err)
			continue
		}
		if media == nil {
			fmt.Fprintf(c.out, "No manga found for AniList id %d.\n", id)
			continue
		}

		// show the fetched record and let the user confirm it by number
		candidates = []anilist.Media{*media}
	}
}
