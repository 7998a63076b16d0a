package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/simulation"
)

// CardsAction writes one PNG per named card.
func CardsAction(c *cli.Context) error {
	names := c.Args().Slice()
	if len(names) == 0 {
		return errors.New("name at least one card")
	}
	w, h := c.Int(widthFlag), c.Int(heightFlag)
	if w < 32 || h < 32 {
		return errors.Errorf("cards should be at least 32x32, got %dx%d", w, h)
	}
	dir := c.String(outFlag)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	for _, name := range names {
		path := filepath.Join(dir, name+".png")
		if err := rimage.WriteImageToFile(path, simulation.GenerateCard(name, w, h)); err != nil {
			return errors.Wrapf(err, "cannot write card %q", name)
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	}
	return nil
}
