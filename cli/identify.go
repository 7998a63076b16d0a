package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

// IdentifyAction runs recognition on one image file and prints the match.
func IdentifyAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one image")
	}
	logger, closeLog := newLogger(c)
	defer closeLog()
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	engine, err := newEngine(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	frame, err := rimage.ReadImageFromFile(c.Args().First())
	if err != nil {
		return err
	}

	ctx := c.Context
	if c.String(debugOutFlag) != "" {
		// the match rejections explain the drawn result
		ctx = logging.EnableDebugMode(ctx, "identify")
	}
	match, err := engine.Identify(ctx, frame)
	if err != nil && !errors.Is(err, recognition.ErrNoFeatures) {
		return err
	}
	fmt.Fprintln(c.App.Writer, matchTable(match))

	if out := c.String(debugOutFlag); out != "" {
		if err := rimage.WriteImageToFile(out, recognition.DrawTrackedMatch(frame, match)); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
	}
	return nil
}

func matchTable(match *recognition.TrackedMatch) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Card", "Inliers", "Confidence", "Outline"})
	if match == nil {
		t.AppendRow(table.Row{"Nothing Found", "", "", ""})
		return t.Render()
	}
	outline := ""
	for i, p := range match.Quad {
		if i > 0 {
			outline += " "
		}
		outline += fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y)
	}
	t.AppendRow(table.Row{match.Name(), match.InlierCount, fmt.Sprintf("%.2f", match.Confidence), outline})
	return t.Render()
}
