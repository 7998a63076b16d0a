package cli

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/robotics-cluedo/cluedo/config"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/mission"
	navbuiltin "github.com/robotics-cluedo/cluedo/services/navigation/builtin"
	posbuiltin "github.com/robotics-cluedo/cluedo/services/position/builtin"
	"github.com/robotics-cluedo/cluedo/simulation"
	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

// errNoHardware is returned by run without --sim: this build ships no drivers for a physical base.
var errNoHardware = errors.New("no robot hardware is configured, pass --sim to run in the simulated room")

// RunMissionAction runs the mission and prints what was found. Interrupting the command stops the
// mission and still prints the partial result.
func RunMissionAction(c *cli.Context) (err error) {
	if !c.Bool(simFlag) {
		return errNoHardware
	}
	logger, closeLog := newLogger(c)
	defer closeLog()
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSimulation(); err != nil {
		return err
	}
	engine, err := newEngine(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	cards := make(map[string]image.Image, engine.Catalog().Len())
	for _, tmpl := range engine.Catalog().Templates() {
		cards[tmpl.Name()] = tmpl.ReferenceImage()
	}
	world, err := simulation.NewWorld(cfg.Simulation, cards, logger.Sublogger("sim"))
	if err != nil {
		return err
	}

	hub := sensorhub.NewHub(nil, logger.Sublogger("sensorhub"))
	defer func() {
		err = multierr.Combine(err, hub.Close(), world.Base().Close(context.Background()))
	}()
	if err := hub.Start(world.Sources(), cfg.SensorPeriod()); err != nil {
		return err
	}
	if silent := hub.WaitForWarmup(c.Context, cfg.Warmup()); len(silent) > 0 {
		logger.Warnw("starting without some sensor streams", "silent", silent)
	}

	ctrl, err := newController(cfg, hub, world, engine, logger)
	if err != nil {
		return err
	}
	found, runErr := ctrl.Run(c.Context)
	fmt.Fprintln(c.App.Writer, summaryTable(ctrl, found))
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func newController(
	cfg *config.Config,
	hub *sensorhub.Hub,
	world *simulation.World,
	engine *recognition.Engine,
	logger logging.Logger,
) (*mission.Controller, error) {
	missionCfg, err := cfg.Mission()
	if err != nil {
		return nil, err
	}
	return mission.NewController(missionCfg, mission.Deps{
		Hub:        hub,
		Position:   posbuiltin.NewBuiltIn(cfg.Position, world.Base(), logger.Sublogger("position")),
		Navigation: navbuiltin.NewBuiltIn(cfg.Navigation, world.Base(), logger.Sublogger("navigation")),
		Recognizer: engine,
		Logger:     logger,
	})
}

func summaryTable(ctrl *mission.Controller, found *mission.DetectionSet) string {
	t := table.NewWriter()
	t.SetTitle("mission " + ctrl.RunID())
	t.AppendHeader(table.Row{"#", "Card"})
	for i, name := range found.Names() {
		t.AppendRow(table.Row{i + 1, name})
	}
	states := make([]string, 0, len(ctrl.History()))
	for _, tr := range ctrl.History() {
		if tr.To == mission.StateRecognizing {
			states = append(states, fmt.Sprintf("tick %d", tr.Tick))
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d found, state %s", found.Len(), found.Quota(), ctrl.State())})
	if len(states) > 0 {
		t.AppendFooter(table.Row{"", "recognized at " + strings.Join(states, ", ")})
	}
	return t.Render()
}
