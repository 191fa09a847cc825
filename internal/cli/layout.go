package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/ring"
	"github.com/matzehuels/dotring/pkg/widget"
)

// layoutCommand prints the even layout of N dots on the configured ring.
func (c *CLI) layoutCommand() *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "layout N",
		Short: "Print the angles and positions of N evenly spaced dots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "N must be a non-negative integer, got %q", args[0])
			}
			circle, err := c.circle(variant)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if n == 0 {
				printInfo(w, "An empty ring has no slots")
				return nil
			}
			printTable(w, []string{"Dot", "Degrees", "Radians", "X", "Y"}, layoutRows(circle, n))
			printDetail(w, "center (%.1f, %.1f), radius %.1f px", circle.CenterX, circle.CenterY, circle.Radius)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "widget variant: managed, toggle (default from config)")
	return cmd
}

// circle returns the ring of a widget built from the configuration.
func (c *CLI) circle(variant string) (ring.Circle, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return ring.Circle{}, err
	}
	v, err := parseVariant(variant)
	if err != nil {
		return ring.Circle{}, err
	}
	ctrl, err := widget.New(widgetOptions(cfg.Widget, v))
	if err != nil {
		return ring.Circle{}, err
	}
	return ctrl.Circle(), nil
}

// layoutRows formats one table row per slot of an n-dot layout.
func layoutRows(circle ring.Circle, n int) [][]string {
	angles := ring.EquallySpaced(n)
	rows := make([][]string, len(angles))
	for i, a := range angles {
		p := circle.PointAt(a)
		rows[i] = []string{
			widget.Label(i),
			strconv.Itoa(ring.Degrees(a)),
			fmt.Sprintf("%.4f", a),
			fmt.Sprintf("%.1f", p.X),
			fmt.Sprintf("%.1f", p.Y),
		}
	}
	return rows
}

// snapCommand reports the slot a dot dropped at an angle would take.
func (c *CLI) snapCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "snap DEGREES",
		Short: "Snap an angle to the slot a new dot would take",
		Long: `Snap an angle to the slot a new dot would take on a ring that already
holds --count dots. The ring then has count+1 evenly spaced slots; ties
resolve to the lowest slot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deg, err := strconv.ParseFloat(args[0], 64)
			if err != nil || math.IsNaN(deg) || math.IsInf(deg, 0) {
				return errors.New(errors.ErrCodeInvalidInput, "DEGREES must be a number, got %q", args[0])
			}
			if count < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--count must not be negative")
			}

			slot, angle := snapSlot(deg, count)
			w := cmd.OutOrStdout()
			printSuccess(w, "%s° snaps to %s", formatDegrees(deg), StyleNumber.Render(fmt.Sprintf("%d°", ring.Degrees(angle))))
			printDetail(w, "slot %d of %d (%.4f rad)", slot, count+1, angle)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "dots already on the ring")
	return cmd
}

// snapSlot returns the slot index and angle a dot at deg degrees snaps to
// when count dots are already placed.
func snapSlot(deg float64, count int) (int, float64) {
	angle := ring.ClosestValidPosition(ring.Radians(deg), count)
	slots := count + 1
	slot := int(math.Round(angle/(2*math.Pi/float64(slots)))) % slots
	return slot, angle
}

func formatDegrees(deg float64) string {
	return strconv.FormatFloat(deg, 'f', -1, 64)
}
