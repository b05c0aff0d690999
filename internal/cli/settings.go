package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/aperture/internal/app"
	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/state"
)

var settingsResources = []string{"camera", "photo"}

func newGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "get camera|photo",
		Short:     "Print a settings resource as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: settingsResources,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, g, func(ctx context.Context, rt *app.Runtime) error {
				switch args[0] {
				case "camera":
					return getSettings(ctx, cmd.OutOrStdout(), rt.Camera, rt.Notifier.C())
				default:
					return getSettings(ctx, cmd.OutOrStdout(), rt.Photo, rt.Notifier.C())
				}
			})
		},
	}
}

func newSetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set camera|photo KEY=VALUE...",
		Short: "Change settings and print the device's reply",
		Long: `Change one or more settings. Values are read as JSON when they parse
and as plain strings otherwise, so iso=400 sends a number and
exposureMode=night sends a string.`,
		Example: `  aperture set camera iso=400 exposureMode=night
  aperture set photo timelapse=5000`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withRuntime(cmd, g, func(ctx context.Context, rt *app.Runtime) error {
				switch args[0] {
				case "camera":
					return setSettings(ctx, cmd.OutOrStdout(), rt.Camera, rt.Notifier.C(), patch)
				case "photo":
					return setSettings(ctx, cmd.OutOrStdout(), rt.Photo, rt.Notifier.C(), patch)
				default:
					return fmt.Errorf("unknown resource %q (want %s)", args[0], strings.Join(settingsResources, " or "))
				}
			})
		},
	}
}

// withRuntime builds a runtime for a one-shot command and closes it after fn.
func withRuntime(cmd *cobra.Command, g *globalFlags, fn func(context.Context, *app.Runtime) error) error {
	rt, err := app.Setup(g.oneShot(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ctx, cancel := g.withTimeout(cmd.Context())
	defer cancel()
	return fn(ctx, rt)
}

func getSettings[T any](ctx context.Context, out io.Writer, eng *fetchsync.Engine[T], wake <-chan struct{}) error {
	snap, err := firstSync(ctx, eng, wake)
	if err != nil {
		return err
	}
	return printJSON(out, snap.Data)
}

func setSettings[T any](ctx context.Context, out io.Writer, eng *fetchsync.Engine[T], wake <-chan struct{}, patch state.Patch) error {
	snap, err := firstSync(ctx, eng, wake)
	if err != nil {
		return err
	}
	if err := checkKeys(snap.Data, patch); err != nil {
		return err
	}
	if err := eng.SubmitEdit(patch); err != nil {
		return fmt.Errorf("%s: %w", eng.Name(), err)
	}

	snap, err = app.Await(ctx, eng, wake, app.Settled[T])
	if err != nil {
		return fmt.Errorf("%s: waiting for write: %w", eng.Name(), err)
	}
	if snap.LastError != nil {
		return fmt.Errorf("%s: write failed: %w", eng.Name(), snap.LastError)
	}
	return printJSON(out, snap.Data)
}

// firstSync starts eng and waits for its first read.
func firstSync[T any](ctx context.Context, eng *fetchsync.Engine[T], wake <-chan struct{}) (state.Snapshot[T], error) {
	eng.Start()
	snap, err := app.Await(ctx, eng, wake, app.Synced[T])
	if err != nil {
		return snap, fmt.Errorf("%s: waiting for device: %w", eng.Name(), err)
	}
	if snap.LastError != nil {
		return snap, fmt.Errorf("%s: read failed: %w", eng.Name(), snap.LastError)
	}
	return snap, nil
}

// parseAssignments turns KEY=VALUE arguments into a merge patch.
func parseAssignments(args []string) (state.Patch, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (want KEY=VALUE)", arg)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		fields[name] = value
	}
	return state.PatchOf(fields)
}

// checkKeys rejects members the resource does not have; a merge patch would
// otherwise add them and the typed decode would drop them silently.
func checkKeys[T any](current T, patch state.Patch) error {
	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(raw, &known); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	var edit map[string]json.RawMessage
	if err := json.Unmarshal(patch, &edit); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	var unknown []string
	for name := range edit {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("unknown setting %s (known: %s)", strings.Join(unknown, ", "), strings.Join(names, ", "))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
