package main

import (
	"alcyxob/sets-tracker/internal/domain"
	"alcyxob/sets-tracker/internal/export"
	"alcyxob/sets-tracker/internal/pacific"
	"alcyxob/sets-tracker/internal/service"
	"alcyxob/sets-tracker/internal/setsync"
	"alcyxob/sets-tracker/internal/stats"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"add":      cmdAdd,
	"edit":     cmdEdit,
	"rm":       cmdRemove,
	"ls":       cmdList,
	"sync":     cmdSync,
	"export":   cmdExport,
	"stats":    cmdStats,
	"workouts": cmdWorkouts,
	"check":    cmdCheck,
	"device":   cmdDevice,
}

// setFlags are the set fields shared by add and edit.
type setFlags struct {
	fs         *pflag.FlagSet
	workout    string
	weight     float64
	bodyweight bool
	reps       int
	rest       int
	duration   int
	date       string
	clock      string
	at         string
	clear      []string
}

func newSetFlags(name string) *setFlags {
	f := &setFlags{fs: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	f.fs.StringVarP(&f.workout, "type", "t", "", "workout type or catalog value (e.g. squat, clean-power)")
	f.fs.Float64VarP(&f.weight, "weight", "w", 0, "weight in lb")
	f.fs.BoolVar(&f.bodyweight, "bodyweight", false, "bodyweight set (no numeric load)")
	f.fs.IntVarP(&f.reps, "reps", "r", 0, "repetitions")
	f.fs.IntVar(&f.rest, "rest", 0, "rest after the set, seconds")
	f.fs.IntVar(&f.duration, "duration", 0, "duration, seconds")
	f.fs.StringVar(&f.date, "date", "", "performed date, Pacific (YYYY-MM-DD)")
	f.fs.StringVar(&f.clock, "time", "", "performed time, Pacific (HH:mm)")
	f.fs.StringVar(&f.at, "at", "", "performed time as an ISO timestamp")
	f.fs.StringSliceVar(&f.clear, "clear", nil, "fields to clear: type,weight,bodyweight,reps,rest,duration,performed")
	return f
}

// patch returns the fields that were given on the command line.
func (f *setFlags) patch() (domain.SetPatch, error) {
	var p domain.SetPatch
	changed := f.fs.Changed

	if changed("type") {
		t := domain.WorkoutType(f.workout)
		if mapped, ok := domain.WorkoutValueToType(f.workout); ok {
			t = mapped
		}
		p.WorkoutType = domain.Some(t)
	}
	if changed("weight") {
		p.WeightLb = domain.Some(f.weight)
	}
	if changed("bodyweight") {
		p.WeightIsBodyweight = domain.Some(f.bodyweight)
	}
	if changed("reps") {
		p.Reps = domain.Some(f.reps)
	}
	if changed("rest") {
		p.RestSeconds = domain.Some(f.rest)
	}
	if changed("duration") {
		p.DurationSeconds = domain.Some(f.duration)
	}

	switch {
	case changed("at"):
		p.PerformedAtISO = domain.Some(f.at)
	case changed("date") || changed("time"):
		date, clock := f.date, f.clock
		if date == "" {
			date = pacific.TodayKey()
		}
		if clock == "" {
			clock = pacific.Now().Format("15:04")
		}
		iso := pacific.ToISO(date, clock)
		if iso == "" {
			return p, fmt.Errorf("invalid --date/--time %q %q", f.date, f.clock)
		}
		p.PerformedAtISO = domain.Some(iso)
	}

	for _, field := range f.clear {
		switch strings.TrimSpace(field) {
		case "type":
			p.WorkoutType = domain.Null[domain.WorkoutType]()
		case "weight":
			p.WeightLb = domain.Null[float64]()
		case "bodyweight":
			p.WeightIsBodyweight = domain.Null[bool]()
		case "reps":
			p.Reps = domain.Null[int]()
		case "rest":
			p.RestSeconds = domain.Null[int]()
		case "duration":
			p.DurationSeconds = domain.Null[int]()
		case "performed":
			p.PerformedAtISO = domain.Null[string]()
		default:
			return p, fmt.Errorf("unknown field %q in --clear", field)
		}
	}
	return p, nil
}

// load restores local state and tries one sync. Being offline is not an error.
func (a *app) load(ctx context.Context) error {
	if err := a.engine.Load(ctx); err != nil {
		if a.engine.Err() == nil {
			return err
		}
		a.warnOffline()
	}
	return nil
}

// push syncs after a local change unless this invocation already found the server unreachable.
func (a *app) push(ctx context.Context) {
	if a.offline {
		return
	}
	if err := a.engine.Sync(ctx); err != nil {
		a.warnOffline()
	}
}

func (a *app) warnOffline() {
	a.offline = true
	fmt.Fprintf(os.Stderr, "warning: could not sync with %s: %v\n", a.cfg.BaseURL, a.engine.Err())
}

func (a *app) printPending() {
	if !a.engine.Pending() {
		return
	}
	deletes := len(a.engine.PendingDeletes())
	if deletes > 0 {
		fmt.Fprintf(a.out, "Changes queued for sync (%d pending delete(s)).\n", deletes)
		return
	}
	fmt.Fprintln(a.out, "Changes queued for sync.")
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	f := newSetFlags("add")
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	patch, err := f.patch()
	if err != nil {
		return err
	}
	in := patch.Input()
	if in.PerformedAtISO == nil {
		now := domain.NowISO()
		in.PerformedAtISO = &now
	}
	if err := service.ValidateInput(in); err != nil {
		return err
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	set, err := a.engine.Add(ctx, in)
	if err != nil {
		return err
	}
	a.push(ctx)

	fmt.Fprintf(a.out, "Logged %s: %s\n", set.ID, describe(set))
	a.printPending()
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	f := newSetFlags("edit")
	if err := f.fs.Parse(args); err != nil {
		return err
	}
	if f.fs.NArg() != 1 {
		return errors.New("usage: setsctl edit ID [flags]")
	}
	id := f.fs.Arg(0)
	patch, err := f.patch()
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return errors.New("nothing to change")
	}
	if err := service.ValidateInput(patch.Input()); err != nil {
		return err
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	set, err := a.engine.Update(ctx, id, patch)
	if errors.Is(err, setsync.ErrSetNotFound) {
		return fmt.Errorf("no set with id %q", id)
	}
	if err != nil {
		return err
	}
	a.push(ctx)

	fmt.Fprintf(a.out, "Updated %s: %s\n", set.ID, describe(set))
	a.printPending()
	return nil
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("rm", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: setsctl rm ID [ID...]")
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	for _, id := range fs.Args() {
		if err := a.engine.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s\n", id)
	}
	a.push(ctx)
	a.printPending()
	return nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)
	day := fs.String("day", "", "only sets performed this Pacific day (YYYY-MM-DD, or \"today\")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *day == "today" {
		*day = pacific.TodayKey()
	}
	if *day != "" {
		if _, err := pacific.ParseDay(*day); err != nil {
			return fmt.Errorf("invalid --day %q", *day)
		}
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	sets := a.engine.Sets()
	if *day != "" {
		sets = stats.FilterByRange(sets, stats.Range{From: *day})
	}
	sets = stats.SortSets(sets)

	if len(sets) == 0 {
		fmt.Fprintln(a.out, "No sets logged yet.")
		a.printPending()
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPERFORMED\tWORKOUT\tSTATS")
	for _, s := range sets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, pacific.Format(s.SourceISO()), workoutLabel(s), strings.Join(domain.BuildSetStats(s), " · "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.printPending()
	return nil
}

func cmdSync(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	watch := fs.Bool("watch", false, "keep running and push changes as they are queued")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.engine.Load(ctx); err != nil {
		if !*watch {
			return err
		}
		a.warnOffline()
	} else {
		fmt.Fprintf(a.out, "Synced %d set(s).\n", len(a.engine.Sets()))
	}
	if !*watch {
		return nil
	}

	fmt.Fprintf(a.out, "Watching; retrying every %s. Ctrl-C to stop.\n", a.cfg.RetryInterval)
	if err := a.engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	day := fs.String("day", "", "only sets performed this Pacific day (YYYY-MM-DD)")
	upload := fs.Bool("upload", false, "store the export in the server's bucket and print a download link")
	local := fs.Bool("local", false, "export this device's copy without contacting the server")
	outPath := fs.StringP("output", "o", "", "write to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *upload {
		result, err := a.api.Upload(ctx, *day)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Uploaded %d set(s) to %s\n%s\n(link expires %s)\n",
			result.Count, result.Key, result.DownloadURL, result.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	}

	var body []byte
	var err error
	if *local {
		sets, loadErr := a.store.LoadSets(ctx)
		if loadErr != nil {
			return loadErr
		}
		if *day != "" {
			sets = stats.FilterByRange(sets, stats.Range{From: *day})
		}
		body, err = export.Format(stats.SortSets(sets))
	} else {
		body, err = a.api.Export(ctx, *day)
	}
	if err != nil {
		return err
	}

	if *outPath != "" {
		return os.WriteFile(*outPath, body, 0o644)
	}
	_, err = fmt.Fprintln(a.out, string(body))
	return err
}

func cmdStats(ctx context.Context, a *app, args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	from := fs.String("from", "", "first day (YYYY-MM-DD); defaults to 6 days ago")
	to := fs.String("to", "", "last day (YYYY-MM-DD); defaults to today")
	workout := fs.StringP("type", "t", "", "workout type for the max weight series")
	if err := fs.Parse(args); err != nil {
		return err
	}

	trends, err := a.api.Stats(ctx, stats.Range{From: *from, To: *to}, *workout)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Sets per day (%s to %s)\n", trends.Range.From, trends.Range.To)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, d := range trends.DailyCounts {
		fmt.Fprintf(w, "  %s\t%d\n", d.Date, d.Count)
	}
	w.Flush()

	if len(trends.Volume) > 0 {
		fmt.Fprintln(a.out, "Volume (lb x reps)")
		for _, v := range trends.Volume {
			fmt.Fprintf(w, "  %s\t%.0f\n", stats.FormatWorkoutLabel(string(v.WorkoutType)), v.Volume)
		}
		w.Flush()
	}

	if trends.WorkoutType != nil {
		fmt.Fprintf(a.out, "Max weight, %s\n", stats.FormatWorkoutLabel(string(*trends.WorkoutType)))
		for _, p := range trends.MaxWeight {
			value := "-"
			if p.MaxWeight != nil {
				value = fmt.Sprintf("%g lb", *p.MaxWeight)
			}
			fmt.Fprintf(w, "  %s\t%s\n", p.Date, value)
		}
		w.Flush()
	}
	return nil
}

func cmdWorkouts(ctx context.Context, a *app, args []string) error {
	groups, err := a.api.Workouts(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s %s\n", g.Emoji, g.Label)
		for _, item := range g.Items {
			fmt.Fprintf(w, "  %s\t%s\n", item.Value, item.Label)
		}
	}
	return w.Flush()
}

func cmdCheck(ctx context.Context, a *app, args []string) error {
	check, err := a.api.StoreCheck(ctx)
	if err != nil {
		return err
	}
	if check.OK {
		fmt.Fprintf(a.out, "Store OK (%d sample row(s)).\n", len(check.Data))
		return nil
	}
	if check.Error != nil {
		fmt.Fprintf(a.out, "Store error: %s\n", *check.Error)
	}
	if check.Hint != nil {
		fmt.Fprintf(a.out, "Hint: %s\n", *check.Hint)
	}
	return errors.New("store check failed")
}

func cmdDevice(ctx context.Context, a *app, args []string) error {
	id, err := a.store.DeviceID(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func workoutLabel(s domain.LoggedSet) string {
	if s.WorkoutType == nil || *s.WorkoutType == "" {
		return "Untitled"
	}
	return stats.FormatWorkoutLabel(string(*s.WorkoutType))
}

func describe(s domain.LoggedSet) string {
	parts := append([]string{workoutLabel(s)}, domain.BuildSetStats(s)...)
	return strings.Join(parts, " · ")
}
