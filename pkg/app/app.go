package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/cli"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/disk"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstab"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstype"
	"git.srvlab.io/whiskey/fstab-add/pkg/mount"
	"git.srvlab.io/whiskey/fstab-add/pkg/observability"
	"git.srvlab.io/whiskey/fstab-add/pkg/prompt"
	"git.srvlab.io/whiskey/fstab-add/pkg/security"
	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

// Run steps, used as metric labels
const (
	stepPrivilege    = "privilege"
	stepDiscover     = "discover"
	stepSelectVolume = "select_volume"
	stepSelectType   = "select_type"
	stepMountpoint   = "mountpoint"
	stepConfirm      = "confirm"
)

// App is one interactive session
type App struct {
	cfg Config
	ui  cli.Ui

	geteuid    func() int
	release    fstype.ReleaseQuerier
	loadMounts func(ctx context.Context) (*mount.Table, error)

	metrics *observability.Metrics
	audit   *security.Logger
}

// Option configures an App
type Option func(*App)

// WithGeteuid replaces the effective uid lookup
func WithGeteuid(geteuid func() int) Option {
	return func(a *App) {
		a.geteuid = geteuid
	}
}

// WithReleaseQuerier replaces the kernel release source chosen by the config
func WithReleaseQuerier(q fstype.ReleaseQuerier) Option {
	return func(a *App) {
		a.release = q
	}
}

// WithMountTable uses table instead of reading the live mount table
func WithMountTable(table *mount.Table) Option {
	return func(a *App) {
		a.loadMounts = func(context.Context) (*mount.Table, error) {
			return table, nil
		}
	}
}

// WithMetrics records the run into m instead of a private registry
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// New creates a session. Empty paths, release source and mount options take
// their defaults; Dump and FsckOrder are used as given, so callers wanting
// the type-aware pass number set FsckOrder to fstype.AutoFsckOrder.
func New(cfg Config, ui cli.Ui, opts ...Option) (*App, error) {
	a := &App{
		cfg:        cfg.withDefaults(),
		ui:         ui,
		geteuid:    unix.Geteuid,
		loadMounts: mount.Load,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.release == nil {
		q, err := fstype.NewReleaseQuerier(a.cfg.ReleaseSource, a.cfg.KernelRelease)
		if err != nil {
			return nil, err
		}
		a.release = q
	}
	if a.metrics == nil {
		a.metrics = observability.NewMetrics()
	}
	a.audit = security.NewLogger(a.metrics)

	return a, nil
}

// Metrics returns the run metrics
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Run walks the operator through adding one entry. Declining the
// confirmation returns nil and leaves the table untouched.
func (a *App) Run(ctx context.Context) (err error) {
	start := time.Now()
	outcome := observability.OutcomeFailed
	privileged := false
	defer func() {
		if err != nil {
			utils.LogErrorDetails(err)
		}
		a.metrics.RecordRun(outcome, time.Since(start))
		if privileged {
			a.writeMetrics()
		}
		klog.V(2).Infof("Run finished: %s in %v", outcome, time.Since(start))
	}()

	if err := utils.CheckPrivileges(a.geteuid); err != nil {
		a.audit.LogPrivilegeDenied(a.geteuid())
		a.metrics.RecordStep(stepPrivilege, err)
		return err
	}
	a.metrics.RecordStep(stepPrivilege, nil)
	privileged = true

	committer := fstab.NewCommitter(a.cfg.FstabPath)
	if err := utils.RequireFile(committer.Path); err != nil {
		a.audit.LogConfigMissing(committer.Path, err)
		return err
	}

	table := a.mountTable(ctx)

	volume, err := a.selectVolume(table)
	if err != nil {
		return err
	}

	fsType, err := a.selectFilesystemType(ctx)
	if err != nil {
		return err
	}

	mountpoint, err := a.askMountpoint(volume)
	if err != nil {
		return err
	}

	entry := fstab.NewEntry(volume.FsSpec(), mountpoint, fsType, fstab.Options{
		MountOptions: a.cfg.MountOptions,
		Dump:         a.cfg.Dump,
		FsckOrder:    fstype.FsckOrder(fsType, a.cfg.FsckOrder),
	})
	line := entry.Render()

	a.warnOverlaps(committer.Path, entry, table)

	confirmed, err := prompt.Confirm(a.ui,
		fmt.Sprintf("The following entry will be added to your fstab file:\n%s\nAre you sure?", line))
	a.metrics.RecordStep(stepConfirm, err)
	if err != nil {
		return err
	}
	a.audit.LogOperatorDecision(volume.DevicePath, mountpoint, line, confirmed)

	if !confirmed {
		a.ui.Output("Aborting...")
		outcome = observability.OutcomeDeclined
		return nil
	}

	a.ui.Output("Adding entry...")
	committer.OnStep = func(step string, err error, duration time.Duration) {
		a.metrics.RecordTimedStep(step, err, duration)
		switch step {
		case fstab.StepBackup:
			a.audit.LogBackup(committer.Path, committer.BackupPath(), err, duration)
		case fstab.StepAppend:
			a.audit.LogAppend(committer.Path, committer.BackupPath(), line, err, duration)
		}
	}

	backupPath, err := committer.Commit(entry)
	if err != nil {
		if utils.IsRecoverable(err) && backupPath != "" {
			a.ui.Error(fmt.Sprintf("The table may be incomplete, restore it from %s", backupPath))
		}
		return err
	}

	a.ui.Output(fmt.Sprintf("Backup saved at : %s", backupPath))
	klog.V(2).Infof("Added to %s: %s", committer.Path, line)
	outcome = observability.OutcomeCommitted
	return nil
}

// mountTable loads the live mount table. It only annotates and warns, so a
// failure is logged and the run continues without it.
func (a *App) mountTable(ctx context.Context) *mount.Table {
	table, err := a.loadMounts(ctx)
	if err != nil {
		klog.Warningf("Mount table unavailable, skipping mount annotations: %v", err)
		return nil
	}
	return table
}

func (a *App) selectVolume(table *mount.Table) (disk.Volume, error) {
	scanner := disk.NewScannerWithDir(a.cfg.ByUUIDDir)

	volumes, err := scanner.ListVolumes()
	a.metrics.RecordStep(stepDiscover, err)
	if err != nil {
		return disk.Volume{}, err
	}
	if len(volumes) == 0 {
		err := utils.Errorf(utils.ErrResolution, scanner.Dir, "no volumes found")
		a.metrics.RecordStep(stepSelectVolume, err)
		return disk.Volume{}, err
	}
	a.metrics.SetVolumesDiscovered(len(volumes))
	klog.V(4).Infof("Found %d volumes in %s", len(volumes), scanner.Dir)

	items := make([]string, len(volumes))
	for i := range volumes {
		volumes[i].MountedAt = table.TargetsOf(volumes[i].DevicePath)
		items[i] = volumes[i].String()
	}

	idx, err := prompt.Select(a.ui, "Select the volume to add:", items)
	a.metrics.RecordStep(stepSelectVolume, err)
	if err != nil {
		return disk.Volume{}, err
	}
	return volumes[idx], nil
}

func (a *App) selectFilesystemType(ctx context.Context) (string, error) {
	catalog := fstype.NewCatalogWithRoot(a.cfg.ModulesRoot, a.release)

	types, err := catalog.ListFilesystemTypes(ctx)
	if err != nil {
		a.metrics.RecordStep(stepSelectType, err)
		return "", err
	}
	a.metrics.SetFilesystemTypesDiscovered(len(types))

	idx, err := prompt.Select(a.ui, "Select the filesystem type:", types)
	a.metrics.RecordStep(stepSelectType, err)
	if err != nil {
		return "", err
	}
	return types[idx], nil
}

func (a *App) askMountpoint(volume disk.Volume) (string, error) {
	answer, err := prompt.AskPath(a.ui, fmt.Sprintf("Mountpoint for %s:", volume.DevicePath))
	if err != nil {
		a.metrics.RecordStep(stepMountpoint, err)
		return "", err
	}

	mountpoint, err := utils.ValidateMountpoint(answer)
	a.metrics.RecordStep(stepMountpoint, err)
	if err != nil {
		a.audit.LogMountpointRejected(answer, err)
		return "", err
	}
	return mountpoint, nil
}

// warnOverlaps tells the operator about existing lines and live mounts that
// collide with entry. Nothing here stops the run.
func (a *App) warnOverlaps(tablePath string, entry fstab.Entry, table *mount.Table) {
	conflicts, err := fstab.FindConflicts(tablePath, entry)
	if err != nil {
		klog.Warningf("Could not check %s for duplicates: %v", tablePath, err)
	}
	for _, c := range conflicts {
		a.ui.Warn(fmt.Sprintf("Warning: existing entry with the %s", c))
		a.audit.LogDuplicate(entry.Render(), c.String())
	}

	if info, ok := table.MountedAt(entry.Mountpoint); ok {
		a.ui.Warn(fmt.Sprintf("Warning: %s is already mounted at %s (%s)",
			info.Source, entry.Mountpoint, info.FSType))
	}
}

func (a *App) writeMetrics() {
	if a.cfg.MetricsTextfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		klog.Warningf("Failed to write run metrics: %v", err)
	}
}
