package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/fstab-add/pkg/app"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstab"
	"git.srvlab.io/whiskey/fstab-add/pkg/prompt"
	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

var (
	// Table and discovery locations
	fstabPath   = flag.String("fstab", fstab.DefaultPath, "Filesystem table to edit")
	byUUIDDir   = flag.String("by-uuid-dir", app.DefaultConfig().ByUUIDDir, "Directory of stable volume identifiers")
	modulesRoot = flag.String("modules-root", app.DefaultConfig().ModulesRoot, "Root of the kernel module trees")

	// Kernel release
	kernelRelease = flag.String("kernel-release", "", "Kernel release to list modules for (default: query the running kernel)")
	releaseSource = flag.String("release-source", "exec", "How to query the kernel release: exec (uname -r) or syscall (uname(2))")

	// Entry fields
	mountOptions = flag.String("options", "defaults", "Comma-separated mount options")
	dump         = flag.Bool("dump", false, "Set the dump flag")
	fsckOrder    = flag.Int("fsck-order", app.DefaultConfig().FsckOrder, "fsck pass number, -1 picks one from the filesystem type")

	// Output
	noColor         = flag.Bool("no-color", false, "Disable colored output")
	forceColor      = flag.Bool("force-color", false, "Color output even when stdout is not a terminal")
	metricsTextfile = flag.String("metrics-textfile", "", "Write run metrics in Prometheus text format to this file")

	// Version flag
	version = flag.Bool("version", false, "Print version and exit")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if *version {
		fmt.Printf("fstab-add %s\n", app.Version)
		os.Exit(0)
	}

	ui := prompt.NewUi(*noColor, *forceColor)

	config := app.Config{
		FstabPath:       *fstabPath,
		ByUUIDDir:       *byUUIDDir,
		ModulesRoot:     *modulesRoot,
		KernelRelease:   *kernelRelease,
		ReleaseSource:   *releaseSource,
		MountOptions:    fstab.ParseOptions(*mountOptions),
		Dump:            *dump,
		FsckOrder:       *fsckOrder,
		MetricsTextfile: *metricsTextfile,
	}

	session, err := app.New(config, ui)
	if err != nil {
		ui.Error(err.Error())
		klog.Flush()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil {
		ui.Error(err.Error())
		stop()
		klog.Flush()
		os.Exit(utils.ExitCode(err))
	}
}
