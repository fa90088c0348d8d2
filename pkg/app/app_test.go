package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.srvlab.io/whiskey/fstab-add/pkg/fstab"
	"git.srvlab.io/whiskey/fstab-add/pkg/fstype"
	"git.srvlab.io/whiskey/fstab-add/pkg/utils"
)

var _ = Describe("Session", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		f = newFixture()
		ctx = context.Background()
	})

	expectUntouched := func() {
		Expect(f.table()).To(Equal(originalTable))
		_, err := os.Stat(f.fstab + fstab.BackupSuffix)
		Expect(os.IsNotExist(err)).To(BeTrue(), "no backup expected")
	}

	Context("when the operator confirms", func() {
		It("should back up the table and append exactly one line", func() {
			ui, out, _ := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			session := newSession(f, f.config(), ui)

			Expect(session.Run(ctx)).To(Succeed())

			line := fmt.Sprintf("UUID=ABCD-1234 %s ext4 defaults 0 2", f.mountpoint)
			Expect(f.table()).To(Equal(originalTable + line + "\n"))

			backup, err := os.ReadFile(f.fstab + fstab.BackupSuffix)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(backup)).To(Equal(originalTable))

			By("Showing the dialogue")
			Expect(out.String()).To(ContainSubstring(fmt.Sprintf("1) %s (ABCD-1234, serial)", f.device("sda1"))))
			Expect(out.String()).To(ContainSubstring(fmt.Sprintf("Mountpoint for %s: ", f.device("sda1"))))
			Expect(out.String()).To(ContainSubstring("The following entry will be added to your fstab file:\n" + line + "\nAre you sure? [y/N]"))
			Expect(out.String()).To(ContainSubstring("Adding entry..."))
			Expect(out.String()).To(ContainSubstring("Backup saved at : " + f.fstab + ".bak"))
		})

		It("should pick a zero fsck pass for pseudo filesystems", func() {
			ui, _, _ := scriptedUi(answers("2", "8", f.mountpoint, "yes"))
			session := newSession(f, f.config(), ui)

			Expect(session.Run(ctx)).To(Succeed())
			Expect(f.table()).To(HaveSuffix(fmt.Sprintf("UUID=EF00-5678 %s tmpfs defaults 0 0\n", f.mountpoint)))
		})

		It("should honor configured options, dump and pass number", func() {
			cfg := f.config()
			cfg.MountOptions = []string{"noatime", "nofail"}
			cfg.Dump = true
			cfg.FsckOrder = 1

			ui, _, _ := scriptedUi(answers("1", "18", f.mountpoint+"/", "y"))
			session := newSession(f, cfg, ui)

			Expect(session.Run(ctx)).To(Succeed())
			Expect(f.table()).To(HaveSuffix(fmt.Sprintf("UUID=ABCD-1234 %s zonefs noatime,nofail 1 1\n", f.mountpoint)))
		})

		It("should re-ask after an invalid menu choice", func() {
			ui, _, errOut := scriptedUi(answers("7", "abc", "1", "1", f.mountpoint, "y"))
			session := newSession(f, f.config(), ui)

			Expect(session.Run(ctx)).To(Succeed())
			Expect(errOut.String()).To(ContainSubstring(`"7" is not a valid choice`))
			Expect(errOut.String()).To(ContainSubstring(`"abc" is not a valid choice`))
		})

		It("should write run metrics when a textfile is configured", func() {
			cfg := f.config()
			cfg.MetricsTextfile = filepath.Join(f.root, "fstab_add.prom")

			ui, _, _ := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			session := newSession(f, cfg, ui)
			Expect(session.Run(ctx)).To(Succeed())

			data, err := os.ReadFile(cfg.MetricsTextfile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`fstab_add_runs_total{outcome="committed"} 1`))
			Expect(string(data)).To(ContainSubstring(`fstab_add_steps_total{status="success",step="append"} 1`))
			Expect(string(data)).To(ContainSubstring("fstab_add_volumes_discovered 2"))
			Expect(string(data)).To(ContainSubstring("fstab_add_fstypes_discovered 18"))
			Expect(string(data)).To(ContainSubstring(`fstab_add_audit_events_total{outcome="success",type="entry_appended"} 1`))
		})
	})

	Context("when the operator declines", func() {
		DescribeTable("should leave the table untouched and succeed",
			func(answer string) {
				ui, out, _ := scriptedUi(answers("1", "1", f.mountpoint) + answer)
				session := newSession(f, f.config(), ui)

				Expect(session.Run(ctx)).To(Succeed())
				Expect(out.String()).To(ContainSubstring("Aborting..."))
				Expect(out.String()).NotTo(ContainSubstring("Adding entry..."))
				expectUntouched()
			},
			Entry("answering no", "n\n"),
			Entry("pressing enter", "\n"),
			Entry("closing the input", ""),
		)
	})

	Context("when the mountpoint is invalid", func() {
		It("should fail before any backup when the path does not exist", func() {
			ui, out, _ := scriptedUi(answers("1", "1", filepath.Join(f.root, "mnt", "missing"), "y"))
			session := newSession(f, f.config(), ui)

			err := session.Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, utils.ErrInvalidMountpoint)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("the path does not exist"))
			Expect(utils.ExitCode(err)).NotTo(Equal(0))
			Expect(out.String()).NotTo(ContainSubstring("Are you sure?"))
			expectUntouched()
		})

		It("should reject a relative path", func() {
			ui, _, _ := scriptedUi(answers("1", "1", "mnt/data", "y"))
			session := newSession(f, f.config(), ui)

			err := session.Run(ctx)
			Expect(errors.Is(err, utils.ErrInvalidMountpoint)).To(BeTrue())
			expectUntouched()
		})
	})

	Context("when preconditions fail", func() {
		It("should refuse to run without administrator permissions", func() {
			ui, out, _ := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			session := newSession(f, f.config(), ui, WithGeteuid(func() int { return 1000 }))

			err := session.Run(ctx)
			Expect(errors.Is(err, utils.ErrPrivilege)).To(BeTrue())
			Expect(out.String()).To(BeEmpty(), "no prompt before the privilege check")
			expectUntouched()
		})

		It("should not write the metrics textfile without administrator permissions", func() {
			cfg := f.config()
			cfg.MetricsTextfile = filepath.Join(f.root, "fstab_add.prom")

			ui, _, _ := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			session := newSession(f, cfg, ui, WithGeteuid(func() int { return 1000 }))

			err := session.Run(ctx)
			Expect(errors.Is(err, utils.ErrPrivilege)).To(BeTrue())

			_, statErr := os.Stat(cfg.MetricsTextfile)
			Expect(os.IsNotExist(statErr)).To(BeTrue(), "no file may be created before the privilege check passes")
			expectUntouched()
		})

		It("should fail when the table does not exist", func() {
			Expect(os.Remove(f.fstab)).To(Succeed())
			ui, out, _ := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			session := newSession(f, f.config(), ui)

			err := session.Run(ctx)
			Expect(errors.Is(err, utils.ErrMissingConfig)).To(BeTrue())
			Expect(out.String()).To(BeEmpty())
		})

		It("should fail when no volumes are listed", func() {
			cfg := f.config()
			cfg.ByUUIDDir = filepath.Join(f.root, "empty")
			Expect(os.Mkdir(cfg.ByUUIDDir, 0755)).To(Succeed())

			ui, _, _ := scriptedUi(answers("1"))
			err := newSession(f, cfg, ui).Run(ctx)
			Expect(errors.Is(err, utils.ErrResolution)).To(BeTrue())
		})

		It("should fail when the kernel module tree is missing", func() {
			cfg := f.config()
			cfg.ModulesRoot = filepath.Join(f.root, "nowhere")

			ui, _, _ := scriptedUi(answers("1", "1"))
			err := newSession(f, cfg, ui).Run(ctx)
			Expect(errors.Is(err, utils.ErrCatalog)).To(BeTrue())
			expectUntouched()
		})

		It("should report closed input during a menu as a selection error", func() {
			ui, _, _ := scriptedUi("")
			err := newSession(f, f.config(), ui).Run(ctx)
			Expect(errors.Is(err, utils.ErrSelection)).To(BeTrue())
			expectUntouched()
		})
	})

	Context("when the entry overlaps existing state", func() {
		It("should annotate mounted volumes in the menu", func() {
			ui, out, _ := scriptedUi(answers("1", "1", f.mountpoint, "n"))
			Expect(newSession(f, f.config(), ui).Run(ctx)).To(Succeed())

			Expect(out.String()).To(ContainSubstring(fmt.Sprintf("%s (EF00-5678, serial) [mounted at /srv/data]", f.device("sdb1"))))
		})

		It("should warn about an existing line for the same volume and still commit", func() {
			Expect(os.WriteFile(f.fstab, []byte(originalTable+"UUID=abcd-1234 /srv/old ext4 defaults 0 2\n"), 0644)).To(Succeed())

			ui, _, errOut := scriptedUi(answers("1", "1", f.mountpoint, "y"))
			Expect(newSession(f, f.config(), ui).Run(ctx)).To(Succeed())

			Expect(errOut.String()).To(ContainSubstring("same source"))
			Expect(f.table()).To(HaveSuffix(fmt.Sprintf("UUID=ABCD-1234 %s ext4 defaults 0 2\n", f.mountpoint)))
		})

		It("should warn when something is already mounted at the mountpoint", func() {
			table := f.mountTable(fmt.Sprintf("60 22 0:40 / %s rw,relatime shared:40 - tmpfs tmpfs rw", f.mountpoint))

			ui, _, errOut := scriptedUi(answers("1", "1", f.mountpoint, "n"))
			Expect(newSession(f, f.config(), ui, WithMountTable(table)).Run(ctx)).To(Succeed())

			Expect(errOut.String()).To(ContainSubstring(fmt.Sprintf("tmpfs is already mounted at %s", f.mountpoint)))
		})
	})

	Describe("New", func() {
		It("should reject an unknown release source", func() {
			cfg := f.config()
			cfg.ReleaseSource = "magic"

			ui, _, _ := scriptedUi("")
			_, err := New(cfg, ui)
			Expect(err).To(HaveOccurred())
		})

		It("should use a fixed kernel release from the config", func() {
			cfg := f.config()
			cfg.KernelRelease = testRelease

			ui, _, _ := scriptedUi(answers("1", "18", f.mountpoint, "y"))
			session, err := New(cfg, ui, WithGeteuid(func() int { return 0 }), WithMountTable(f.mountTable()))
			Expect(err).NotTo(HaveOccurred())

			Expect(session.Run(ctx)).To(Succeed())
			Expect(f.table()).To(ContainSubstring(" zonefs defaults 0 2\n"))
		})

		It("should fill zero config fields with defaults", func() {
			cfg := Config{FsckOrder: 2}.withDefaults()
			Expect(cfg.FstabPath).To(Equal("/etc/fstab"))
			Expect(cfg.ByUUIDDir).To(Equal("/dev/disk/by-uuid"))
			Expect(cfg.ModulesRoot).To(Equal("/lib/modules"))
			Expect(cfg.ReleaseSource).To(Equal("exec"))
			Expect(cfg.MountOptions).To(Equal([]string{"defaults"}))
			Expect(cfg.FsckOrder).To(Equal(2))
		})

		It("should keep a zero pass number and dump flag as given", func() {
			cfg := Config{}.withDefaults()
			Expect(cfg.FsckOrder).To(Equal(0))
			Expect(cfg.Dump).To(BeFalse())
			Expect(DefaultConfig().FsckOrder).To(Equal(fstype.AutoFsckOrder))
		})
	})
})
