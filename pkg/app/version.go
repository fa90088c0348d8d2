package app

// Version is set at build time with -ldflags "-X git.srvlab.io/whiskey/fstab-add/pkg/app.Version=..."
var Version = "dev"
