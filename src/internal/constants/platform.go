// Package constants defines common constants used across rtvm
package constants

// Operating systems
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// CPU architectures
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
	Arch386   = "386"
)

// Shell types
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// User responses
const (
	ResponseYes = "yes"
	ResponseY   = "y"
	ResponseNo  = "no"
	ResponseN   = "n"
)

// File extensions
const (
	ExtExe = ".exe"
)

// Archive formats published by the upstream mirror
const (
	ArchiveTarXz    = "tar.xz"
	ArchiveTarGz    = "tar.gz"
	ArchiveZip      = "zip"
	ArchiveSevenZip = "7z"
)

// Activation modes
const (
	ActivationAuto    = "auto"
	ActivationSymlink = "symlink"
	ActivationCopy    = "copy"
)
