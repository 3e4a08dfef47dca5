package guard

import (
	"os"
	"path/filepath"
	"runtime"
)

// Platform bundles the protected system roots and path comparison rules
// for one operating system family. New platforms are added by providing a
// new roots-plus-comparison pair, not by branching in the guard itself.
type Platform struct {
	Name            string
	Roots           []string
	InvalidChars    string // characters forbidden in paths on this platform
	Separator       rune
	CaseInsensitive bool
}

// Posix is the protection profile for Linux and other Unix-likes.
func Posix() Platform {
	return Platform{
		Name: "posix",
		Roots: []string{
			"/", "/bin", "/sbin", "/lib", "/lib64", "/etc", "/usr",
			"/var", "/boot", "/proc", "/sys", "/dev",
		},
		InvalidChars:    "\x00",
		Separator:       '/',
		CaseInsensitive: false,
	}
}

// Darwin extends the POSIX profile with macOS system directories.
func Darwin() Platform {
	p := Posix()
	p.Name = "darwin"
	p.Roots = append(p.Roots, "/System", "/Library", "/Applications", "/private")
	p.CaseInsensitive = true // default APFS/HFS+ volumes
	return p
}

// Windows is the protection profile for Windows-style filesystems.
func Windows() Platform {
	drive := os.Getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}
	return Platform{
		Name: "windows",
		Roots: []string{
			drive + `\`,
			filepath.Join(drive+`\`, "Windows"),
			filepath.Join(drive+`\`, "Program Files"),
			filepath.Join(drive+`\`, "Program Files (x86)"),
		},
		InvalidChars:    "\x00<>\"|?*",
		Separator:       '\\',
		CaseInsensitive: true,
	}
}

// Detect selects the profile for the running OS.
func Detect() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows()
	case "darwin":
		return Darwin()
	default:
		return Posix()
	}
}
