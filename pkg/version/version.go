package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/zsiec/stimecode/pkg/timecode"
)

// Set at build time with -ldflags "-X github.com/zsiec/stimecode/pkg/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
	OS        = runtime.GOOS
	Arch      = runtime.GOARCH
)

type Info struct {
	Version    string   `json:"version"`
	GitCommit  string   `json:"git_commit"`
	BuildTime  string   `json:"build_time"`
	GoVersion  string   `json:"go_version"`
	OS         string   `json:"os"`
	Arch       string   `json:"arch"`
	FrameRates []string `json:"frame_rates"`
}

// GetInfo reports the build metadata along with the frame rate labels this
// build understands. When no ldflags were given and the binary was built
// with module support, the VCS revision recorded by the toolchain is used.
func GetInfo() Info {
	info := Info{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildTime:  BuildTime,
		GoVersion:  GoVersion,
		OS:         OS,
		Arch:       Arch,
		FrameRates: timecode.Labels(),
	}

	if info.GitCommit == "unknown" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.GitCommit = s.Value
				}
			}
		}
	}

	return info
}

func (i Info) String() string {
	return fmt.Sprintf("stimecode %s (commit: %s, built: %s, go: %s, os/arch: %s/%s)",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

func (i Info) Short() string {
	return "stimecode " + i.Version
}
