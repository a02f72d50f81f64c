// Package buildinfo holds build metadata injected with -ldflags, e.g.
//
//	-X github.com/garyellow/agri-advisor-go/internal/buildinfo.Version=v1.2.0
package buildinfo

var (
	Version   = "" // tag or semantic version
	Commit    = "" // git SHA
	BuildDate = "" // RFC3339
)

// Release names the build for error reports and logs: the version, the
// short commit, or "dev".
func Release() string {
	switch {
	case Version != "":
		return Version
	case len(Commit) >= 7:
		return Commit[:7]
	case Commit != "":
		return Commit
	default:
		return "dev"
	}
}
