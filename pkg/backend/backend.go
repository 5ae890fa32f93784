// Package backend abstracts over the two deployment backends for the web
// server and the ACME client: a managed docker container or a host-native
// installation. The active backend is resolved once per invocation and the
// choice is immutable for the remainder of the run.
package backend

// Mode identifies how a collaborator is deployed.
type Mode string

const (
	// ModeDocker means the collaborator runs as a managed container.
	ModeDocker Mode = "docker"
	// ModeNative means the collaborator is installed directly on the host.
	ModeNative Mode = "native"
)

// Paths is the root layout for all per-site path computation. The values
// depend on the resolved web-server mode: bind-mount roots for docker,
// the system layout for native.
type Paths struct {
	ConfDir  string // vhost config files (<domain>.conf)
	WWWRoot  string // document roots (<root>/<domain>)
	LogRoot  string // per-site log dirs (<root>/<domain>)
	CertRoot string // per-site certificate dirs (<root>/<domain>)
}

// Nginx is the web-server collaborator.
type Nginx interface {
	Mode() Mode
	Paths() Paths
	// Test runs the configuration syntax check and returns its output.
	Test() (string, error)
	// Reload applies the current configuration to the running server.
	Reload() error
	// Running reports whether the server is currently up.
	Running() (bool, error)
}

// Acme is the ACME client collaborator (acme.sh).
type Acme interface {
	Mode() Mode
	// Exec invokes acme.sh with the given arguments.
	Exec(args ...string) (string, error)
	// List returns the client's certificate listing.
	List() (string, error)
	// Info returns the client's per-domain certificate metadata.
	Info(domain string) (string, error)
	// Version returns the client version string.
	Version() (string, error)
}
