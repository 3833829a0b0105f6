package version

// Version is overridden at build time: -ldflags "-X .../internal/version.Version=v1.2.3"
var Version = "v1.0.0"

// Banner is printed by --version.
func Banner() string {
	return "tcpdash " + Version + "\nTCP SYN/FIN/RST dashboard over tcpdump output\n"
}
