package license

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"
)

// Fingerprint identifies this machine for license binding
func Fingerprint() string {
	hostname, _ := os.Hostname()
	parts := []string{
		hostname,
		systemName(runtime.GOOS),
		machineName(runtime.GOOS, runtime.GOARCH),
		nodeID(),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// systemName reports the OS the way uname -s does ("Linux", "Darwin", "Windows")
func systemName(goos string) string {
	switch goos {
	case "darwin":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "netbsd":
		return "NetBSD"
	case "openbsd":
		return "OpenBSD"
	case "":
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

// machineName reports the hardware type the way uname -m does
func machineName(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "386":
		if goos == "windows" {
			return "x86"
		}
		return "i686"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		if goos == "windows" {
			return "ARM64"
		}
		return "arm64"
	case "arm":
		return "armv7l"
	}
	return goarch
}

// nodeID formats the MAC of the first physical-looking interface, ordered by name
func nodeID() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "0x0"
	}
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		var n uint64
		for _, b := range iface.HardwareAddr {
			n = n<<8 | uint64(b)
		}
		return fmt.Sprintf("%#x", n)
	}
	return "0x0"
}
