// Package displayenv resolves the X display target and decides whether it
// refers to the local host.
package displayenv

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SocketDir is where local X servers place their listening sockets.
const SocketDir = "/tmp/.X11-unix"

var (
	getenvFn                  = os.Getenv
	hostnameFn                = os.Hostname
	runCommandOutputFn        = runCommandOutput
	readFileFn                = os.ReadFile
	readDirFn                 = os.ReadDir
	detectSessionDisplayFn    = detectSessionDisplay
	detectDisplayFromSocketFn = detectDisplayFromSockets
)

// Resolve picks the display target: explicit value first, then $DISPLAY, then
// the display of the user's login session, then the highest local socket.
// An empty result means no display could be found.
func Resolve(explicit string) string {
	if d := strings.TrimSpace(explicit); d != "" {
		return d
	}
	if d := strings.TrimSpace(getenvFn("DISPLAY")); d != "" {
		return d
	}
	if d := strings.TrimSpace(detectSessionDisplayFn()); d != "" {
		return d
	}
	return detectDisplayFromSocketFn(SocketDir)
}

// Hostname returns the local host name, or "" when it cannot be read.
func Hostname() string {
	name, err := hostnameFn()
	if err != nil {
		return ""
	}
	return name
}

// IsLocal reports whether target names a display on this host. An empty
// target is local. Anything that starts with ':', "unix", "localhost", the
// local hostname or a loopback address is local; every other host is remote.
func IsLocal(target, hostname string) bool {
	target = strings.TrimSpace(target)
	if target == "" || target[0] == ':' {
		return true
	}
	if strings.HasPrefix(target, "localhost") || strings.HasPrefix(target, "unix:") {
		return true
	}
	if hostname != "" && strings.HasPrefix(target, hostname) {
		return true
	}
	host := Host(target)
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	return false
}

// Host returns the host part of a display target ("host:0.0" -> "host").
// Bracketed IPv6 hosts are unwrapped.
func Host(target string) string {
	idx := strings.LastIndex(target, ":")
	if idx < 0 {
		return target
	}
	host := target[:idx]
	// IPv6 literal without brackets, e.g. "::1:0" -> "::1".
	if strings.HasSuffix(host, ":") {
		host = strings.TrimSuffix(host, ":")
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}

// Number returns the display number of target, defaulting to 0.
func Number(target string) (int, error) {
	idx := strings.LastIndex(target, ":")
	if idx < 0 {
		return 0, fmt.Errorf("invalid display %q: missing ':'", target)
	}
	rest := target[idx+1:]
	if dot := strings.Index(rest, "."); dot >= 0 {
		rest = rest[:dot]
	}
	if rest == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid display number in %q: %w", target, err)
	}
	return n, nil
}

func runCommandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func detectSessionDisplay() string {
	uid := strconv.Itoa(os.Getuid())
	out, err := runCommandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return ""
	}
	for _, sessionID := range parseLoginctlSessions(out, uid) {
		d := loginctlShowSessionProp(sessionID, "Display")
		if d == "" || strings.EqualFold(d, "n/a") {
			continue
		}
		leader := loginctlShowSessionProp(sessionID, "Leader")
		if leader != "" && leader != "0" {
			if env, err := readProcEnviron(leader); err == nil {
				if ed := strings.TrimSpace(env["DISPLAY"]); ed != "" {
					d = ed
				}
			}
		}
		return d
	}
	return ""
}

func parseLoginctlSessions(output string, uid string) []string {
	var sessions []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 2 {
			continue
		}
		if fields[1] == uid {
			sessions = append(sessions, fields[0])
		}
	}
	return sessions
}

func loginctlShowSessionProp(sessionID string, prop string) string {
	out, err := runCommandOutputFn("loginctl", "show-session", sessionID, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func readProcEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, part := range strings.Split(string(data), "\x00") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		env[kv[0]] = kv[1]
	}
	return env, nil
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
