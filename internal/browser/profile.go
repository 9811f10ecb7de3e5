package browser

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"stockbit-analyzer/internal/utils"
)

// clearStaleProfileLock recovers a profile directory left locked by a dead
// or wedged browser instance. Chrome records its owner in the
// SingletonLock symlink as "<host>-<pid>"; a still-running owner is sent
// SIGTERM before the singleton files are removed.
func clearStaleProfileLock(dir string, logger *utils.Logger) {
	lock := filepath.Join(dir, "SingletonLock")

	if target, err := os.Readlink(lock); err == nil {
		if pid := lockOwnerPID(target); pid > 0 && processAlive(pid) {
			logger.Warn("Profile locked by pid %d, terminating stale process", pid)
			if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
				logger.Debug("Failed to signal pid %d: %v", pid, err)
			}
			time.Sleep(time.Second)
		}
	}

	for _, name := range []string{"SingletonLock", "SingletonCookie", "SingletonSocket"} {
		if err := os.Remove(filepath.Join(dir, name)); err == nil {
			logger.Debug("Removed stale %s", name)
		}
	}
}

func lockOwnerPID(target string) int {
	i := strings.LastIndex(target, "-")
	if i < 0 {
		return 0
	}
	pid, err := strconv.Atoi(target[i+1:])
	if err != nil {
		return 0
	}
	return pid
}

func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
