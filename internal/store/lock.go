package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	channelLockDirName   = ".channel.lock"
	channelLockOwnerFile = "owner.json"
)

// ChannelLock guards a channel directory against concurrent runs. The
// manifest and combined file assume a single writer; two processes on the
// same channel would interleave appends.
type ChannelLock struct {
	lockDir string
}

type channelLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func AcquireChannelLock(channelDir string) (ChannelLock, error) {
	target := strings.TrimSpace(channelDir)
	if target == "" {
		return ChannelLock{}, fmt.Errorf("channel directory is required")
	}

	lockDir := filepath.Join(target, channelLockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			ownerPath := filepath.Join(lockDir, channelLockOwnerFile)
			var owner channelLockOwner
			if readErr := ReadJSON(ownerPath, &owner); readErr == nil && owner.PID > 0 && owner.CreatedAt != "" {
				return ChannelLock{}, fmt.Errorf(
					"channel directory is locked: %s (pid=%d created_at=%s host=%s)",
					target, owner.PID, owner.CreatedAt, owner.Hostname,
				)
			}
			return ChannelLock{}, fmt.Errorf("channel directory is locked: %s", target)
		}
		return ChannelLock{}, fmt.Errorf("acquire channel lock for %s: %w", target, err)
	}

	owner := channelLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, channelLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return ChannelLock{}, fmt.Errorf("write channel lock owner for %s: %w", target, err)
	}

	return ChannelLock{lockDir: lockDir}, nil
}

func (l ChannelLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, channelLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release channel lock %s: %w", l.lockDir, err)
	}
	return nil
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
