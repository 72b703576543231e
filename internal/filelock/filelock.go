// Package filelock serializes writers of the agenda config file with an
// advisory lock held on a sidecar ".lock" file.
package filelock

import "os"

const lockFileMode = 0o600

// Suffix is appended to a guarded file's path to name its lock file.
const Suffix = ".lock"

// Lock blocks until it holds an exclusive advisory lock on the file at path,
// creating it when missing. Call the returned function to release it.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock path derived from config path
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return func() error {
		unlockErr := unlockFile(f)
		if closeErr := f.Close(); unlockErr == nil {
			return closeErr
		}
		return unlockErr
	}, nil
}

// LockFor locks the sidecar lock file guarding target.
func LockFor(target string) (unlock func() error, err error) {
	return Lock(target + Suffix)
}
