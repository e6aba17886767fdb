package media

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// UsedFraction reports how full the filesystem holding path is, as a value
// in [0, 1]. It is computed from the blocks available to unprivileged users,
// matching what uploads actually compete for.
func UsedFraction(path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	if st.Blocks == 0 {
		return 0, fmt.Errorf("statfs %s: filesystem reports zero blocks", path)
	}
	return 1.0 - float64(st.Bavail)/float64(st.Blocks), nil
}
