//go:build !race

package auth

// Work factor high enough to resist offline brute force.
func passwordHashCost() int {
	return 14
}
