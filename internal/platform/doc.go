// Package platform provides symlink primitives with a Windows copy
// fallback for systems where native symlinks require developer mode.
package platform
