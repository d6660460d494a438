// Package vm implements the mmm virtual machine.
//
// This package contains:
//   - the 64KB memory image and its seeded volatility map
//   - two-level (pointer-indirect) address resolution with corruption
//   - the line-oriented fetch-decode-execute loop
//   - load-time side effects requested by special files
//   - loading of plain and special .mmm files
package vm
