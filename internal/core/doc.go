// Package core provides the terminal-independent drawing surface and input
// vocabulary shared by the maze front ends. It has no Bubble Tea dependency
// so rendering can be tested as plain text.
package core
