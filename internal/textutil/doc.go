// Package textutil derives artifact names from user file names and keeps them
// safe for filesystem and object-store use.
package textutil
