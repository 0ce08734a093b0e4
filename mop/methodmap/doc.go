// Package methodmap derives a class's own method table from its namespace and
// keeps it in a ristretto cache until the namespace's generation marker moves.
package methodmap
