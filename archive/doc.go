// Package archive keeps a SQLite record of consumed JNET files and the
// documents retrieved from them.
package archive
