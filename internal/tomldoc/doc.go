// Package tomldoc provides format-preserving edits of TOML documents.
// A Document indexes tables and entries together with their byte spans in
// the original source. Edits are splices into that source, so every byte
// outside an edited span (including comments and formatting) survives
// rendering unchanged.
package tomldoc
