// Package fuzztests houses Go fuzz harnesses that exercise the lint
// pipeline (source -> parser -> rules) on arbitrary inputs. Its goal is to
// smoke test robustness and guard against panics or hangs during error
// recovery.
//
// It does not generate corpora or write files; seeds come from small
// in-tree snippets.
package fuzztests
