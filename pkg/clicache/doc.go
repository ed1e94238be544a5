// Package clicache memoizes command results on disk, keyed by the
// command's content, so repeating an expensive or rate-limited command
// can be served without re-executing it.
//
// Entries are timestamped by the time at which the command finished.
//
// Disk layout for 'echo foo' (sha1 9f168d2f8df57c83626cf6026658c6adba47c759):
//
//	.clicache/
//	└── 9f/16/9f168d2f8df57c83626cf6026658c6adba47c759/
//	    ├── current -> 0c07a954-...          selects the authoritative entry
//	    └── 0c07a954-.../
//	        ├── reverse-text                 'echo foo' (debug only)
//	        ├── timestamp                    1411917928.491704
//	        ├── stdout                       'foo\n'
//	        ├── stderr                       ''
//	        └── exit-code                    0
//
// Any number of uncoordinated processes may share one cache root; the
// filesystem is the only synchronization primitive. A writer stages a
// complete entry under a fresh UUID-named directory, then atomically
// renames a private symlink onto "current". That rename is the
// linearization point: readers resolve "current" and see either the old
// entry or the new one, never a partially written one. Readers open every
// field file before inspecting any content, so a concurrent writer
// retiring the entry cannot invalidate an in-progress read; if the files
// vanish between resolving the link and opening them, the reader retries
// the whole sequence a bounded number of times.
//
// One usage strategy: to avoid misses on a hot command, keep another
// process looping to keep its entry fresh.
package clicache
