package clicache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clicache/pkg/fs"
)

// writeEntry persists one entry through the writer and returns its key.
func writeEntry(t *testing.T, cache *Cache, completedAt time.Time, res ExecResult) string {
	t.Helper()

	key, canonical, err := DeriveKey(Command{Line: "test command"})
	if err != nil {
		t.Fatal(err)
	}

	writeErr := cache.write(key, canonical, completedAt, res)
	if writeErr != nil {
		t.Fatalf("write failed: %v", writeErr)
	}

	return key
}

// entryDir resolves the current entry directory for key.
func entryDir(t *testing.T, root, key string) string {
	t.Helper()

	shard := filepath.Join(root, key[:2], key[2:4], key)

	id, err := os.Readlink(filepath.Join(shard, "current"))
	if err != nil {
		t.Fatal(err)
	}

	return filepath.Join(shard, id)
}

func TestLookupMissWhenNoEntry(t *testing.T) {
	t.Parallel()

	recorder := &recordingObserver{}
	cache := newTestCache(t, Options{Observer: recorder})

	_, ok, err := cache.lookup("9f168d2f8df57c83626cf6026658c6adba47c759", time.Minute)
	if err != nil {
		t.Fatalf("expected clean miss, got %v", err)
	}

	if ok {
		t.Fatal("expected miss for empty cache")
	}

	if got := recorder.reasons; len(got) != 1 || got[0] != MissNoEntry {
		t.Errorf("expected miss reason %q, got %v", MissNoEntry, got)
	}
}

func TestLookupRoundTrip(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	cache := newTestCache(t, Options{Now: clock.Now})

	want := ExecResult{
		Stdout:   []byte{0x00, 0xff, 'o', 'k', '\n'},
		Stderr:   []byte("warning\n"),
		ExitCode: 3,
	}

	key := writeEntry(t, cache, clock.Now(), want)

	res, ok, err := cache.lookup(key, time.Second)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if !ok {
		t.Fatal("expected hit")
	}

	if string(res.Stdout) != string(want.Stdout) {
		t.Errorf("stdout = %q, want %q", res.Stdout, want.Stdout)
	}

	if string(res.Stderr) != string(want.Stderr) {
		t.Errorf("stderr = %q, want %q", res.Stderr, want.Stderr)
	}

	if res.ExitCode != want.ExitCode {
		t.Errorf("exit code = %d, want %d", res.ExitCode, want.ExitCode)
	}

	if !res.CompletedAt.Equal(clock.Now()) {
		t.Errorf("completed at = %v, want %v", res.CompletedAt, clock.Now())
	}
}

func TestLookupExpirationBoundary(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	cache := newTestCache(t, Options{Now: clock.Now})

	key := writeEntry(t, cache, clock.Now(), ExecResult{Stdout: []byte("v")})

	clock.Advance(100 * time.Second)

	// elapsed == maxAge is a hit; the entry misses only when strictly older.
	_, ok, err := cache.lookup(key, 100*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if !ok {
		t.Error("expected hit at exact max age equality")
	}

	_, ok, err = cache.lookup(key, 100*time.Second-time.Microsecond)
	if err != nil {
		t.Fatal(err)
	}

	if ok {
		t.Error("expected miss just past max age")
	}

	_, ok, err = cache.lookup(key, 100*time.Second+time.Microsecond)
	if err != nil {
		t.Fatal(err)
	}

	if !ok {
		t.Error("expected hit just under max age")
	}
}

func TestLookupOldEntry(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	recorder := &recordingObserver{}

	cache := newTestCache(t, Options{Now: clock.Now, Observer: recorder})

	// Entry completed 100 seconds in the past.
	key := writeEntry(t, cache, clock.Now(), ExecResult{Stdout: []byte("old")})
	clock.Advance(100 * time.Second)

	_, ok, err := cache.lookup(key, 50*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if ok {
		t.Error("expected miss with max age 50s")
	}

	if got := recorder.reasons; len(got) != 1 || got[0] != MissTooOld {
		t.Errorf("expected miss reason %q, got %v", MissTooOld, got)
	}

	res, ok, err := cache.lookup(key, 200*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	if !ok {
		t.Error("expected hit with max age 200s")
	}

	if string(res.Stdout) != "old" {
		t.Errorf("unexpected stdout %q", res.Stdout)
	}
}

func TestLookupNegativeMaxAgeAlwaysMisses(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	cache := newTestCache(t, Options{Now: clock.Now})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	_, ok, err := cache.lookup(key, -1)
	if err != nil {
		t.Fatal(err)
	}

	if ok {
		t.Error("negative max age must never match")
	}
}

func TestLookupCorruptTimestampIsFatal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newTestClock()

	cache := newTestCache(t, Options{Root: root, Now: clock.Now})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	dir := entryDir(t, root, key)

	err := os.WriteFile(filepath.Join(dir, "timestamp"), []byte("not a number"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	_, _, lookupErr := cache.lookup(key, NoExpiry)
	if !errors.Is(lookupErr, ErrCorruptEntry) {
		t.Errorf("expected ErrCorruptEntry, got %v", lookupErr)
	}
}

func TestLookupCorruptExitCodeIsFatal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	clock := newTestClock()

	cache := newTestCache(t, Options{Root: root, Now: clock.Now})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	dir := entryDir(t, root, key)

	err := os.WriteFile(filepath.Join(dir, "exit-code"), []byte("3.14"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	_, _, lookupErr := cache.lookup(key, NoExpiry)
	if !errors.Is(lookupErr, ErrCorruptEntry) {
		t.Errorf("expected ErrCorruptEntry, got %v", lookupErr)
	}
}

func TestLookupRetriesDeleteRace(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	flaky := fs.NewFlaky(fs.NewReal())

	cache := newTestCache(t, Options{Now: clock.Now, FS: flaky, MaxRetries: 5})

	key := writeEntry(t, cache, clock.Now(), ExecResult{Stdout: []byte("survivor")})

	// Three attempts lose the race against a concurrent writer deleting
	// the entry; the fourth succeeds.
	flaky.FailNext(fs.OpOpen, os.ErrNotExist, os.ErrNotExist, os.ErrNotExist)

	res, ok, err := cache.lookup(key, NoExpiry)
	if err != nil {
		t.Fatalf("expected retries to absorb the race, got %v", err)
	}

	if !ok || string(res.Stdout) != "survivor" {
		t.Errorf("unexpected result ok=%v stdout=%q", ok, res.Stdout)
	}
}

func TestLookupRetriesExhausted(t *testing.T) {
	t.Parallel()

	const maxRetries = 4

	clock := newTestClock()
	flaky := fs.NewFlaky(fs.NewReal())

	cache := newTestCache(t, Options{Now: clock.Now, FS: flaky, MaxRetries: maxRetries})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	notExists := make([]error, maxRetries)
	for i := range notExists {
		notExists[i] = os.ErrNotExist
	}

	flaky.FailNext(fs.OpOpen, notExists...)

	_, _, err := cache.lookup(key, NoExpiry)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected ErrRetriesExhausted, got %v", err)
	}
}

func TestLookupPermissionErrorFailsWithoutRetrying(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	flaky := fs.NewFlaky(fs.NewReal())

	cache := newTestCache(t, Options{Now: clock.Now, FS: flaky, MaxRetries: 10})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	flaky.FailNext(fs.OpOpen, os.ErrPermission)

	_, _, err := cache.lookup(key, NoExpiry)
	if errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("permission failure must not be burned through retries: %v", err)
	}

	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected the permission error to surface, got %v", err)
	}
}

func TestLookupReadlinkFailureIsFatal(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	flaky := fs.NewFlaky(fs.NewReal())

	cache := newTestCache(t, Options{Now: clock.Now, FS: flaky})

	key := writeEntry(t, cache, clock.Now(), ExecResult{})

	flaky.FailNext(fs.OpReadlink, os.ErrPermission)

	_, _, err := cache.lookup(key, NoExpiry)
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected permission error from readlink, got %v", err)
	}
}

func TestLookupSurvivesConcurrentRewrite(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	cache := newTestCache(t, Options{Now: clock.Now})

	key := writeEntry(t, cache, clock.Now(), ExecResult{Stdout: []byte("first")})

	done := make(chan struct{})

	// Hammer the key with rewrites while readers resolve and open.
	go func() {
		defer close(done)

		for i := 0; i < 50; i++ {
			_ = cache.write(key, "test command", clock.Now(), ExecResult{Stdout: []byte("rewrite")})
		}
	}()

	for i := 0; i < 50; i++ {
		res, ok, err := cache.lookup(key, NoExpiry)
		if err != nil {
			t.Errorf("lookup during rewrites failed: %v", err)

			break
		}

		if !ok {
			t.Error("current link must never disappear once created")

			break
		}

		got := string(res.Stdout)
		if got != "first" && got != "rewrite" {
			t.Errorf("observed torn entry: %q", got)

			break
		}
	}

	<-done
}
