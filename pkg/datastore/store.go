package datastore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	pointersDirName    = "pointers"
	scratchpadsDirName = "scratchpads"
	downloadsDirName   = "downloads"
	updateListFileName = "update_list.json"
	activeWalletName   = "active_wallet.json"
)

// DataStore owns the filesystem layout under a single colony data
// directory: pointers/<addr>, scratchpads/<addr>, update_list.json,
// active_wallet.json, and a downloads/ directory used by PodManager's
// ExportPod.
type DataStore struct {
	root           string
	pointersDir    string
	scratchpadsDir string
	downloadsDir   string
}

// New creates (if necessary) and returns a DataStore rooted at dir.
func New(dir string) (*DataStore, error) {
	ds := &DataStore{
		root:           dir,
		pointersDir:    filepath.Join(dir, pointersDirName),
		scratchpadsDir: filepath.Join(dir, scratchpadsDirName),
		downloadsDir:   filepath.Join(dir, downloadsDirName),
	}
	for _, d := range []string{ds.root, ds.pointersDir, ds.scratchpadsDir, ds.downloadsDir} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return nil, fmt.Errorf("datastore: create %s: %w", d, err)
		}
	}
	return ds, nil
}

// Root returns the data directory this store was opened against.
func (ds *DataStore) Root() string { return ds.root }

// atomicWrite writes data to a temp file in dir and renames it over name,
// so a crash mid-write never leaves a torn file in place.
func atomicWrite(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filepath.Join(dir, name))
}

// WritePointerFile atomically writes the "<target>\n<counter>\n" layout
// for a pointer address.
func (ds *DataStore) WritePointerFile(address, target string, counter uint64) error {
	data := []byte(target + "\n" + strconv.FormatUint(counter, 10) + "\n")
	return atomicWrite(ds.pointersDir, address, data)
}

// ReadPointerFile reads a pointer file's target and counter.
func (ds *DataStore) ReadPointerFile(address string) (target string, counter uint64, err error) {
	data, err := os.ReadFile(filepath.Join(ds.pointersDir, address))
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, ErrPointerNotFound
		}
		return "", 0, fmt.Errorf("datastore: read pointer file: %w", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		return "", 0, ErrMalformedPointerFile
	}
	counter, err = strconv.ParseUint(lines[1], 10, 64)
	if err != nil {
		return "", 0, ErrMalformedPointerFile
	}
	return lines[0], counter, nil
}

// DeletePointerFile removes a pointer file, if present.
func (ds *DataStore) DeletePointerFile(address string) error {
	err := os.Remove(filepath.Join(ds.pointersDir, address))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("datastore: delete pointer file: %w", err)
	}
	return nil
}

// HasPointerFile reports whether a local pointer file exists for address.
func (ds *DataStore) HasPointerFile(address string) bool {
	_, err := os.Stat(filepath.Join(ds.pointersDir, address))
	return err == nil
}

// ListPointerFiles returns every pointer address with a local file.
func (ds *DataStore) ListPointerFiles() ([]string, error) {
	return listDir(ds.pointersDir)
}

// WriteScratchpadFile atomically writes raw scratchpad bytes (including the
// leading "#<RFC3339>\n" timestamp comment) for address.
func (ds *DataStore) WriteScratchpadFile(address string, data []byte) error {
	return atomicWrite(ds.scratchpadsDir, address, data)
}

// ReadScratchpadFile reads the raw bytes of a scratchpad file.
func (ds *DataStore) ReadScratchpadFile(address string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(ds.scratchpadsDir, address))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScratchpadNotFound
		}
		return nil, fmt.Errorf("datastore: read scratchpad file: %w", err)
	}
	return data, nil
}

// DeleteScratchpadFile removes a scratchpad file, if present.
func (ds *DataStore) DeleteScratchpadFile(address string) error {
	err := os.Remove(filepath.Join(ds.scratchpadsDir, address))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("datastore: delete scratchpad file: %w", err)
	}
	return nil
}

// HasScratchpadFile reports whether a local scratchpad file exists.
func (ds *DataStore) HasScratchpadFile(address string) bool {
	_, err := os.Stat(filepath.Join(ds.scratchpadsDir, address))
	return err == nil
}

// ListScratchpadFiles returns every scratchpad address with a local file.
func (ds *DataStore) ListScratchpadFiles() ([]string, error) {
	return listDir(ds.scratchpadsDir)
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("datastore: list %s: %w", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// ExportPod writes a pod's canonical combined TriG document under the
// downloads directory and returns the path written.
func (ds *DataStore) ExportPod(pod string, combined []byte) (string, error) {
	name := pod + ".trig"
	if err := atomicWrite(ds.downloadsDir, name, combined); err != nil {
		return "", fmt.Errorf("datastore: export pod: %w", err)
	}
	return filepath.Join(ds.downloadsDir, name), nil
}
