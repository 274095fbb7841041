package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// UpdateList is the pending-work queue: which pods have scratchpads
// waiting to be uploaded, and which pointer/scratchpad addresses are
// queued for removal. The pair (Pods, Remove.Pointers) and
// (Pods[p], Remove.Scratchpads) are mutually exclusive: every mutator
// below enforces that by construction.
type UpdateList struct {
	Pods   map[string][]string `json:"pods"`
	Remove struct {
		Pointers    []string `json:"pointers"`
		Scratchpads []string `json:"scratchpads"`
	} `json:"remove"`
}

func newUpdateList() *UpdateList {
	ul := &UpdateList{Pods: make(map[string][]string)}
	ul.Remove.Pointers = []string{}
	ul.Remove.Scratchpads = []string{}
	return ul
}

// LoadUpdateList reads the queue file, returning an empty queue if none
// exists yet.
func (ds *DataStore) LoadUpdateList() (*UpdateList, error) {
	data, err := os.ReadFile(filepath.Join(ds.root, updateListFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return newUpdateList(), nil
		}
		return nil, fmt.Errorf("datastore: read update list: %w", err)
	}
	ul := newUpdateList()
	if err := json.Unmarshal(data, ul); err != nil {
		return nil, fmt.Errorf("datastore: parse update list: %w", err)
	}
	if ul.Pods == nil {
		ul.Pods = make(map[string][]string)
	}
	return ul, nil
}

// SaveUpdateList atomically persists the queue.
func (ds *DataStore) SaveUpdateList(ul *UpdateList) error {
	data, err := json.MarshalIndent(ul, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: marshal update list: %w", err)
	}
	return atomicWrite(ds.root, updateListFileName, data)
}

// GetUpdateList is a read-only alias for LoadUpdateList, named to match
// the accessor PodManager and the CLI expose directly.
func (ds *DataStore) GetUpdateList() (*UpdateList, error) {
	return ds.LoadUpdateList()
}

// ClearUpdateList resets the queue to empty and persists it.
func (ds *DataStore) ClearUpdateList() error {
	return ds.SaveUpdateList(newUpdateList())
}

// AppendUpdateList ensures addr has a (possibly empty) scratchpad list in
// Pods, and removes it from Remove.Pointers.
func (ds *DataStore) AppendUpdateList(addr string) error {
	ul, err := ds.LoadUpdateList()
	if err != nil {
		return err
	}
	if _, ok := ul.Pods[addr]; !ok {
		ul.Pods[addr] = []string{}
	}
	ul.Remove.Pointers = removeString(ul.Remove.Pointers, addr)
	return ds.SaveUpdateList(ul)
}

// AddScratchpadToPod ensures spAddr appears in podAddr's scratchpad list
// (deduplicated) and removes it from Remove.Scratchpads.
func (ds *DataStore) AddScratchpadToPod(podAddr, spAddr string) error {
	ul, err := ds.LoadUpdateList()
	if err != nil {
		return err
	}
	if _, ok := ul.Pods[podAddr]; !ok {
		ul.Pods[podAddr] = []string{}
	}
	ul.Pods[podAddr] = appendUnique(ul.Pods[podAddr], spAddr)
	ul.Remove.Scratchpads = removeString(ul.Remove.Scratchpads, spAddr)
	return ds.SaveUpdateList(ul)
}

// AppendRemovalList adds addr to the appropriate removal bucket and drops
// it out of Pods: the pointer case removes the whole pod entry, the
// scratchpad case removes addr from every pod's scratchpad list it
// appears in.
func (ds *DataStore) AppendRemovalList(addr, kind string) error {
	ul, err := ds.LoadUpdateList()
	if err != nil {
		return err
	}
	switch kind {
	case "pointer":
		ul.Remove.Pointers = appendUnique(ul.Remove.Pointers, addr)
		delete(ul.Pods, addr)
	case "scratchpad":
		ul.Remove.Scratchpads = appendUnique(ul.Remove.Scratchpads, addr)
		for pod, sps := range ul.Pods {
			ul.Pods[pod] = removeString(sps, addr)
		}
	default:
		return fmt.Errorf("datastore: unknown removal kind %q", kind)
	}
	return ds.SaveUpdateList(ul)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, existing := range list {
		if existing != v {
			out = append(out, existing)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// sortedPodAddresses returns the pods in the queue in a deterministic
// order, useful for tests and logging.
func (ul *UpdateList) sortedPodAddresses() []string {
	out := make([]string, 0, len(ul.Pods))
	for p := range ul.Pods {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
