package sidebar

import "github.com/redjax/notedeck/internal/services"

// SelectionDetector tells real selection changes (a different set of
// folders) apart from incidental re-selections of the same folders.
type SelectionDetector struct {
	snapshot map[string]struct{}
}

// Changed compares current with the retained snapshot and replaces the snapshot.
// The first call after a Reset reports a change only if it found a folder.
func (d *SelectionDetector) Changed(current []*services.Project) bool {
	next := make(map[string]struct{}, len(current))
	for _, p := range current {
		if p != nil {
			next[p.URL] = struct{}{}
		}
	}

	if len(d.snapshot) == 0 {
		d.snapshot = next
		return len(next) > 0
	}

	changed := len(next) != len(d.snapshot)
	if !changed {
		for url := range next {
			if _, ok := d.snapshot[url]; !ok {
				changed = true
				break
			}
		}
	}

	d.snapshot = next
	return changed
}

// Reset forgets the snapshot.
func (d *SelectionDetector) Reset() {
	d.snapshot = nil
}
