package github

import (
	"sync"
)

type report struct {
	kind string
	id   string
}

// recorder captures reports so tests can assert on them.
type recorder struct {
	mutex   sync.Mutex
	reports []report
}

func (r *recorder) add(kind, id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report{kind: kind, id: id})
}

func (r *recorder) ReportBroken(id string, params ...any)  { r.add("broken", id) }
func (r *recorder) ReportWarning(id string, params ...any) { r.add("warning", id) }
func (r *recorder) ReportInfo(msg string, params ...any)   { r.add("info", msg) }
func (r *recorder) ReportDebug(msg string, params ...any)  {}
func (r *recorder) ReportCount(id string, count int64)     { r.add("count", id) }

func (r *recorder) count(kind, id string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for _, rep := range r.reports {
		if rep.kind == kind && rep.id == id {
			n++
		}
	}
	return n
}
